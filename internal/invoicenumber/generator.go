package invoicenumber

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/innledger/internal/clock"
	"github.com/smallbiznis/innledger/internal/config"
	hoteldomain "github.com/smallbiznis/innledger/internal/hotel/domain"
	invoicedomain "github.com/smallbiznis/innledger/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence is the per hotel, per financial year counter row. NextNumber is
// the number the next invoice receives.
type Sequence struct {
	HotelID       snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	FinancialYear string       `gorm:"primaryKey;type:varchar(16)"`
	NextNumber    int64        `gorm:"not null;default:1"`
}

func (Sequence) TableName() string { return "invoice_sequences" }

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Hotels    hoteldomain.Service
	Invoicing *config.InvoicingConfigHolder
	Clock     clock.Clock
}

type Generator struct {
	db        *gorm.DB
	log       *zap.Logger
	hotels    hoteldomain.Service
	invoicing *config.InvoicingConfigHolder
	clock     clock.Clock
}

func New(p Params) *Generator {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Generator{
		db:        p.DB,
		log:       p.Log.Named("invoicenumber"),
		hotels:    p.Hotels,
		invoicing: p.Invoicing,
		clock:     clk,
	}
}

// Provide exposes the generator as the invoice core's number source.
func Provide(g *Generator) invoicedomain.NumberGenerator { return g }

// Next allocates the next number for the hotel in the current financial year.
func (g *Generator) Next(ctx context.Context, hotelID snowflake.ID) (string, error) {
	snapshot, err := g.hotels.Snapshot(ctx, hotelID)
	if err != nil {
		return "", err
	}

	cfg := g.invoicing.Get()
	fy := FinancialYear(g.clock.Now(), cfg.FinancialYearStart)

	seq, err := g.allocate(ctx, hotelID, fy)
	if err != nil {
		return "", fmt.Errorf("allocate invoice sequence: %w", err)
	}

	number, err := Format(Template(cfg.SequencePadding), snapshot.HotelCode, fy, seq)
	if err != nil {
		return "", err
	}
	g.log.Debug("invoice number allocated",
		zap.String("hotel_id", hotelID.String()),
		zap.String("financial_year", fy),
		zap.Int64("seq", seq),
	)
	return number, nil
}

func (g *Generator) allocate(ctx context.Context, hotelID snowflake.ID, fy string) (int64, error) {
	var issued int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := Sequence{HotelID: hotelID, FinancialYear: fy, NextNumber: 1}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}

		if err := tx.Model(&Sequence{}).
			Where("hotel_id = ? AND financial_year = ?", hotelID, fy).
			Update("next_number", gorm.Expr("next_number + 1")).Error; err != nil {
			return err
		}

		var current Sequence
		if err := tx.Where("hotel_id = ? AND financial_year = ?", hotelID, fy).
			First(&current).Error; err != nil {
			return err
		}
		issued = current.NextNumber - 1
		return nil
	})
	return issued, err
}
