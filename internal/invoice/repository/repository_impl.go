package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/innledger/internal/invoice/domain"
	"github.com/smallbiznis/innledger/pkg/db"
	"github.com/smallbiznis/innledger/pkg/db/option"
	"github.com/smallbiznis/innledger/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	db       *gorm.DB
	invoices repository.Repository[domain.Invoice]
}

func NewRepository(conn *gorm.DB) domain.Repository {
	return &repo{
		db:       conn,
		invoices: repository.ProvideStore[domain.Invoice](conn),
	}
}

func (r *repo) withTx(tx *gorm.DB) *repo {
	return &repo{db: tx, invoices: r.invoices.WithTrx(tx)}
}

func (r *repo) Transaction(ctx context.Context, fn func(repo domain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.withTx(tx))
	})
}

func (r *repo) InsertInvoice(ctx context.Context, invoice *domain.Invoice) error {
	return r.invoices.Create(ctx, invoice)
}

func (r *repo) FindInvoice(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	return r.invoices.FindOne(ctx, &domain.Invoice{ID: id})
}

func (r *repo) LockInvoice(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).Raw(
		`SELECT *
		 FROM invoices
		 WHERE id = ?`+db.ForUpdate(r.db),
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) UpdateInvoice(ctx context.Context, id snowflake.ID, version int64, status domain.InvoiceStatus, fields map[string]any) (bool, error) {
	updates := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		updates[key] = value
	}
	updates["version"] = gorm.Expr("version + 1")

	result := r.db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ? AND version = ? AND status = ?", id, version, status).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) DeleteInvoice(ctx context.Context, id snowflake.ID, version int64) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`DELETE FROM invoices
		 WHERE id = ? AND version = ? AND status = ?`,
		id,
		version,
		domain.InvoiceStatusDraft,
	)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	// Children are removed explicitly so stores without enforced foreign
	// keys end up in the same state.
	if err := r.db.WithContext(ctx).Exec(
		`DELETE FROM invoice_room_night_rates
		 WHERE room_stay_id IN (SELECT id FROM invoice_room_stays WHERE invoice_id = ?)`,
		id,
	).Error; err != nil {
		return false, err
	}
	if err := r.db.WithContext(ctx).Exec(
		`DELETE FROM invoice_food_charges
		 WHERE room_stay_id IN (SELECT id FROM invoice_room_stays WHERE invoice_id = ?)`,
		id,
	).Error; err != nil {
		return false, err
	}
	if err := r.db.WithContext(ctx).Exec(
		`DELETE FROM invoice_room_stays WHERE invoice_id = ?`,
		id,
	).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) SearchInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int64, error) {
	query := &domain.Invoice{HotelID: filter.HotelID}
	if filter.Status != nil {
		query.Status = *filter.Status
	}

	conditions := []option.QueryOption{}
	if filter.InvoiceNumber != "" {
		conditions = append(conditions, option.ApplyOperator(option.Condition{
			Field:    "invoice_number",
			Operator: option.Contains,
			Value:    filter.InvoiceNumber,
		}))
	}
	if filter.GuestName != "" {
		conditions = append(conditions, option.ApplyOperator(option.Condition{
			Field:    "guest_name",
			Operator: option.Contains,
			Value:    filter.GuestName,
		}))
	}
	if filter.MinTotal != nil {
		conditions = append(conditions, option.ApplyOperator(option.Condition{
			Field:    "grand_total",
			Operator: option.GTE,
			Value:    *filter.MinTotal,
		}))
	}
	if filter.MaxTotal != nil {
		conditions = append(conditions, option.ApplyOperator(option.Condition{
			Field:    "grand_total",
			Operator: option.LTE,
			Value:    *filter.MaxTotal,
		}))
	}
	if filter.CreatedFrom != nil {
		conditions = append(conditions, option.ApplyOperator(option.Condition{
			Field:    "created_at",
			Operator: option.GTE,
			Value:    filter.CreatedFrom.UTC(),
		}))
	}
	if filter.CreatedTo != nil {
		conditions = append(conditions, option.ApplyOperator(option.Condition{
			Field:    "created_at",
			Operator: option.LTE,
			Value:    filter.CreatedTo.UTC(),
		}))
	}

	return r.invoices.FindPage(ctx, query, repository.Page{
		Sort:   option.QuerySortBy{Default: "created_at"},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, conditions...)
}

func (r *repo) InsertRoomStay(ctx context.Context, stay *domain.RoomStay, rates []domain.RoomNightRate) error {
	if err := r.db.WithContext(ctx).Create(stay).Error; err != nil {
		return err
	}
	if len(rates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rates).Error
}

func (r *repo) FindRoomStay(ctx context.Context, id snowflake.ID) (*domain.RoomStay, error) {
	var stay domain.RoomStay
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&stay).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stay, nil
}

func (r *repo) ListStayDetails(ctx context.Context, invoiceID snowflake.ID) ([]domain.StayDetail, error) {
	var stays []domain.RoomStay
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("creation_seq ASC, id ASC").
		Find(&stays).Error; err != nil {
		return nil, err
	}
	if len(stays) == 0 {
		return []domain.StayDetail{}, nil
	}

	stayIDs := make([]snowflake.ID, 0, len(stays))
	for _, stay := range stays {
		stayIDs = append(stayIDs, stay.ID)
	}

	var rates []domain.RoomNightRate
	if err := r.db.WithContext(ctx).
		Where("room_stay_id IN ?", stayIDs).
		Order("night_date ASC").
		Find(&rates).Error; err != nil {
		return nil, err
	}

	var charges []domain.FoodServiceCharge
	if err := r.db.WithContext(ctx).
		Where("room_stay_id IN ?", stayIDs).
		Order("creation_seq ASC, id ASC").
		Find(&charges).Error; err != nil {
		return nil, err
	}

	ratesByStay := make(map[snowflake.ID][]domain.RoomNightRate, len(stays))
	for _, rate := range rates {
		ratesByStay[rate.RoomStayID] = append(ratesByStay[rate.RoomStayID], rate)
	}
	chargesByStay := make(map[snowflake.ID][]domain.FoodServiceCharge, len(stays))
	for _, charge := range charges {
		chargesByStay[charge.RoomStayID] = append(chargesByStay[charge.RoomStayID], charge)
	}

	details := make([]domain.StayDetail, 0, len(stays))
	for _, stay := range stays {
		detail := domain.StayDetail{
			RoomStay:   stay,
			NightRates: ratesByStay[stay.ID],
			Charges:    chargesByStay[stay.ID],
		}
		if detail.NightRates == nil {
			detail.NightRates = []domain.RoomNightRate{}
		}
		if detail.Charges == nil {
			detail.Charges = []domain.FoodServiceCharge{}
		}
		details = append(details, detail)
	}
	return details, nil
}

func (r *repo) DeleteRoomStay(ctx context.Context, stayID snowflake.ID) error {
	if err := r.db.WithContext(ctx).Exec(
		`DELETE FROM invoice_room_night_rates WHERE room_stay_id = ?`,
		stayID,
	).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Exec(
		`DELETE FROM invoice_food_charges WHERE room_stay_id = ?`,
		stayID,
	).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Exec(
		`DELETE FROM invoice_room_stays WHERE id = ?`,
		stayID,
	).Error
}

func (r *repo) NextStaySeq(ctx context.Context, invoiceID snowflake.ID) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(creation_seq), 0) + 1
		 FROM invoice_room_stays
		 WHERE invoice_id = ?`,
		invoiceID,
	).Scan(&next).Error
	return next, err
}

func (r *repo) InsertCharges(ctx context.Context, charges []domain.FoodServiceCharge) error {
	if len(charges) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&charges).Error
}

func (r *repo) FindCharge(ctx context.Context, id snowflake.ID) (*domain.FoodServiceCharge, error) {
	var charge domain.FoodServiceCharge
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&charge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &charge, nil
}

func (r *repo) DeleteCharge(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Exec(
		`DELETE FROM invoice_food_charges WHERE id = ?`,
		id,
	).Error
}

func (r *repo) NextChargeSeq(ctx context.Context, stayID snowflake.ID) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(creation_seq), 0) + 1
		 FROM invoice_food_charges
		 WHERE room_stay_id = ?`,
		stayID,
	).Scan(&next).Error
	return next, err
}
