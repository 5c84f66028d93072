package provisioning

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const hotelCodeSequence = "hotel"

// CodeSequence is the counter row behind six digit hotel codes.
type CodeSequence struct {
	Name       string `gorm:"primaryKey;type:varchar(32)"`
	NextNumber int64  `gorm:"not null;default:1"`
}

func (CodeSequence) TableName() string { return "hotel_code_sequences" }

// nextHotelCode must run inside the caller's transaction so a rolled back
// provisioning gives its code back.
func nextHotelCode(ctx context.Context, tx *gorm.DB) (string, error) {
	row := CodeSequence{Name: hotelCodeSequence, NextNumber: 1}
	if err := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return "", err
	}
	if err := tx.WithContext(ctx).Model(&CodeSequence{}).
		Where("name = ?", hotelCodeSequence).
		Update("next_number", gorm.Expr("next_number + 1")).Error; err != nil {
		return "", err
	}

	var current CodeSequence
	if err := tx.WithContext(ctx).Where("name = ?", hotelCodeSequence).First(&current).Error; err != nil {
		return "", err
	}
	issued := current.NextNumber - 1
	if issued > 999999 {
		return "", fmt.Errorf("hotel code space exhausted")
	}
	return fmt.Sprintf("%06d", issued), nil
}
