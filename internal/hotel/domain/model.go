package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const (
	GSTTypeCGSTSGST = "cgst_sgst"
	GSTTypeIGST     = "igst"
)

// Hotel is the tenant profile. Invoices copy the fields they print at
// creation time, so edits here never reach issued documents.
type Hotel struct {
	ID               snowflake.ID    `gorm:"primaryKey" json:"id"`
	UserID           snowflake.ID    `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	HotelCode        string          `gorm:"column:hotel_code;type:varchar(6);not null;uniqueIndex" json:"hotel_code"`
	Name             string          `gorm:"type:text;not null" json:"name"`
	Address          string          `gorm:"type:text;not null;default:''" json:"address"`
	Email            string          `gorm:"type:text;not null" json:"email"`
	Phone            string          `gorm:"type:text;not null;default:''" json:"phone"`
	LogoURL          string          `gorm:"column:logo_url;type:text;not null;default:''" json:"logo_url"`
	SignatureURL     string          `gorm:"column:signature_url;type:text;not null;default:''" json:"signature_url"`
	HasGST           bool            `gorm:"column:has_gst;not null;default:false" json:"has_gst"`
	GSTNumber        string          `gorm:"column:gst_number;type:text;not null;default:''" json:"gst_number"`
	GSTPercentage    decimal.Decimal `gorm:"column:gst_percentage;type:numeric(5,2);not null;default:0" json:"gst_percentage"`
	GSTType          string          `gorm:"column:gst_type;type:text;not null;default:'cgst_sgst'" json:"gst_type"`
	ProfileCompleted bool            `gorm:"column:profile_completed;not null;default:false" json:"profile_completed"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt        time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updated_at"`
}

func (Hotel) TableName() string { return "hotels" }

// Snapshot is the set of hotel fields frozen onto a new invoice.
type Snapshot struct {
	HotelID       snowflake.ID
	HotelCode     string
	Name          string
	Address       string
	Email         string
	Phone         string
	LogoURL       string
	SignatureURL  string
	HasGST        bool
	GSTNumber     string
	GSTPercentage decimal.Decimal
	GSTType       string
	IsActive      bool
}

func (h Hotel) Snapshot() Snapshot {
	return Snapshot{
		HotelID:       h.ID,
		HotelCode:     h.HotelCode,
		Name:          h.Name,
		Address:       h.Address,
		Email:         h.Email,
		Phone:         h.Phone,
		LogoURL:       h.LogoURL,
		SignatureURL:  h.SignatureURL,
		HasGST:        h.HasGST,
		GSTNumber:     h.GSTNumber,
		GSTPercentage: h.GSTPercentage,
		GSTType:       h.GSTType,
		IsActive:      h.IsActive,
	}
}
