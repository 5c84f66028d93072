package domain

import "errors"

var (
	ErrNotFound             = errors.New("hotel_not_found")
	ErrInvalidID            = errors.New("invalid_hotel_id")
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidAddress       = errors.New("invalid_address")
	ErrInvalidEmail         = errors.New("invalid_email")
	ErrInvalidPhone         = errors.New("invalid_phone")
	ErrInvalidGSTNumber     = errors.New("invalid_gst_number")
	ErrInvalidGSTPercentage = errors.New("invalid_gst_percentage")
	ErrInvalidGSTType       = errors.New("invalid_gst_type")
	ErrInvalidAssetURL      = errors.New("invalid_asset_url")
	ErrProfileCompleted     = errors.New("profile_already_completed")
)
