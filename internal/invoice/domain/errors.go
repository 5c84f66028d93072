package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers deciding how to react.
type Kind string

const (
	KindValidation    Kind = "validation_error"
	KindStateConflict Kind = "state_conflict"
	KindNotFound      Kind = "not_found"
	KindStorage       Kind = "storage_failure"
)

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidHotel = errors.New("invalid_hotel")

	ErrInvoiceNotFound        = errors.New("invoice_not_found")
	ErrRoomStayNotFound       = errors.New("room_stay_not_found")
	ErrChargeNotFound         = errors.New("charge_not_found")
	ErrRoomNotFound           = errors.New("room_not_found")
	ErrSnapshotSourceNotFound = errors.New("snapshot_source_not_found")

	ErrInvoiceLocked          = errors.New("invoice_locked")
	ErrConcurrentModification = errors.New("concurrent_modification")
	ErrDuplicateInvoiceNumber = errors.New("duplicate_invoice_number")
	ErrHotelInactive          = errors.New("hotel_inactive")

	ErrMissingGuestDetails        = errors.New("missing_guest_details")
	ErrNoRoomsAttached            = errors.New("no_rooms_attached")
	ErrNoPaymentModeSelected      = errors.New("no_payment_mode_selected")
	ErrInvalidPaymentMode         = errors.New("invalid_payment_mode")
	ErrInvalidDateRange           = errors.New("invalid_date_range")
	ErrRateScheduleLengthMismatch = errors.New("rate_schedule_length_mismatch")
	ErrInvalidRate                = errors.New("invalid_rate")
	ErrInvalidRoom                = errors.New("invalid_room")
	ErrRoomInactive               = errors.New("room_inactive")
	ErrEmptyChargeBatch           = errors.New("empty_charge_batch")
	ErrInvalidChargeType          = errors.New("invalid_charge_type")
	ErrInvalidQuantity            = errors.New("invalid_quantity")
	ErrInvalidDiscount            = errors.New("invalid_discount")
	ErrDiscountExceedsSubtotal    = errors.New("discount_exceeds_subtotal")
	ErrInvalidGuestPhone          = errors.New("invalid_guest_phone")
	ErrInvalidGuestEmail          = errors.New("invalid_guest_email")
	ErrInvalidGuestGSTIN          = errors.New("invalid_guest_gstin")
	ErrInvalidInvoiceNumber       = errors.New("invalid_invoice_number")
)

var kindBySentinel = map[error]Kind{
	ErrInvalidID:    KindValidation,
	ErrInvalidHotel: KindValidation,

	ErrInvoiceNotFound:        KindNotFound,
	ErrRoomStayNotFound:       KindNotFound,
	ErrChargeNotFound:         KindNotFound,
	ErrRoomNotFound:           KindNotFound,
	ErrSnapshotSourceNotFound: KindNotFound,

	ErrInvoiceLocked:          KindStateConflict,
	ErrConcurrentModification: KindStateConflict,
	ErrDuplicateInvoiceNumber: KindStateConflict,
	ErrHotelInactive:          KindStateConflict,

	ErrMissingGuestDetails:        KindValidation,
	ErrNoRoomsAttached:            KindValidation,
	ErrNoPaymentModeSelected:      KindValidation,
	ErrInvalidPaymentMode:         KindValidation,
	ErrInvalidDateRange:           KindValidation,
	ErrRateScheduleLengthMismatch: KindValidation,
	ErrInvalidRate:                KindValidation,
	ErrInvalidRoom:                KindValidation,
	ErrRoomInactive:               KindValidation,
	ErrEmptyChargeBatch:           KindValidation,
	ErrInvalidChargeType:          KindValidation,
	ErrInvalidQuantity:            KindValidation,
	ErrInvalidDiscount:            KindValidation,
	ErrDiscountExceedsSubtotal:    KindValidation,
	ErrInvalidGuestPhone:          KindValidation,
	ErrInvalidGuestEmail:          KindValidation,
	ErrInvalidGuestGSTIN:          KindValidation,
	ErrInvalidInvoiceNumber:       KindValidation,
}

var messageBySentinel = map[error]string{
	ErrInvoiceNotFound:            "invoice not found",
	ErrRoomStayNotFound:           "room stay not found",
	ErrChargeNotFound:             "charge not found",
	ErrRoomNotFound:               "room not found",
	ErrSnapshotSourceNotFound:     "hotel profile not found",
	ErrInvoiceLocked:              "invoice is no longer a draft and cannot be changed",
	ErrConcurrentModification:     "invoice was changed by another request, reload and retry",
	ErrDuplicateInvoiceNumber:     "invoice number already exists",
	ErrHotelInactive:              "hotel account is inactive",
	ErrMissingGuestDetails:        "guest name and phone are required",
	ErrNoRoomsAttached:            "at least one room must be attached",
	ErrNoPaymentModeSelected:      "select at least one payment mode",
	ErrInvalidPaymentMode:         "payment mode is not allowed",
	ErrInvalidDateRange:           "check-out must be after check-in",
	ErrRateScheduleLengthMismatch: "one rate is required per night",
	ErrInvalidRate:                "rate must not be negative",
	ErrEmptyChargeBatch:           "at least one charge is required",
	ErrDiscountExceedsSubtotal:    "discount exceeds subtotal",
	ErrInvalidGuestPhone:          "guest phone number is invalid",
	ErrInvalidGuestEmail:          "guest email is invalid",
	ErrInvalidGuestGSTIN:          "guest GSTIN is invalid",
}

// Error carries a sentinel with optional field-level detail.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Code)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// FieldError ties a sentinel to the offending request field.
func FieldError(sentinel error, field string) error {
	return &Error{
		Kind:    kindOfSentinel(sentinel),
		Code:    sentinel.Error(),
		Message: MessageOf(sentinel),
		Field:   field,
		Err:     sentinel,
	}
}

// StorageError wraps a persistence failure.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:    KindStorage,
		Code:    "storage_failure",
		Message: "storage failure",
		Err:     fmt.Errorf("%s: %w", op, err),
	}
}

// KindOf classifies err. Unknown errors are storage failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) && typed.Kind != "" {
		return typed.Kind
	}
	for sentinel, kind := range kindBySentinel {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindStorage
}

// CodeOf returns the machine-readable code for err.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) && typed.Code != "" {
		return typed.Code
	}
	for sentinel := range kindBySentinel {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "storage_failure"
}

// FieldOf returns the offending field, if any.
func FieldOf(err error) string {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Field
	}
	return ""
}

// MessageOf returns a human-readable message safe to show to users.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) && typed.Message != "" {
		return typed.Message
	}
	for sentinel, msg := range messageBySentinel {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	if KindOf(err) == KindStorage {
		return "something went wrong, please retry"
	}
	return "invalid value"
}

func kindOfSentinel(sentinel error) Kind {
	if kind, ok := kindBySentinel[sentinel]; ok {
		return kind
	}
	return KindValidation
}

// Known reports whether err originates from this package.
func Known(err error) bool {
	if err == nil {
		return false
	}
	var typed *Error
	if errors.As(err, &typed) {
		return true
	}
	for sentinel := range kindBySentinel {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
