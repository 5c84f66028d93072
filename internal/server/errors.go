package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/innledger/internal/assets"
	auditdomain "github.com/smallbiznis/innledger/internal/audit/domain"
	authdomain "github.com/smallbiznis/innledger/internal/auth/domain"
	"github.com/smallbiznis/innledger/internal/authorization"
	hoteldomain "github.com/smallbiznis/innledger/internal/hotel/domain"
	invoicedomain "github.com/smallbiznis/innledger/internal/invoice/domain"
	roomdomain "github.com/smallbiznis/innledger/internal/room/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

const (
	typeValidation    = "validation_error"
	typeStateConflict = "state_conflict"
	typeNotFound      = "not_found"
	typeUnauthorized  = "unauthorized"
	typeForbidden     = "forbidden"
	typeRateLimited   = "rate_limited"
	typeInternal      = "internal_error"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
	ErrInternal       = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, body := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: body})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// bindingError converts gin binding failures into field-level errors.
func bindingError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return invalidRequestError()
	}
	out := &ValidationErrors{Errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fe.Field(),
			Code:    fe.Tag(),
			Message: "invalid value",
		})
	}
	return out
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, internalPayload()
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    typeValidation,
			Code:    vErr.Errors[0].Code,
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if invoicedomain.Known(err) {
		return mapInvoiceError(err)
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrAccountDisabled),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, authdomain.ErrTokenExpired):
		return http.StatusUnauthorized, payload(typeUnauthorized, err, "unauthorized")
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusForbidden, payload(typeForbidden, err, "forbidden")
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, payload(typeRateLimited, err, "too many requests, retry later")
	case isConflictError(err):
		return http.StatusConflict, payload(typeStateConflict, err, "conflict")
	case isNotFoundError(err):
		return http.StatusNotFound, payload(typeNotFound, err, "not found")
	case isValidationError(err):
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    typeValidation,
			Code:    code,
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	default:
		return http.StatusInternalServerError, internalPayload()
	}
}

func mapInvoiceError(err error) (int, errorPayload) {
	kind := invoicedomain.KindOf(err)
	code := invoicedomain.CodeOf(err)
	message := invoicedomain.MessageOf(err)

	switch kind {
	case invoicedomain.KindValidation:
		field := invoicedomain.FieldOf(err)
		if field == "" {
			field = validationErrorField(code)
		}
		return http.StatusBadRequest, errorPayload{
			Type:    string(kind),
			Code:    code,
			Message: message,
			Errors:  []ValidationError{{Field: field, Code: code, Message: message}},
		}
	case invoicedomain.KindStateConflict:
		return http.StatusConflict, errorPayload{Type: string(kind), Code: code, Message: message}
	case invoicedomain.KindNotFound:
		return http.StatusNotFound, errorPayload{Type: string(kind), Code: code, Message: message}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    string(invoicedomain.KindStorage),
			Code:    "storage_failure",
			Message: message,
		}
	}
}

// classifyErrorForLog feeds the request logger.
func classifyErrorForLog(err error) (string, string) {
	_, p := mapError(err)
	return p.Type, p.Code
}

func payload(kind string, err error, message string) errorPayload {
	return errorPayload{Type: kind, Code: err.Error(), Message: message}
}

func internalPayload() errorPayload {
	return errorPayload{
		Type:    typeInternal,
		Code:    "internal_error",
		Message: "internal server error",
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil && len(vErr.Errors) > 0 {
		return vErr
	}
	return nil
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, roomdomain.ErrRoomNumberTaken),
		errors.Is(err, hoteldomain.ErrProfileCompleted):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, hoteldomain.ErrNotFound),
		errors.Is(err, roomdomain.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrInvalidRole),
		errors.Is(err, authdomain.ErrWeakPassword),
		errors.Is(err, hoteldomain.ErrInvalidID),
		errors.Is(err, hoteldomain.ErrInvalidName),
		errors.Is(err, hoteldomain.ErrInvalidAddress),
		errors.Is(err, hoteldomain.ErrInvalidEmail),
		errors.Is(err, hoteldomain.ErrInvalidPhone),
		errors.Is(err, hoteldomain.ErrInvalidGSTNumber),
		errors.Is(err, hoteldomain.ErrInvalidGSTPercentage),
		errors.Is(err, hoteldomain.ErrInvalidGSTType),
		errors.Is(err, hoteldomain.ErrInvalidAssetURL),
		errors.Is(err, roomdomain.ErrInvalidHotel),
		errors.Is(err, roomdomain.ErrInvalidID),
		errors.Is(err, roomdomain.ErrInvalidRoomNumber),
		errors.Is(err, roomdomain.ErrInvalidRoomName),
		errors.Is(err, assets.ErrInvalidKind),
		errors.Is(err, assets.ErrInvalidImage),
		errors.Is(err, assets.ErrTooLarge),
		errors.Is(err, assets.ErrDimensions),
		errors.Is(err, auditdomain.ErrInvalidTimeRange),
		errors.Is(err, auditdomain.ErrInvalidAction):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
