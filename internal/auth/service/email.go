package service

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/innledger/internal/auth/domain"
)

var validate = validator.New()

// NormalizeEmail trims and lower-cases raw after checking its format.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || validate.Var(email, "required,email") != nil {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}
