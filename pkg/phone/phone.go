// Package phone validates and normalises contact numbers.
package phone

import (
	"errors"
	"strings"

	"github.com/ttacon/libphonenumber"
)

var ErrInvalidPhone = errors.New("invalid_phone")

// Normalize parses raw in the context of region (ISO 3166 alpha-2, e.g. "IN")
// and returns the E.164 form.
func Normalize(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidPhone
	}
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = "IN"
	}

	parsed, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", ErrInvalidPhone
	}
	if !libphonenumber.IsValidNumber(parsed) {
		return "", ErrInvalidPhone
	}
	return libphonenumber.Format(parsed, libphonenumber.E164), nil
}
