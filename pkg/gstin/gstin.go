// Package gstin validates Indian GST identification numbers.
package gstin

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalid = errors.New("invalid_gstin")

// Two-digit state code, PAN, entity number, a literal Z and a check character.
var pattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// Normalize upper-cases raw and checks it against the GSTIN layout.
func Normalize(raw string) (string, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if !pattern.MatchString(value) {
		return "", ErrInvalid
	}
	return value, nil
}
