package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIndianMobile(t *testing.T) {
	got, err := Normalize("98765 43210", "IN")
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", got)
}

func TestNormalizeKeepsInternationalPrefix(t *testing.T) {
	got, err := Normalize("+1 650-253-0000", "IN")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", got)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize("12", "IN")
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = Normalize("   ", "IN")
	assert.ErrorIs(t, err, ErrInvalidPhone)
}
