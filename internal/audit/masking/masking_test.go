package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret("  "))
	assert.Equal(t, "****", MaskSecret("123"))
	assert.Equal(t, "****3210", MaskSecret("+919876543210"))
}

func TestMaskFields(t *testing.T) {
	got := MaskFields(map[string]any{
		"guest_phone":  "+919876543210",
		"guest_email":  "asha@example.com",
		"guest_name":   "Asha",
		"grand_total":  "5522.40",
		"":             "dropped",
		"stay_numbers": []string{"101"},
	}, "guest_phone", "guest_email")

	assert.Equal(t, "****3210", got["guest_phone"])
	assert.Equal(t, "a****@example.com", got["guest_email"])
	assert.Equal(t, "Asha", got["guest_name"])
	assert.Equal(t, "5522.40", got["grand_total"])
	assert.NotContains(t, got, "")
	assert.Nil(t, MaskFields(nil))
}
