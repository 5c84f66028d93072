package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInvoicingConfigDefaultsWhenFileMissing(t *testing.T) {
	holder, err := NewInvoicingConfigHolder(Config{InvoicingConfigFile: ""}, zap.NewNop())
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, DefaultInvoicingConfig().PaymentModes, cfg.PaymentModes)
	assert.Equal(t, 4, cfg.FinancialYearStart)
	assert.Equal(t, "cgst_sgst", cfg.DefaultGSTType)
}

func TestInvoicingConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invoicing.yml")
	content := []byte(`invoicing:
  paymentModes: ["Cash", "UPI"]
  defaultGstType: igst
  sequencePadding: 5
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	holder, err := NewInvoicingConfigHolder(Config{InvoicingConfigFile: path}, zap.NewNop())
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, []string{"Cash", "UPI"}, cfg.PaymentModes)
	assert.Equal(t, "igst", cfg.DefaultGSTType)
	assert.Equal(t, 5, cfg.SequencePadding)
	assert.Equal(t, "IN", cfg.PhoneRegion)
}

func TestInvoicingConfigRejectsUnknownGSTType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invoicing.yml")
	require.NoError(t, os.WriteFile(path, []byte("invoicing:\n  defaultGstType: vat\n"), 0o600))

	_, err := NewInvoicingConfigHolder(Config{InvoicingConfigFile: path}, zap.NewNop())
	assert.Error(t, err)
}

func TestAllowsPaymentModeIsCaseInsensitive(t *testing.T) {
	cfg := DefaultInvoicingConfig()

	mode, ok := cfg.AllowsPaymentMode(" upi ")
	assert.True(t, ok)
	assert.Equal(t, "UPI", mode)

	_, ok = cfg.AllowsPaymentMode("Cheque")
	assert.False(t, ok)
}
