package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InvoicingConfig holds the tenant-independent invoicing rules that operators
// may tune without a redeploy.
type InvoicingConfig struct {
	PaymentModes       []string `mapstructure:"paymentModes"`
	PaymentModeJoiner  string   `mapstructure:"paymentModeJoiner"`
	DefaultGSTType     string   `mapstructure:"defaultGstType"`
	PhoneRegion        string   `mapstructure:"phoneRegion"`
	FinancialYearStart int      `mapstructure:"financialYearStartMonth"`
	SequencePadding    int      `mapstructure:"sequencePadding"`
}

func DefaultInvoicingConfig() InvoicingConfig {
	return InvoicingConfig{
		PaymentModes:       []string{"Cash", "UPI", "Card", "Bank Transfer", "Online Booking (OTA)"},
		PaymentModeJoiner:  ", ",
		DefaultGSTType:     "cgst_sgst",
		PhoneRegion:        "IN",
		FinancialYearStart: 4,
		SequencePadding:    4,
	}
}

// AllowsPaymentMode reports whether mode is one of the configured modes,
// ignoring case and surrounding whitespace.
func (c InvoicingConfig) AllowsPaymentMode(mode string) (string, bool) {
	mode = strings.TrimSpace(mode)
	for _, allowed := range c.PaymentModes {
		if strings.EqualFold(allowed, mode) {
			return allowed, true
		}
	}
	return "", false
}

type InvoicingConfigHolder struct {
	current atomic.Value // holds InvoicingConfig
}

// NewStaticInvoicingConfig returns a holder that never reloads.
func NewStaticInvoicingConfig(cfg InvoicingConfig) *InvoicingConfigHolder {
	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewInvoicingConfigHolder(cfg Config, log *zap.Logger) (*InvoicingConfigHolder, error) {
	log = log.Named("config.invoicing")
	v := viper.New()

	if cfg.InvoicingConfigFile != "" {
		v.SetConfigFile(cfg.InvoicingConfigFile)
	} else {
		v.SetConfigName("invoicing")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/innledger")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("INNLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoicingConfig()
	v.SetDefault("invoicing.paymentModes", defaults.PaymentModes)
	v.SetDefault("invoicing.paymentModeJoiner", defaults.PaymentModeJoiner)
	v.SetDefault("invoicing.defaultGstType", defaults.DefaultGSTType)
	v.SetDefault("invoicing.phoneRegion", defaults.PhoneRegion)
	v.SetDefault("invoicing.financialYearStartMonth", defaults.FinancialYearStart)
	v.SetDefault("invoicing.sequencePadding", defaults.SequencePadding)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	loaded := readInvoicingConfig(v)
	if err := validateInvoicingConfig(loaded); err != nil {
		return nil, err
	}

	holder := NewStaticInvoicingConfig(loaded)
	if !fileLoaded {
		log.Info("invoicing config file not found, using defaults")
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated := readInvoicingConfig(v)
		if err := validateInvoicingConfig(updated); err != nil {
			log.Warn("invalid invoicing config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("invoicing config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func readInvoicingConfig(v *viper.Viper) InvoicingConfig {
	return InvoicingConfig{
		PaymentModes:       v.GetStringSlice("invoicing.paymentModes"),
		PaymentModeJoiner:  v.GetString("invoicing.paymentModeJoiner"),
		DefaultGSTType:     strings.ToLower(strings.TrimSpace(v.GetString("invoicing.defaultGstType"))),
		PhoneRegion:        strings.ToUpper(strings.TrimSpace(v.GetString("invoicing.phoneRegion"))),
		FinancialYearStart: v.GetInt("invoicing.financialYearStartMonth"),
		SequencePadding:    v.GetInt("invoicing.sequencePadding"),
	}
}

func (h *InvoicingConfigHolder) Get() InvoicingConfig {
	return h.current.Load().(InvoicingConfig)
}

func validateInvoicingConfig(cfg InvoicingConfig) error {
	if len(cfg.PaymentModes) == 0 {
		return errors.New("invoicing.paymentModes cannot be empty")
	}
	switch cfg.DefaultGSTType {
	case "cgst_sgst", "igst":
	default:
		return fmt.Errorf("invoicing.defaultGstType %q is not supported", cfg.DefaultGSTType)
	}
	if cfg.FinancialYearStart < 1 || cfg.FinancialYearStart > 12 {
		return errors.New("invoicing.financialYearStartMonth must be between 1 and 12")
	}
	if cfg.SequencePadding < 1 || cfg.SequencePadding > 10 {
		return errors.New("invoicing.sequencePadding must be between 1 and 10")
	}
	if strings.TrimSpace(cfg.PhoneRegion) == "" {
		return errors.New("invoicing.phoneRegion cannot be empty")
	}
	return nil
}
