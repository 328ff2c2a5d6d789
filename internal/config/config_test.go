package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "store")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "tcp(localhost:3306)")
	t.Setenv("DB_NAME", "uniformes")
}

func TestLoadShippingDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	prices := cfg.ShippingPrices()
	if !prices["standard"].Equal(decimal.RequireFromString("15")) || !prices["express"].Equal(decimal.RequireFromString("29.90")) {
		t.Fatalf("prices=%v", prices)
	}
	if !prices["pickup"].IsZero() {
		t.Fatalf("pickup=%s", prices["pickup"])
	}
}

func TestLoadRejectsBadShippingPrice(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"not a number", "SHIPPING_EXPRESS_PRICE", "vinte"},
		{"negative", "SHIPPING_STANDARD_PRICE", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)
			if cfg, err := Load(); err == nil {
				t.Fatalf("expected error, shipping=%v", cfg.ShippingPrices())
			}
		})
	}
}
