package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_Format(t *testing.T) {
	f := NewFormatter(Settings{DefaultCurrency: "usd"})

	tests := []struct {
		name     string
		amount   string
		code     string
		expected string
	}{
		{"default currency", "1234.5", "", "$1,234.50"},
		{"explicit euro", "20", "EUR", "€20.00"},
		{"negative", "-1500000.129", "USD", "-$1,500,000.13"},
		{"small", "0.5", "GBP", "£0.50"},
		{"unknown symbol falls back to code", "99", "CHF", "CHF 99.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			assert.Equal(t, tt.expected, f.Format(amount, tt.code))
		})
	}
}

func TestFormatter_SymbolOverrides(t *testing.T) {
	f := NewFormatter(Settings{
		DefaultCurrency: "PKR",
		Symbols:         map[string]string{"pkr": "₨"},
	})

	assert.Equal(t, "PKR", f.DefaultCurrency())
	assert.Equal(t, "₨", f.Symbol(""))
	assert.Equal(t, "₨10,000.00", f.Format(decimal.NewFromInt(10000), ""))
}

func TestFormatter_DefaultsToUSD(t *testing.T) {
	f := NewFormatter(Settings{})
	assert.Equal(t, "USD", f.DefaultCurrency())
}

func TestGroup(t *testing.T) {
	assert.Equal(t, "0.00", Group(decimal.Zero))
	assert.Equal(t, "999.99", Group(decimal.RequireFromString("999.99")))
	assert.Equal(t, "1,000.00", Group(decimal.NewFromInt(1000)))
	assert.Equal(t, "12,345,678.90", Group(decimal.RequireFromString("12345678.9")))
}

func TestNormalizeCode(t *testing.T) {
	code, err := NormalizeCode(" eur ")
	require.NoError(t, err)
	assert.Equal(t, "EUR", code)

	_, err = NormalizeCode("US")
	assert.Error(t, err)

	_, err = NormalizeCode("ABC")
	assert.Error(t, err)
}
