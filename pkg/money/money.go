// Package money formats decimal amounts for display. Formatting settings are
// passed in explicitly; nothing here reads global state.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Settings configures a Formatter
type Settings struct {
	// DefaultCurrency is used when an amount is formatted without a code
	DefaultCurrency string
	// Symbols overrides or extends the built-in symbol table
	Symbols map[string]string
}

var defaultSymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"INR": "₹",
	"PKR": "Rs ",
	"CAD": "CA$",
	"AUD": "A$",
	"JPY": "¥",
}

// Formatter renders amounts as currency strings
type Formatter struct {
	defaultCode string
	symbols     map[string]string
}

// NewFormatter creates a formatter from explicit settings
func NewFormatter(settings Settings) *Formatter {
	symbols := make(map[string]string, len(defaultSymbols)+len(settings.Symbols))
	for code, sym := range defaultSymbols {
		symbols[code] = sym
	}
	for code, sym := range settings.Symbols {
		symbols[strings.ToUpper(code)] = sym
	}

	code := strings.ToUpper(strings.TrimSpace(settings.DefaultCurrency))
	if code == "" {
		code = "USD"
	}

	return &Formatter{defaultCode: code, symbols: symbols}
}

// DefaultCurrency returns the code used when none is given
func (f *Formatter) DefaultCurrency() string {
	return f.defaultCode
}

// Symbol returns the display prefix for a currency code
func (f *Formatter) Symbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = f.defaultCode
	}
	if sym, ok := f.symbols[code]; ok {
		return sym
	}
	return code + " "
}

// Format returns a string such as "$1,234.56" or "-€20.00"
func (f *Formatter) Format(amount decimal.Decimal, code string) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + f.Symbol(code) + Group(amount.Abs())
}

// Group renders a non-negative amount with two decimals and thousands separators
func Group(amount decimal.Decimal) string {
	formatted := amount.StringFixed(2)
	negative := strings.HasPrefix(formatted, "-")
	formatted = strings.TrimPrefix(formatted, "-")

	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if negative {
		return "-" + intPart + "." + decPart
	}
	return intPart + "." + decPart
}

// NormalizeCode validates an ISO 4217 code and returns it upper-cased
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("invalid currency code %q", code)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("invalid currency code %q: %w", code, err)
	}
	return unit.String(), nil
}
