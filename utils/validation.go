package utils

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// plainDecimal admits digits with an optional fraction. Signs and exponents
// are rejected.
var plainDecimal = regexp.MustCompile(`^(\d+(\.\d+)?|\.\d+)$`)

// maxMinorDigits is the digit count of 2^256-1.
const maxMinorDigits = 78

// ValidateAmount checks that amount is a strictly positive plain decimal.
func ValidateAmount(amount string) (*decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}
	if !plainDecimal.MatchString(amount) {
		return nil, fmt.Errorf("amount %q is not a plain decimal", amount)
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if !dec.IsPositive() {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	return &dec, nil
}

// AmountsEqual compares two decimal strings numerically, so "10" equals
// "10.00". Malformed input never compares equal.
func AmountsEqual(a, b string) bool {
	da, err := decimal.NewFromString(strings.TrimSpace(a))
	if err != nil {
		return false
	}
	db, err := decimal.NewFromString(strings.TrimSpace(b))
	if err != nil {
		return false
	}
	return da.Equal(db)
}

// ToMinorUnits scales a human decimal amount by 10^decimals. The result is
// exact: an amount with more fractional digits than decimals is rejected
// instead of being rounded.
func ToMinorUnits(amount string, decimals int) (*big.Int, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("decimals cannot be negative: %d", decimals)
	}

	dec, err := ValidateAmount(amount)
	if err != nil {
		return nil, err
	}

	scaled := dec.Shift(int32(decimals))
	if int64(scaled.NumDigits())+int64(scaled.Exponent()) > maxMinorDigits {
		return nil, fmt.Errorf("amount %s does not fit in 256 bits", amount)
	}
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("amount %s has more than %d fractional digits", amount, decimals)
	}

	minor := scaled.BigInt()
	if minor.BitLen() > 256 {
		return nil, fmt.Errorf("amount %s does not fit in 256 bits", amount)
	}
	return minor, nil
}

// FormatMinorUnits renders a minor-unit integer as a human decimal string.
func FormatMinorUnits(value *big.Int, decimals int) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -int32(decimals)).String()
}
