package chain

import (
	"errors"
	"math/big"
	"strings"
)

// ParseUnits converts a decimal string amount into the token's smallest unit
// with exact integer math. Fractional digits beyond the token's precision are
// truncated, matching contract-side rounding.
func ParseUnits(amount string, decimals int) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, errors.New("empty amount")
	}
	if strings.HasPrefix(amount, "-") {
		return nil, errors.New("negative amount")
	}
	if decimals < 0 || decimals > 77 {
		return nil, errors.New("unreasonable decimals")
	}

	parts := strings.SplitN(amount, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > decimals {
		fracPart = fracPart[:decimals]
	}
	fracPart += strings.Repeat("0", decimals-len(fracPart))

	whole, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return nil, errors.New("invalid amount: " + amount)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole.Mul(whole, scale)

	if fracPart != "" {
		frac, ok := new(big.Int).SetString(fracPart, 10)
		if !ok {
			return nil, errors.New("invalid amount: " + amount)
		}
		whole.Add(whole, frac)
	}
	return whole, nil
}

// FormatUnits renders a base-unit amount as a decimal string, for responses.
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(amount, scale, new(big.Int))
	if frac.Sign() == 0 {
		return whole.String()
	}
	fracStr := frac.String()
	fracStr = strings.Repeat("0", decimals-len(fracStr)) + fracStr
	fracStr = strings.TrimRight(fracStr, "0")
	return whole.String() + "." + fracStr
}
