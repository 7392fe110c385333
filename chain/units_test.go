package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUnitsExactConversion(t *testing.T) {
	cases := []struct {
		amount   string
		decimals int
		want     string
	}{
		{"1", 6, "1000000"},
		{"0.5", 6, "500000"},
		{"10.25", 6, "10250000"},
		{"0.000001", 6, "1"},
		{"1", 18, "1000000000000000000"},
		{".5", 6, "500000"},
		{"1.", 6, "1000000"},
		{"0", 6, "0"},
		// Sub-precision digits truncate, matching contract rounding.
		{"0.0000019", 6, "1"},
	}
	for _, tc := range cases {
		got, err := ParseUnits(tc.amount, tc.decimals)
		assert.NoError(t, err, tc.amount)
		assert.Equal(t, tc.want, got.String(), tc.amount)
	}
}

func TestParseUnitsAvoidsFloatDrift(t *testing.T) {
	// 0.1 + 0.2 style amounts must not pick up binary float error.
	got, err := ParseUnits("0.3", 18)
	assert.NoError(t, err)
	assert.Equal(t, "300000000000000000", got.String())
}

func TestParseUnitsRejectsBadInput(t *testing.T) {
	for _, amount := range []string{"", "-1", "abc", "1.2.3", "1e6"} {
		_, err := ParseUnits(amount, 6)
		assert.Error(t, err, amount)
	}
}

func TestFormatUnitsRoundTrips(t *testing.T) {
	assert.Equal(t, "1.5", FormatUnits(big.NewInt(1500000), 6))
	assert.Equal(t, "1", FormatUnits(big.NewInt(1000000), 6))
	assert.Equal(t, "0.000001", FormatUnits(big.NewInt(1), 6))
	assert.Equal(t, "0", FormatUnits(nil, 6))
}
