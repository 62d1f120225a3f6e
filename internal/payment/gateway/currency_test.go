package gateway

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSARToHalalasRoundsHalfUp(t *testing.T) {
	cases := []struct {
		sar  string
		want int64
	}{
		{"0.01", 1},
		{"1", 100},
		{"1.005", 101},
		{"99.999", 10000},
		{"0", 0},
		{"149.50", 14950},
	}

	for _, tc := range cases {
		sar, err := decimal.NewFromString(tc.sar)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, SARToHalalas(sar), "SAR %s", tc.sar)
	}
}

func TestSARFloatToHalalas(t *testing.T) {
	assert.Equal(t, int64(101), SARFloatToHalalas(1.005))
	assert.Equal(t, int64(1), SARFloatToHalalas(0.01))
	assert.Equal(t, int64(10000), SARFloatToHalalas(99.999))
}

func TestHalalasToSAR(t *testing.T) {
	assert.Equal(t, "1.5", HalalasToSAR(150).String())
	assert.Equal(t, "0.01", HalalasToSAR(1).String())
}

func TestHalalasToUSD(t *testing.T) {
	rate := decimal.RequireFromString("0.2666")

	// 100 SAR = 10000 halalas * 0.2666 = 26.66 USD
	assert.Equal(t, "26.66", HalalasToUSD(10000, rate).StringFixed(2))
	// 1.50 SAR * 0.2666 = 0.3999 -> 0.40
	assert.Equal(t, "0.40", HalalasToUSD(150, rate).StringFixed(2))
}
