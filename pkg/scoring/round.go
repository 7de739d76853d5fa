package scoring

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Round rounds x to the given number of decimal places. It rounds the exact
// binary value of x with ties to even, so 41.25 becomes 41.2 and 2.675 (stored
// just below) becomes 2.67.
func Round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := exactDecimal(x).RoundBank(places).Float64()
	if f == 0 {
		return 0 // normalize -0
	}
	return f
}

// exactDecimal returns the decimal that x represents with no shortening.
func exactDecimal(x float64) decimal.Decimal {
	frac, exp := math.Frexp(x)
	m := big.NewInt(int64(frac * (1 << 53)))
	exp -= 53
	if exp >= 0 {
		return decimal.NewFromBigInt(m.Lsh(m, uint(exp)), 0)
	}
	// m / 2^k == m * 5^k / 10^k
	k := int64(-exp)
	m.Mul(m, new(big.Int).Exp(big.NewInt(5), big.NewInt(k), nil))
	return decimal.NewFromBigInt(m, -int32(k))
}

// roundScore rounds a raw score to an integer with ties to even and clamps
// it to [0, 100].
func roundScore(raw float64) int {
	s := int(math.RoundToEven(raw))
	return max(0, min(100, s))
}
