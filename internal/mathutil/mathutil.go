package mathutil

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds x to the given number of decimal places, half away from zero.
// Rounding is done on the shortest decimal representation of x, so 0.1235
// rounds to 0.124 even though its binary value sits just below the midpoint.
// NaN and ±Inf are returned unchanged.
func Round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// Round3 is Round(x, 3), the precision used for probabilities and odds.
func Round3(x float64) float64 {
	return Round(x, 3)
}

// PoissonPMF calculates P(X = k) for a Poisson distribution with mean λ.
// λ <= 0 (or NaN) is treated as a point mass at zero.
func PoissonPMF(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	if !(lambda > 0) {
		if k == 0 {
			return 1
		}
		return 0
	}
	// P(X=k) = e^(-λ) * λ^k / k!
	// Use log to avoid overflow
	logProb := -lambda + float64(k)*math.Log(lambda) - logFactorial(k)
	return math.Exp(logProb)
}

func logFactorial(n int) float64 {
	if n <= 1 {
		return 0
	}
	result := 0.0
	for i := 2; i <= n; i++ {
		result += math.Log(float64(i))
	}
	return result
}
