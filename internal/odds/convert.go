package odds

import (
	"math"

	"xg-value-bot/internal/mathutil"
)

// Epsilon floors a probability before it is inverted into odds.
const Epsilon = 1e-6

// FromProbability converts a probability into fair decimal odds rounded to
// three places. Probabilities at or below zero are floored at Epsilon.
func FromProbability(p float64) float64 {
	return mathutil.Round3(1 / math.Max(p, Epsilon))
}

// Complement returns the fair odds of the opposite outcome of an exhaustive
// two-way market whose first outcome has probability p. The complement
// probability is rounded to three places before it is inverted.
func Complement(p float64) float64 {
	return FromProbability(mathutil.Round3(1 - p))
}

// Implied returns the probability implied by decimal odds (1/odds).
// Non-positive odds imply nothing and return 0.
func Implied(decimalOdds float64) float64 {
	if decimalOdds <= 0 {
		return 0
	}
	return 1 / decimalOdds
}

// AmericanToDecimal converts American odds to decimal odds rounded to three places.
// Example: -150 → 1.667, +150 → 2.5. Zero is not a valid price and returns 0.
func AmericanToDecimal(odds int) float64 {
	switch {
	case odds > 0:
		return mathutil.Round3(1 + float64(odds)/100.0)
	case odds < 0:
		return mathutil.Round3(1 + 100.0/math.Abs(float64(odds)))
	default:
		return 0
	}
}
