// Package poisson prices moneyline, totals and handicap markets from two
// independent Poisson scoring rates.
//
// Everything here is a pure function of the rates: no I/O, no shared state,
// safe to call from any number of goroutines.
package poisson

import (
	"math"

	"xg-value-bot/internal/mathutil"
)

// MaxScore is the highest goal count modelled per side. Mass beyond it is
// dropped, which is a fair approximation for low-scoring sports.
const MaxScore = 8

const gridSize = MaxScore + 1

// Rates are the expected goals (team quality) of each side for one contest.
type Rates struct {
	Home float64
	Away float64
}

// Distribution holds the per-side goal probabilities for scores 0..MaxScore
// and the joint scoreline grid built from them.
type Distribution struct {
	Rates Rates

	// Home and Away are Poisson pmf values rounded to three places.
	Home [gridSize]float64
	Away [gridSize]float64

	// Same[k] is the probability of both sides scoring exactly k, rounded to
	// three places. Its sum is the draw probability.
	Same [gridSize]float64

	// Joint[i][j] is the probability of the scoreline i-j.
	Joint [gridSize][gridSize]float64
}

// NewDistribution builds the score distribution for r. Negative or
// non-finite rates degenerate to a certain 0-0 for that side.
func NewDistribution(r Rates) Distribution {
	d := Distribution{Rates: r}
	home, away := sanitizeRate(r.Home), sanitizeRate(r.Away)

	for k := 0; k < gridSize; k++ {
		d.Home[k] = mathutil.Round3(mathutil.PoissonPMF(k, home))
		d.Away[k] = mathutil.Round3(mathutil.PoissonPMF(k, away))
		d.Same[k] = mathutil.Round3(d.Home[k] * d.Away[k])
	}

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			d.Joint[i][j] = d.Home[i] * d.Away[j]
		}
	}

	return d
}

func sanitizeRate(lambda float64) float64 {
	if math.IsNaN(lambda) || math.IsInf(lambda, 0) || lambda < 0 {
		return 0
	}
	return lambda
}

// MarginMass returns the probability that the home side wins by exactly
// margin goals. Negative margins are away wins; zero is the grid's draw mass.
func (d Distribution) MarginMass(margin int) float64 {
	if margin > MaxScore || margin < -MaxScore {
		return 0
	}

	var sum float64
	for j := 0; j < gridSize; j++ {
		// Walk both mirrors in the same order so equal rates give
		// bit-identical home and away sums.
		if margin >= 0 {
			if i := j + margin; i < gridSize {
				sum += d.Joint[i][j]
			}
		} else {
			if i := j - margin; i < gridSize {
				sum += d.Joint[j][i]
			}
		}
	}
	return sum
}

// TotalMass returns the probability that both sides score n goals combined.
func (d Distribution) TotalMass(n int) float64 {
	var sum float64
	for i := 0; i < gridSize; i++ {
		j := n - i
		if j < 0 || j >= gridSize {
			continue
		}
		sum += d.Joint[i][j]
	}
	return sum
}

// WinProbabilities returns P(home win) and P(away win) over the full grid.
func (d Distribution) WinProbabilities() (home, away float64) {
	for margin := 1; margin <= MaxScore; margin++ {
		home += d.MarginMass(margin)
		away += d.MarginMass(-margin)
	}
	return home, away
}

// DrawProbability is the sum of the same-score vector.
func (d Distribution) DrawProbability() float64 {
	var sum float64
	for _, p := range d.Same {
		sum += p
	}
	return sum
}
