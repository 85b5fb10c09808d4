package poisson

import (
	"xg-value-bot/internal/mathutil"
	"xg-value-bot/internal/odds"
)

// Totals prices over/under lines 0.5 through 8.5 in quarter steps.
//
// Half lines come straight from the grid. A whole line L is the half-line
// under mass at L-0.5 renormalised against the over mass at L+0.5, so the
// push at exactly L is priced out. Quarter lines average their neighbours.
func (d Distribution) Totals() odds.Table[odds.Total] {
	halves := make([]odds.Total, 0, gridSize)
	var under float64
	for n := 0; n <= MaxScore; n++ {
		under += d.TotalMass(n)
		halves = append(halves, odds.Total{
			Line:  float64(n) + 0.5,
			Over:  odds.Complement(under),
			Under: odds.FromProbability(under),
		})
	}

	ladder := make([]odds.Total, 0, 2*gridSize)
	ladder = append(ladder, halves...)
	for n := 1; n <= MaxScore; n++ {
		ladder = append(ladder, wholeTotal(n, halves[n-1], halves[n]))
	}

	return odds.NewTable(odds.WithQuarterLines(ladder))
}

func wholeTotal(line int, below, above odds.Total) odds.Total {
	w := odds.Implied(below.Under)
	wOver := odds.Implied(above.Over)
	underOdds := mathutil.Round3(1 / (w / (w + wOver)))
	return odds.Total{
		Line:  float64(line),
		Over:  odds.Complement(odds.Implied(underOdds)),
		Under: underOdds,
	}
}
