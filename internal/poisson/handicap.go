package poisson

import (
	"math"

	"xg-value-bot/internal/mathutil"
	"xg-value-bot/internal/odds"
)

// Handicaps prices handicap lines -8 through +8 in quarter steps. The line is
// applied to the home side, so -1.5 means home must win by two or more.
//
// The pick lines (±0.5), the zero line and the whole lines lean on ml, which
// must be the moneyline of the same distribution. Whole lines that cannot be
// priced (a non-positive denominator once the push mass is removed) are left
// out of the table,
// together with the quarter lines on either side of them.
func (d Distribution) Handicaps(ml odds.Moneyline) odds.Table[odds.Handicap] {
	ladder := make([]odds.Handicap, 0, 4*gridSize)

	// ±1.5 .. ±7.5: cumulative cover mass by margin band, widest margin first.
	var homeCover, awayCover float64
	for k := MaxScore; k >= 2; k-- {
		homeCover += d.MarginMass(k)
		awayCover += d.MarginMass(-k)
		line := float64(k) - 0.5
		ladder = append(ladder,
			odds.Handicap{Line: -line, Home: odds.FromProbability(homeCover), Away: odds.Complement(homeCover)},
			odds.Handicap{Line: line, Home: odds.Complement(awayCover), Away: odds.FromProbability(awayCover)},
		)
	}

	// ±0.5 is the outright win.
	ladder = append(ladder,
		odds.Handicap{Line: -0.5, Home: ml.Home, Away: odds.Complement(odds.Implied(ml.Home))},
		odds.Handicap{Line: 0.5, Home: odds.Complement(odds.Implied(ml.Away)), Away: ml.Away},
		zeroLine(ml),
	)

	// ±1 .. ±8: the win probability split into exclusive margin buckets.
	homeWin, awayWin := odds.Implied(ml.Home), odds.Implied(ml.Away)
	var homeBelow, awayBelow float64
	for k := 1; k <= MaxScore; k++ {
		homePush := d.MarginMass(k)
		awayPush := d.MarginMass(-k)

		if fav, dog, ok := pushLine(homePush, homeWin, homeBelow); ok {
			ladder = append(ladder, odds.Handicap{Line: -float64(k), Home: fav, Away: dog})
		}
		if fav, dog, ok := pushLine(awayPush, awayWin, awayBelow); ok {
			ladder = append(ladder, odds.Handicap{Line: float64(k), Home: dog, Away: fav})
		}

		homeBelow += homePush
		awayBelow += awayPush
	}

	return odds.NewTable(odds.WithQuarterLines(ladder))
}

// zeroLine removes the draw from the two-way market and renormalises.
func zeroLine(ml odds.Moneyline) odds.Handicap {
	notDraw := 1 - odds.Implied(ml.Draw)
	return odds.Handicap{
		Line: 0,
		Home: mathutil.Round3(notDraw / odds.Implied(ml.Home)),
		Away: mathutil.Round3(notDraw / odds.Implied(ml.Away)),
	}
}

// pushLine prices the favourite and underdog of a whole line k, where push is
// the mass of winning by exactly k, win is the favourite's outright win
// probability and below is the mass of winning by 1..k-1.
func pushLine(push, win, below float64) (fav, dog float64, ok bool) {
	favDenom := win - below - push
	dogDenom := 1 - win + below
	if !priceable(favDenom) || !priceable(dogDenom) {
		return 0, 0, false
	}

	fav = mathutil.Round3((1 - push) / favDenom)
	dog = mathutil.Round3((1 - push) / dogDenom)
	if !finite(fav) || !finite(dog) {
		return 0, 0, false
	}
	return fav, dog, true
}

func priceable(denom float64) bool {
	return finite(denom) && denom > 0
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
