package poisson

import "xg-value-bot/internal/odds"

// Markets is the full fair price of one contest.
type Markets struct {
	Rates     Rates
	Moneyline odds.Moneyline
	Totals    odds.Table[odds.Total]
	Handicaps odds.Table[odds.Handicap]
}

// Price builds the distribution for r and derives every market from it.
func Price(r Rates) Markets {
	d := NewDistribution(r)
	ml := d.Moneyline()
	return Markets{
		Rates:     r,
		Moneyline: ml,
		Totals:    d.Totals(),
		Handicaps: d.Handicaps(ml),
	}
}
