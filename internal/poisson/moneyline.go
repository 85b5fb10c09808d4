package poisson

import "xg-value-bot/internal/odds"

// Moneyline returns the fair three-way odds of the distribution.
func (d Distribution) Moneyline() odds.Moneyline {
	home, away := d.WinProbabilities()
	return odds.Moneyline{
		Home: odds.FromProbability(home),
		Draw: odds.FromProbability(d.DrawProbability()),
		Away: odds.FromProbability(away),
	}
}
