package odds

import (
	"fmt"

	"xg-value-bot/internal/mathutil"
)

// MarketType represents the type of betting market
type MarketType string

const (
	MarketMoneyline MarketType = "moneyline"
	MarketHandicap  MarketType = "handicap"
	MarketTotal     MarketType = "total"
)

// Moneyline is a three-way (1X2) price.
type Moneyline struct {
	Home float64
	Draw float64
	Away float64
}

func (m Moneyline) String() string {
	return fmt.Sprintf("%v - %v - %v", m.Home, m.Draw, m.Away)
}

// Total is an over/under price on the combined score.
type Total struct {
	Line  float64
	Over  float64
	Under float64
}

// LineValue implements Lined.
func (t Total) LineValue() float64 { return t.Line }

// Midpoint returns the arithmetic-mean market between t and next.
func (t Total) Midpoint(next Total) Total {
	return Total{
		Line:  mathutil.Round((t.Line+next.Line)/2, 2),
		Over:  mathutil.Round3((t.Over + next.Over) / 2),
		Under: mathutil.Round3((t.Under + next.Under) / 2),
	}
}

func (t Total) String() string {
	return fmt.Sprintf("Over/Under %v: %v / %v", t.Line, t.Over, t.Under)
}

// Handicap is a two-way price with the line applied to the home side.
// A negative line means the home side gives goals.
type Handicap struct {
	Line float64
	Home float64
	Away float64
}

// LineValue implements Lined.
func (h Handicap) LineValue() float64 { return h.Line }

// Midpoint returns the arithmetic-mean market between h and next.
func (h Handicap) Midpoint(next Handicap) Handicap {
	return Handicap{
		Line: mathutil.Round((h.Line+next.Line)/2, 2),
		Home: mathutil.Round3((h.Home + next.Home) / 2),
		Away: mathutil.Round3((h.Away + next.Away) / 2),
	}
}

func (h Handicap) String() string {
	return fmt.Sprintf("%v: %v / %v", h.Line, h.Home, h.Away)
}
