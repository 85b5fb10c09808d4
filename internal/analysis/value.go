package analysis

import (
	"fmt"
	"strings"

	"xg-value-bot/internal/mathutil"
	"xg-value-bot/internal/odds"
	"xg-value-bot/internal/poisson"
)

// reportRule closes every record written for a contest.
var reportRule = strings.Repeat("=", 100)

// Side identifies one outcome of a market.
type Side string

const (
	SideHome  Side = "home"
	SideDraw  Side = "draw"
	SideAway  Side = "away"
	SideOver  Side = "over"
	SideUnder Side = "under"
)

// Quotes are the counterpart (bookmaker) prices for one contest, in decimal
// odds. Any of them may be absent.
type Quotes struct {
	Moneyline *odds.Moneyline
	Handicaps []odds.Handicap
	Totals    []odds.Total
}

// Empty reports whether there is nothing to compare.
func (q Quotes) Empty() bool {
	return q.Moneyline == nil && len(q.Handicaps) == 0 && len(q.Totals) == 0
}

// Selection is one compared side of a market line.
type Selection struct {
	Side        Side
	Model       float64
	Counterpart float64
	Diff        float64 // percent, see Difference
	Flagged     bool
}

// Line is one counterpart market line set against the model.
type Line struct {
	Market     odds.MarketType
	Line       float64 // zero for the moneyline
	Selections []Selection

	counterpart fmt.Stringer
}

// Flagged reports whether any side of the line reached the threshold.
func (l Line) Flagged() bool {
	for _, s := range l.Selections {
		if s.Flagged {
			return true
		}
	}
	return false
}

// String renders the counterpart quote, the model price and the differences
// on one line.
func (l Line) String() string {
	var b strings.Builder
	if l.counterpart != nil {
		b.WriteString(l.counterpart.String())
	}

	sep, diffFormat := " / ", "%v %%"
	if l.Market == odds.MarketMoneyline {
		sep, diffFormat = " - ", "(%v %%)"
	}

	models := make([]string, len(l.Selections))
	diffs := make([]string, len(l.Selections))
	for i, s := range l.Selections {
		models[i] = fmt.Sprint(s.Model)
		diffs[i] = fmt.Sprintf(diffFormat, s.Diff)
	}
	fmt.Fprintf(&b, " || Poisson: %s => Value = %s",
		strings.Join(models, sep), strings.Join(diffs, sep))
	return b.String()
}

// Flag is a single flagged side, flattened for storage and alerting.
type Flag struct {
	Market      odds.MarketType
	Line        float64
	Side        Side
	Model       float64
	Counterpart float64
	Diff        float64
}

// Comparison is the outcome of setting one contest's counterpart quotes
// against the model.
type Comparison struct {
	Quality   poisson.Rates
	Threshold int
	Lines     []Line
}

// Difference returns how much longer the counterpart odds are than the model
// odds, in percent rounded to three places. Positive means the counterpart
// pays more than the model thinks is fair.
func Difference(model, counterpart float64) float64 {
	if model <= 0 {
		return 0
	}
	return mathutil.Round3((counterpart/model - 1) * 100)
}

// Compare sets every counterpart quote against the model markets. Handicap
// and total lines the model does not price are skipped. A side is flagged
// when its difference is at least threshold percent.
func Compare(q Quotes, m poisson.Markets, threshold int) Comparison {
	c := Comparison{Quality: m.Rates, Threshold: threshold}
	sel := func(side Side, model, counterpart float64) Selection {
		diff := Difference(model, counterpart)
		return Selection{
			Side:        side,
			Model:       model,
			Counterpart: counterpart,
			Diff:        diff,
			Flagged:     diff >= float64(threshold),
		}
	}

	if q.Moneyline != nil {
		ml := *q.Moneyline
		c.Lines = append(c.Lines, Line{
			Market: odds.MarketMoneyline,
			Selections: []Selection{
				sel(SideHome, m.Moneyline.Home, ml.Home),
				sel(SideDraw, m.Moneyline.Draw, ml.Draw),
				sel(SideAway, m.Moneyline.Away, ml.Away),
			},
			counterpart: ml,
		})
	}

	for _, h := range q.Handicaps {
		model, ok := m.Handicaps.Get(h.Line)
		if !ok {
			continue
		}
		c.Lines = append(c.Lines, Line{
			Market: odds.MarketHandicap,
			Line:   h.Line,
			Selections: []Selection{
				sel(SideHome, model.Home, h.Home),
				sel(SideAway, model.Away, h.Away),
			},
			counterpart: h,
		})
	}

	for _, t := range q.Totals {
		model, ok := m.Totals.Get(t.Line)
		if !ok {
			continue
		}
		c.Lines = append(c.Lines, Line{
			Market: odds.MarketTotal,
			Line:   t.Line,
			Selections: []Selection{
				sel(SideOver, model.Over, t.Over),
				sel(SideUnder, model.Under, t.Under),
			},
			counterpart: t,
		})
	}

	return c
}

// Flags returns every flagged side in comparison order.
func (c Comparison) Flags() []Flag {
	var flags []Flag
	for _, l := range c.Lines {
		for _, s := range l.Selections {
			if !s.Flagged {
				continue
			}
			flags = append(flags, Flag{
				Market:      l.Market,
				Line:        l.Line,
				Side:        s.Side,
				Model:       s.Model,
				Counterpart: s.Counterpart,
				Diff:        s.Diff,
			})
		}
	}
	return flags
}

// Report renders the record for a contest: the description, the team
// qualities, every flagged line and a closing rule. ok is false when nothing
// was flagged, in which case nothing should be recorded.
func (c Comparison) Report(description string) (report string, ok bool) {
	var flagged []string
	for _, l := range c.Lines {
		if l.Flagged() {
			flagged = append(flagged, l.String())
		}
	}
	if len(flagged) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString(description)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Team quality: %v - %v\n", c.Quality.Home, c.Quality.Away)
	for _, s := range flagged {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	b.WriteString(reportRule)
	b.WriteByte('\n')
	return b.String(), true
}
