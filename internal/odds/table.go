package odds

import (
	"math"
	"sort"
)

// LineKey is a market line in fixed-point quarter-goal units (line × 4).
// Lines are quoted in 0.25 steps, so the key compares exactly where a
// float64 map key would not.
type LineKey int

// KeyOf returns the key of a line, snapping to the nearest quarter.
func KeyOf(line float64) LineKey {
	return LineKey(math.Round(line * 4))
}

// Line converts the key back to a line value.
func (k LineKey) Line() float64 {
	return float64(k) / 4
}

// Lined is a quote that sits on a line and can be averaged with a neighbour
// to synthesize the line between them.
type Lined[Q any] interface {
	LineValue() float64
	Midpoint(next Q) Q
}

// Table maps lines to quotes. Keys are unique and iteration is ascending by
// line. A Table is built once and is read-only afterwards.
type Table[Q Lined[Q]] struct {
	keys   []LineKey
	quotes map[LineKey]Q
}

// NewTable builds a table from quotes in any order. When two quotes share a
// line the first one wins.
func NewTable[Q Lined[Q]](quotes []Q) Table[Q] {
	t := Table[Q]{quotes: make(map[LineKey]Q, len(quotes))}
	for _, q := range quotes {
		k := KeyOf(q.LineValue())
		if _, ok := t.quotes[k]; ok {
			continue
		}
		t.quotes[k] = q
		t.keys = append(t.keys, k)
	}
	sort.Slice(t.keys, func(i, j int) bool { return t.keys[i] < t.keys[j] })
	return t
}

// Get returns the quote on line, if the table prices it.
func (t Table[Q]) Get(line float64) (Q, bool) {
	q, ok := t.quotes[KeyOf(line)]
	return q, ok
}

// Len returns the number of priced lines.
func (t Table[Q]) Len() int {
	return len(t.keys)
}

// Lines returns the priced lines in ascending order.
func (t Table[Q]) Lines() []float64 {
	lines := make([]float64, len(t.keys))
	for i, k := range t.keys {
		lines[i] = k.Line()
	}
	return lines
}

// Quotes returns the quotes in ascending line order.
func (t Table[Q]) Quotes() []Q {
	out := make([]Q, len(t.keys))
	for i, k := range t.keys {
		out[i] = t.quotes[k]
	}
	return out
}

// WithQuarterLines sorts ladder by line and inserts, between every adjacent
// pair half a goal apart, the midpoint quote of the two. Pairs further apart
// are left alone: a gap means a line is missing, and averaging across it
// would land on the missing line. The result is in ascending order.
func WithQuarterLines[Q Lined[Q]](ladder []Q) []Q {
	sorted := make([]Q, len(ladder))
	copy(sorted, ladder)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LineValue() < sorted[j].LineValue()
	})

	if len(sorted) < 2 {
		return sorted
	}

	out := make([]Q, 0, 2*len(sorted)-1)
	for i, q := range sorted {
		if i > 0 && KeyOf(q.LineValue())-KeyOf(sorted[i-1].LineValue()) == 2 {
			out = append(out, sorted[i-1].Midpoint(q))
		}
		out = append(out, q)
	}
	return out
}
