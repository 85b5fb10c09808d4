package analysis

import (
	"math"
	"strings"
	"testing"

	"xg-value-bot/internal/odds"
	"xg-value-bot/internal/poisson"
)

func testMarkets() poisson.Markets {
	return poisson.Markets{
		Rates:     poisson.Rates{Home: 3.1, Away: 2.4},
		Moneyline: odds.Moneyline{Home: 2.0, Draw: 4.0, Away: 3.0},
		Handicaps: odds.NewTable([]odds.Handicap{
			{Line: -1.5, Home: 3.0, Away: 1.5},
			{Line: -0.25, Home: 2.5, Away: 1.7},
		}),
		Totals: odds.NewTable([]odds.Total{
			{Line: 5.5, Over: 2.0, Under: 1.8},
		}),
	}
}

func TestDifference(t *testing.T) {
	tests := []struct {
		name        string
		model       float64
		counterpart float64
		expected    float64
	}{
		{"counterpart longer", 2.0, 2.1, 5.0},
		{"counterpart shorter", 4.0, 3.8, -5.0},
		{"equal", 3.0, 3.0, 0},
		{"rounded to three places", 1.5, 1.4, -6.667},
		{"just under five", 2.0, 2.09998, 4.999},
		{"no model price", 0, 2.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Difference(tt.model, tt.counterpart)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Difference(%v, %v) = %v, want %v", tt.model, tt.counterpart, result, tt.expected)
			}
		})
	}
}

func TestCompareThresholdIsInclusive(t *testing.T) {
	tests := []struct {
		name        string
		counterpart float64
		threshold   int
		flagged     bool
	}{
		{"exactly at threshold", 2.1, 5, true},
		{"a thousandth below", 2.09998, 5, false},
		{"above threshold", 2.3, 5, true},
		{"zero threshold flags fair price", 2.0, 0, true},
		{"negative difference", 1.9, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Quotes{Moneyline: &odds.Moneyline{Home: tt.counterpart, Draw: 1.0, Away: 1.0}}
			c := Compare(q, testMarkets(), tt.threshold)
			if len(c.Lines) != 1 {
				t.Fatalf("got %d lines, want 1", len(c.Lines))
			}
			home := c.Lines[0].Selections[0]
			if home.Side != SideHome {
				t.Fatalf("first selection is %q, want home", home.Side)
			}
			if home.Flagged != tt.flagged {
				t.Errorf("home flagged = %v (diff %v), want %v", home.Flagged, home.Diff, tt.flagged)
			}
		})
	}
}

func TestCompareSkipsLinesTheModelDoesNotPrice(t *testing.T) {
	q := Quotes{
		Handicaps: []odds.Handicap{
			{Line: -1.5, Home: 3.3, Away: 1.4},
			{Line: -9.5, Home: 50, Away: 1.01},
		},
		Totals: []odds.Total{
			{Line: 6.5, Over: 3.0, Under: 1.4},
		},
	}

	c := Compare(q, testMarkets(), 5)
	if len(c.Lines) != 1 {
		t.Fatalf("got %d lines, want only the -1.5 handicap", len(c.Lines))
	}
	if c.Lines[0].Market != odds.MarketHandicap || c.Lines[0].Line != -1.5 {
		t.Errorf("compared %s %v, want handicap -1.5", c.Lines[0].Market, c.Lines[0].Line)
	}
}

func TestCompareMatchesQuarterLines(t *testing.T) {
	q := Quotes{Handicaps: []odds.Handicap{{Line: -0.25, Home: 2.6, Away: 1.65}}}

	c := Compare(q, testMarkets(), 3)
	if len(c.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(c.Lines))
	}
	home, away := c.Lines[0].Selections[0], c.Lines[0].Selections[1]
	if math.Abs(home.Diff-4.0) > 1e-9 || !home.Flagged {
		t.Errorf("home = %+v, want diff 4 flagged", home)
	}
	if away.Flagged {
		t.Errorf("away = %+v, want not flagged", away)
	}
}

func TestFlags(t *testing.T) {
	q := Quotes{
		Moneyline: &odds.Moneyline{Home: 2.1, Draw: 3.8, Away: 3.0},
		Totals:    []odds.Total{{Line: 5.5, Over: 1.95, Under: 1.9}},
	}

	flags := Compare(q, testMarkets(), 5).Flags()
	if len(flags) != 2 {
		t.Fatalf("got %d flags, want 2: %+v", len(flags), flags)
	}

	want := []Flag{
		{Market: odds.MarketMoneyline, Side: SideHome, Model: 2.0, Counterpart: 2.1, Diff: 5},
		{Market: odds.MarketTotal, Line: 5.5, Side: SideUnder, Model: 1.8, Counterpart: 1.9, Diff: 5.556},
	}
	for i := range want {
		if flags[i] != want[i] {
			t.Errorf("flags[%d] = %+v, want %+v", i, flags[i], want[i])
		}
	}
}

func TestReport(t *testing.T) {
	q := Quotes{
		Moneyline: &odds.Moneyline{Home: 2.1, Draw: 3.8, Away: 3.0},
		Handicaps: []odds.Handicap{
			{Line: -1.5, Home: 3.3, Away: 1.4},
			{Line: -0.25, Home: 2.4, Away: 1.7},
		},
		Totals: []odds.Total{{Line: 5.5, Over: 1.95, Under: 1.9}},
	}

	report, ok := Compare(q, testMarkets(), 5).Report("2024-01-05 19:00 Boston (3.1|2.4) - Tampa Bay (2.8|2.9).")
	if !ok {
		t.Fatal("expected a report")
	}

	want := strings.Join([]string{
		"2024-01-05 19:00 Boston (3.1|2.4) - Tampa Bay (2.8|2.9).",
		"Team quality: 3.1 - 2.4",
		"2.1 - 3.8 - 3 || Poisson: 2 - 4 - 3 => Value = (5 %) - (-5 %) - (0 %)",
		"-1.5: 3.3 / 1.4 || Poisson: 3 / 1.5 => Value = 10 % / -6.667 %",
		"Over/Under 5.5: 1.95 / 1.9 || Poisson: 2 / 1.8 => Value = -2.5 % / 5.556 %",
		strings.Repeat("=", 100),
	}, "\n") + "\n"

	if report != want {
		t.Errorf("Report() =\n%s\nwant\n%s", report, want)
	}
}

func TestReportNothingFlagged(t *testing.T) {
	q := Quotes{
		Moneyline: &odds.Moneyline{Home: 1.9, Draw: 3.8, Away: 2.9},
		Totals:    []odds.Total{{Line: 5.5, Over: 1.95, Under: 1.75}},
	}

	c := Compare(q, testMarkets(), 5)
	if len(c.Lines) != 2 {
		t.Fatalf("got %d compared lines, want 2", len(c.Lines))
	}
	if report, ok := c.Report("any"); ok || report != "" {
		t.Errorf("Report() = %q, %v, want nothing", report, ok)
	}
}

func TestQuotesEmpty(t *testing.T) {
	if !(Quotes{}).Empty() {
		t.Error("zero Quotes should be empty")
	}
	if (Quotes{Totals: []odds.Total{{Line: 5.5, Over: 1.9, Under: 1.9}}}).Empty() {
		t.Error("Quotes with a total should not be empty")
	}
}
