// Package contest loads upcoming contests and their counterpart quotes from
// a YAML file.
package contest

import (
	"errors"
	"fmt"
	"strconv"

	"xg-value-bot/internal/analysis"
	"xg-value-bot/internal/poisson"
)

var (
	// ErrNoOdds means the counterpart quoted nothing for the contest.
	ErrNoOdds = errors.New("no lines/odds")
	// ErrMissingXG means a team has no expected-goals data.
	ErrMissingXG = errors.New("no xG data")
)

// Team is one side of a contest with its expected goals for and against.
type Team struct {
	Name string  `yaml:"name"`
	XGF  float64 `yaml:"xgf"`
	XGA  float64 `yaml:"xga"`
}

// HasXG reports whether both xG figures are known.
func (t Team) HasXG() bool {
	return t.XGF > 0 && t.XGA > 0
}

// String renders "Name (xGF|xGA)", or just the name without xG data.
func (t Team) String() string {
	if !t.HasXG() {
		return t.Name
	}
	return fmt.Sprintf("%s (%s|%s)", t.Name, formatFloat(t.XGF), formatFloat(t.XGA))
}

// Quality overrides the xG-derived team qualities.
type Quality struct {
	Home float64 `yaml:"home"`
	Away float64 `yaml:"away"`
}

// Contest is an upcoming contest with the counterpart's quotes in decimal odds.
type Contest struct {
	Date    string
	Home    Team
	Away    Team
	Quality *Quality
	Quotes  analysis.Quotes
}

// String renders "<date> <home> - <away>.".
func (c Contest) String() string {
	return fmt.Sprintf("%s %s - %s.", c.Date, c.Home, c.Away)
}

// Check reports why the contest cannot be analysed: ErrNoOdds when there is
// nothing to compare, otherwise one ErrMissingXG per team without data.
// Explicit qualities make xG data unnecessary.
func (c Contest) Check() error {
	if c.Quotes.Empty() {
		return ErrNoOdds
	}
	if c.Quality != nil {
		return nil
	}

	var errs []error
	if !c.Home.HasXG() {
		errs = append(errs, fmt.Errorf("%w for home team %s", ErrMissingXG, c.Home.Name))
	}
	if !c.Away.HasXG() {
		errs = append(errs, fmt.Errorf("%w for away team %s", ErrMissingXG, c.Away.Name))
	}
	return errors.Join(errs...)
}

// Rates returns the scoring rates of both sides: the explicit qualities when
// given, otherwise each side's xG for against the opponent's xG against.
func (c Contest) Rates() poisson.Rates {
	if c.Quality != nil {
		return poisson.Rates{Home: c.Quality.Home, Away: c.Quality.Away}
	}
	return poisson.Rates{
		Home: analysis.TeamQuality(c.Home.XGF, c.Away.XGA),
		Away: analysis.TeamQuality(c.Away.XGF, c.Home.XGA),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
