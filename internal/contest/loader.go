package contest

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"xg-value-bot/internal/odds"
)

// Odds formats accepted in a contest file.
const (
	FormatDecimal  = "decimal"
	FormatAmerican = "american"
)

type contestFile struct {
	OddsFormat string       `yaml:"odds_format"`
	Contests   []rawContest `yaml:"contests"`
}

type rawContest struct {
	Date       string        `yaml:"date"`
	OddsFormat string        `yaml:"odds_format"`
	Home       Team          `yaml:"home"`
	Away       Team          `yaml:"away"`
	Quality    *Quality      `yaml:"quality"`
	Moneyline  *rawMoneyline `yaml:"moneyline"`
	Handicaps  []rawTwoWay   `yaml:"handicaps"`
	Totals     []rawTotal    `yaml:"totals"`
}

type rawMoneyline struct {
	Home float64 `yaml:"home"`
	Draw float64 `yaml:"draw"`
	Away float64 `yaml:"away"`
}

type rawTwoWay struct {
	Line float64 `yaml:"line"`
	Home float64 `yaml:"home"`
	Away float64 `yaml:"away"`
}

type rawTotal struct {
	Line  float64 `yaml:"line"`
	Over  float64 `yaml:"over"`
	Under float64 `yaml:"under"`
}

// Load reads and parses the contest file at path.
func Load(path string) ([]Contest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read contests: %w", err)
	}
	return Parse(data)
}

// Parse decodes a contest file. Quotes are converted to decimal odds using
// the contest's odds_format, falling back to the file's and then to decimal.
//
// Only a file that is not valid YAML fails as a whole. A quote outside its
// format's range is dropped with a warning and the rest of the contest is
// kept; a moneyline loses all three prices if any one is bad. A contest with
// an unknown odds format is dropped entirely.
func Parse(data []byte) ([]Contest, error) {
	var f contestFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse contests: %w", err)
	}

	contests := make([]Contest, 0, len(f.Contests))
	for i, rc := range f.Contests {
		format := rc.OddsFormat
		if format == "" {
			format = f.OddsFormat
		}
		c, dropped, err := rc.toContest(format)
		if err != nil {
			slog.Warn("Skipping contest", "contest", i+1, "date", rc.Date, "error", err)
			continue
		}
		for _, d := range dropped {
			slog.Warn("Skipping quote", "contest", c.String(), "error", d)
		}
		contests = append(contests, c)
	}
	return contests, nil
}

// toContest converts rc. Quotes that fail conversion are left out and
// returned as dropped; err is only set when nothing can be converted.
func (rc rawContest) toContest(format string) (c Contest, dropped []error, err error) {
	conv, err := converter(format)
	if err != nil {
		return Contest{}, nil, err
	}

	c = Contest{
		Date:    rc.Date,
		Home:    rc.Home,
		Away:    rc.Away,
		Quality: rc.Quality,
	}

	if ml := rc.Moneyline; ml != nil {
		q, err := convertMoneyline(*ml, conv)
		if err != nil {
			dropped = append(dropped, err)
		} else {
			c.Quotes.Moneyline = &q
		}
	}

	for _, h := range rc.Handicaps {
		home, errHome := conv(h.Home)
		away, errAway := conv(h.Away)
		if err := errors.Join(errHome, errAway); err != nil {
			dropped = append(dropped, fmt.Errorf("handicap %v: %w", h.Line, err))
			continue
		}
		c.Quotes.Handicaps = append(c.Quotes.Handicaps, odds.Handicap{Line: h.Line, Home: home, Away: away})
	}

	for _, t := range rc.Totals {
		over, errOver := conv(t.Over)
		under, errUnder := conv(t.Under)
		if err := errors.Join(errOver, errUnder); err != nil {
			dropped = append(dropped, fmt.Errorf("total %v: %w", t.Line, err))
			continue
		}
		c.Quotes.Totals = append(c.Quotes.Totals, odds.Total{Line: t.Line, Over: over, Under: under})
	}

	return c, dropped, nil
}

func convertMoneyline(ml rawMoneyline, conv func(float64) (float64, error)) (odds.Moneyline, error) {
	var q odds.Moneyline
	var err error
	if q.Home, err = conv(ml.Home); err != nil {
		return q, fmt.Errorf("moneyline home: %w", err)
	}
	if q.Draw, err = conv(ml.Draw); err != nil {
		return q, fmt.Errorf("moneyline draw: %w", err)
	}
	if q.Away, err = conv(ml.Away); err != nil {
		return q, fmt.Errorf("moneyline away: %w", err)
	}
	return q, nil
}

// converter returns the function turning a quoted price into decimal odds.
func converter(format string) (func(float64) (float64, error), error) {
	switch format {
	case "", FormatDecimal:
		return func(v float64) (float64, error) {
			if !(v > 1) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("decimal odds %v must be greater than 1", v)
			}
			return v, nil
		}, nil
	case FormatAmerican:
		return func(v float64) (float64, error) {
			american := int(math.Round(v))
			if american > -100 && american < 100 {
				return 0, fmt.Errorf("american odds %v must be at least +100 or at most -100", v)
			}
			return odds.AmericanToDecimal(american), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown odds format %q", format)
	}
}
