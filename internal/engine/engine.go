package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"xg-value-bot/internal/alerts"
	"xg-value-bot/internal/analysis"
	"xg-value-bot/internal/config"
	"xg-value-bot/internal/contest"
	"xg-value-bot/internal/poisson"
)

// cleanupInterval is how often stale cooldown records are dropped.
const cleanupInterval = 10 * time.Minute

// ContestSource returns the contests to analyse on each scan.
type ContestSource func() ([]contest.Contest, error)

// ThresholdFunc returns the current value threshold in percent. It is called
// once per contest.
type ThresholdFunc func() (int, error)

// Pruner drops stored flags older than a cutoff.
type Pruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Result is the outcome of analysing one contest.
type Result struct {
	Contest    contest.Contest
	Markets    poisson.Markets
	Comparison analysis.Comparison

	// Skipped is set when the contest could not be analysed at all.
	Skipped error
	// Err is set when the comparison was aborted or an alert sink failed.
	Err     error
	Alerted bool
}

// Summary counts the results of one scan.
type Summary struct {
	Scanned int
	Skipped int
	Failed  int
	Alerted int
}

// Engine is the main orchestrator: it loads contests, prices them with the
// Poisson model and reports value against the counterpart quotes.
type Engine struct {
	contests  ContestSource
	threshold ThresholdFunc
	notifier  *alerts.Notifier
	cfg       config.Config

	history   Pruner
	retention time.Duration

	lastScan atomic.Int64 // unix nanos
}

// New creates a new Engine with all dependencies.
func New(contests ContestSource, threshold ThresholdFunc, notifier *alerts.Notifier, cfg config.Config) *Engine {
	return &Engine{
		contests:  contests,
		threshold: threshold,
		notifier:  notifier,
		cfg:       cfg,
	}
}

// SetRetention makes Run delete flags older than keep from h on every
// cleanup tick. A zero keep disables it.
func (e *Engine) SetRetention(h Pruner, keep time.Duration) {
	e.history = h
	e.retention = keep
}

// Run scans immediately and then on every poll interval. It blocks until ctx
// is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.PollInterval())
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(cleanupInterval)
	defer cleanupTicker.Stop()

	slog.Info("Starting polling loop", "interval", e.cfg.PollInterval())
	e.scanAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Bot stopped gracefully")
			return

		case <-cleanupTicker.C:
			e.notifier.CleanupOldAlerts()
			e.pruneHistory(ctx)

		case <-ticker.C:
			e.scanAndLog(ctx)
		}
	}
}

func (e *Engine) scanAndLog(ctx context.Context) {
	if _, _, err := e.Scan(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Scan failed", "error", err)
	}
}

func (e *Engine) pruneHistory(ctx context.Context) {
	if e.history == nil || e.retention <= 0 {
		return
	}
	n, err := e.history.DeleteBefore(ctx, time.Now().Add(-e.retention))
	if err != nil {
		slog.Error("History cleanup failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("History cleanup", "deleted", n, "retention", e.retention)
	}
}

// LastScan returns when the last scan finished, or the zero time.
func (e *Engine) LastScan() time.Time {
	n := e.lastScan.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Scan performs a single scan cycle: load contests, then price and compare
// them in parallel on at most cfg.Workers goroutines. Results keep the
// contest order. The error is only set when the contests could not be loaded
// or ctx was cancelled; per-contest problems are in the results.
func (e *Engine) Scan(ctx context.Context) ([]Result, Summary, error) {
	contests, err := e.contests()
	if err != nil {
		return nil, Summary{}, fmt.Errorf("loading contests: %w", err)
	}

	results := make([]Result, len(contests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.cfg.Workers, 1))
	for i, c := range contests {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.Analyze(gctx, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, Summary{}, err
	}

	var sum Summary
	for _, r := range results {
		sum.Scanned++
		switch {
		case r.Skipped != nil:
			sum.Skipped++
		case r.Err != nil:
			sum.Failed++
		}
		if r.Alerted {
			sum.Alerted++
		}
	}

	e.lastScan.Store(time.Now().UnixNano())
	e.notifier.LogScan(sum.Scanned, sum.Skipped, sum.Alerted)
	return results, sum, nil
}

// Analyze prices one contest and reports any value found.
func (e *Engine) Analyze(ctx context.Context, c contest.Contest) Result {
	res := Result{Contest: c}
	name := c.String()

	if err := c.Check(); err != nil {
		res.Skipped = err
		if errors.Is(err, contest.ErrNoOdds) {
			slog.Warn("Nothing to compare", "contest", name, "reason", err)
		} else {
			slog.Warn("Cannot price contest", "contest", name, "reason", err)
		}
		return res
	}

	rates := c.Rates()
	res.Markets = poisson.Price(rates)
	slog.Debug("Priced contest", "contest", name, "quality_home", rates.Home, "quality_away", rates.Away)

	threshold, err := e.threshold()
	if err != nil {
		res.Err = fmt.Errorf("comparison aborted: %w", err)
		slog.Error("Comparison aborted: value threshold unavailable", "contest", name, "error", err)
		return res
	}

	res.Comparison = analysis.Compare(c.Quotes, res.Markets, threshold)
	for _, l := range res.Comparison.Lines {
		slog.Debug(l.String(), "contest", name, "value", l.Flagged())
	}

	res.Alerted, res.Err = e.notifier.AlertValue(ctx, name, res.Comparison)
	return res
}
