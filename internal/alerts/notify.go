package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"xg-value-bot/internal/analysis"
)

// Alert is a value report for one contest.
type Alert struct {
	Contest string
	Report  string
	Flags   []analysis.Flag
}

// Sink delivers alerts somewhere: a file, a chat, a test buffer.
type Sink interface {
	Send(ctx context.Context, a Alert) error
}

// Notifier handles alert notifications
type Notifier struct {
	sinks []Sink

	mu         sync.Mutex
	lastAlerts map[string]time.Time // Dedupe alerts
	cooldown   time.Duration        // Minimum time between same alerts
}

// NewNotifier creates a new notifier delivering to sinks in order.
func NewNotifier(cooldown time.Duration, sinks ...Sink) *Notifier {
	return &Notifier{
		sinks:      sinks,
		lastAlerts: make(map[string]time.Time),
		cooldown:   cooldown,
	}
}

// checkCooldown reports whether key was alerted within the cooldown window.
// A key that is not suppressed is recorded as alerted now.
func (n *Notifier) checkCooldown(key string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if lastTime, ok := n.lastAlerts[key]; ok {
		if time.Since(lastTime) < n.cooldown {
			return true
		}
	}
	n.lastAlerts[key] = time.Now()
	return false
}

// AlertValue sends the report of a comparison to every sink. Nothing is sent
// when no line was flagged, or when every flagged side was already alerted
// within the cooldown. It returns whether the alert went out and the joined
// errors of the sinks that failed.
func (n *Notifier) AlertValue(ctx context.Context, contest string, cmp analysis.Comparison) (bool, error) {
	report, ok := cmp.Report(contest)
	if !ok {
		return false, nil
	}
	flags := cmp.Flags()

	fresh := false
	for _, f := range flags {
		key := fmt.Sprintf("%s|%s|%v|%s", contest, f.Market, f.Line, f.Side)
		if !n.checkCooldown(key) {
			fresh = true
		}
	}
	if !fresh {
		slog.Debug("Value alert suppressed by cooldown", "contest", contest)
		return false, nil
	}

	a := Alert{Contest: contest, Report: report, Flags: flags}
	var errs []error
	for _, s := range n.sinks {
		if err := s.Send(ctx, a); err != nil {
			slog.Error("Alert sink failed", "contest", contest, "error", err)
			errs = append(errs, err)
		}
	}

	slog.Info("Value found", "contest", contest, "flags", len(flags))
	return true, errors.Join(errs...)
}

// LogScan logs a scan summary
func (n *Notifier) LogScan(scanned, skipped, flagged int) {
	slog.Info("Scan complete", "contests", scanned, "skipped", skipped, "with_value", flagged)
}

// CleanupOldAlerts removes alert records older than the cooldown window.
func (n *Notifier) CleanupOldAlerts() {
	n.mu.Lock()
	defer n.mu.Unlock()
	cutoff := time.Now().Add(-n.cooldown)
	for key, t := range n.lastAlerts {
		if t.Before(cutoff) {
			delete(n.lastAlerts, key)
		}
	}
}
