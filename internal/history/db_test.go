package history

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"xg-value-bot/internal/alerts"
	"xg-value-bot/internal/analysis"
	"xg-value-bot/internal/odds"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var testFlags = []analysis.Flag{
	{Market: odds.MarketMoneyline, Side: analysis.SideHome, Model: 2.0, Counterpart: 2.1, Diff: 5},
	{Market: odds.MarketTotal, Line: 5.5, Side: analysis.SideUnder, Model: 1.8, Counterpart: 1.9, Diff: 5.556},
}

func TestAddFlags(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	ids, err := db.AddFlags(ctx, "2024-01-05 Boston - Tampa Bay.", testFlags)
	if err != nil {
		t.Fatalf("AddFlags: %v", err)
	}
	if len(ids) != 2 || ids[0] == ids[1] {
		t.Fatalf("ids = %v, want two distinct", ids)
	}

	records, err := db.FlagsByContest(ctx, "2024-01-05 Boston - Tampa Bay.")
	if err != nil {
		t.Fatalf("FlagsByContest: %v", err)
	}
	var r *Record
	for i := range records {
		if records[i].ID == ids[1] {
			r = &records[i]
		}
	}
	if r == nil {
		t.Fatalf("flag %s not found in %+v", ids[1], records)
	}
	if r.Contest != "2024-01-05 Boston - Tampa Bay." || r.Market != "total" || r.Line != 5.5 ||
		r.Side != "under" || r.Model != 1.8 || r.Counterpart != 1.9 || r.Diff != 5.556 {
		t.Errorf("record = %+v", r)
	}
	if time.Since(r.CreatedAt) > time.Minute {
		t.Errorf("CreatedAt = %v, want recent", r.CreatedAt)
	}
}

func TestReview(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.AddFlags(ctx, "Boston - Tampa Bay.", testFlags); err != nil {
		t.Fatal(err)
	}
	if _, err := db.AddFlags(ctx, "Seattle - Calgary.", testFlags[:1]); err != nil {
		t.Fatal(err)
	}

	var all bytes.Buffer
	if err := db.Review(ctx, &all, "", 10); err != nil {
		t.Fatalf("Review: %v", err)
	}
	lines := strings.Split(strings.TrimRight(all.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header and 3 flags:\n%s", len(lines), all.String())
	}
	if !strings.HasPrefix(lines[0], "time") || !strings.Contains(lines[0], "diff %") {
		t.Errorf("header = %q", lines[0])
	}

	var one bytes.Buffer
	if err := db.Review(ctx, &one, "Seattle - Calgary.", 10); err != nil {
		t.Fatalf("Review: %v", err)
	}
	out := one.String()
	if strings.Count(out, "\n") != 2 || !strings.Contains(out, "Seattle - Calgary.") || strings.Contains(out, "Boston") {
		t.Errorf("contest review =\n%s", out)
	}
	if !strings.Contains(out, "moneyline") || !strings.Contains(out, "home") {
		t.Errorf("contest review missing the flag:\n%s", out)
	}
}

func TestSinkAndQueries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	var sink alerts.Sink = db
	if err := sink.Send(ctx, alerts.Alert{Contest: "a", Flags: testFlags}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := sink.Send(ctx, alerts.Alert{Contest: "b", Flags: testFlags[:1]}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	byContest, err := db.FlagsByContest(ctx, "a")
	if err != nil {
		t.Fatalf("FlagsByContest: %v", err)
	}
	if len(byContest) != 2 {
		t.Errorf("contest a has %d flags, want 2", len(byContest))
	}

	recent, err := db.RecentFlags(ctx, 2)
	if err != nil {
		t.Fatalf("RecentFlags: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("RecentFlags(2) returned %d", len(recent))
	}

	n, err := db.DeleteBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted %d flags, want 3", n)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open("mysql", "dsn"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM flags WHERE contest = ? AND side = ? LIMIT ?"

	sqlite := &DB{driver: DriverSQLite}
	if got := sqlite.rebind(q); got != q {
		t.Errorf("sqlite rebind = %q", got)
	}

	pg := &DB{driver: DriverPostgres}
	want := "SELECT * FROM flags WHERE contest = $1 AND side = $2 LIMIT $3"
	if got := pg.rebind(q); got != want {
		t.Errorf("postgres rebind = %q, want %q", got, want)
	}
}
