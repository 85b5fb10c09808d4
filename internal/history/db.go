// Package history keeps a queryable record of every flagged side.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"xg-value-bot/internal/alerts"
	"xg-value-bot/internal/analysis"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Record is one flagged side of one contest.
type Record struct {
	ID          string
	Contest     string
	Market      string // "moneyline", "handicap", "total"
	Line        float64
	Side        string // "home", "draw", "away", "over", "under"
	Model       float64
	Counterpart float64
	Diff        float64
	CreatedAt   time.Time
}

// DB handles flag storage
type DB struct {
	db     *sql.DB
	driver string
}

// Open connects to the history database and creates the schema if needed.
func Open(driver, dsn string) (*DB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported history driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if driver == DriverSQLite {
		// One writer at a time; sqlite serialises anyway.
		db.SetMaxOpenConns(1)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db, driver: driver}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS flags (
		id TEXT PRIMARY KEY,
		contest TEXT NOT NULL,
		market TEXT NOT NULL,
		line REAL NOT NULL,
		side TEXT NOT NULL,
		model_odds REAL NOT NULL,
		counterpart_odds REAL NOT NULL,
		diff_pct REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_flags_contest ON flags(contest);
	CREATE INDEX IF NOT EXISTS idx_flags_created ON flags(created_at);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// rebind rewrites ? placeholders into the driver's syntax.
func (d *DB) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// AddFlags stores the flagged sides of a contest in one transaction and
// returns their ids.
func (d *DB) AddFlags(ctx context.Context, contest string, flags []analysis.Flag) ([]string, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin flags tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, d.rebind(`
		INSERT INTO flags (id, contest, market, line, side, model_odds, counterpart_odds, diff_pct, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return nil, fmt.Errorf("preparing flag insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	ids := make([]string, 0, len(flags))
	for _, f := range flags {
		id := uuid.NewString()
		if _, err := stmt.ExecContext(ctx, id, contest, string(f.Market), f.Line, string(f.Side),
			f.Model, f.Counterpart, f.Diff, now); err != nil {
			return nil, fmt.Errorf("inserting flag: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit flags: %w", err)
	}
	return ids, nil
}

// Send implements alerts.Sink by storing the alert's flags.
func (d *DB) Send(ctx context.Context, a alerts.Alert) error {
	_, err := d.AddFlags(ctx, a.Contest, a.Flags)
	return err
}

const selectFlags = `
	SELECT id, contest, market, line, side, model_odds, counterpart_odds, diff_pct, created_at
	FROM flags`

// FlagsByContest retrieves the flags of one contest, newest first.
func (d *DB) FlagsByContest(ctx context.Context, contest string) ([]Record, error) {
	return d.query(ctx, selectFlags+` WHERE contest = ? ORDER BY created_at DESC, id`, contest)
}

// RecentFlags retrieves at most limit flags, newest first.
func (d *DB) RecentFlags(ctx context.Context, limit int) ([]Record, error) {
	return d.query(ctx, selectFlags+` ORDER BY created_at DESC, id LIMIT ?`, limit)
}

// DeleteBefore removes flags older than cutoff and returns how many went.
func (d *DB) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx, d.rebind(`DELETE FROM flags WHERE created_at < ?`), cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting flags: %w", err)
	}
	return res.RowsAffected()
}

// Review writes flags as a table to w: the flags of contest when it is set,
// otherwise the latest limit flags.
func (d *DB) Review(ctx context.Context, w io.Writer, contest string, limit int) error {
	var records []Record
	var err error
	if contest != "" {
		records, err = d.FlagsByContest(ctx, contest)
	} else {
		records, err = d.RecentFlags(ctx, limit)
	}
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "time\tcontest\tmarket\tline\tside\tmodel\tcounterpart\tdiff %")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%v\t%s\t%v\t%v\t%v\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Contest, r.Market, r.Line, r.Side,
			r.Model, r.Counterpart, r.Diff)
	}
	return tw.Flush()
}

func (d *DB) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := d.db.QueryContext(ctx, d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying flags: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Contest, &r.Market, &r.Line, &r.Side,
			&r.Model, &r.Counterpart, &r.Diff, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning flag row: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}
