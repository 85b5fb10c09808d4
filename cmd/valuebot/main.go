package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"xg-value-bot/internal/alerts"
	"xg-value-bot/internal/config"
	"xg-value-bot/internal/contest"
	"xg-value-bot/internal/engine"
	"xg-value-bot/internal/history"
	"xg-value-bot/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	contestsPath := flag.String("contests", "", "contest file (overrides CONTESTS_PATH)")
	watch := flag.Bool("watch", false, "re-scan on every poll interval until interrupted")
	recent := flag.Int("recent", 0, "print the latest N flags from the history and exit")
	reviewContest := flag.String("review", "", "print the history flags of one contest and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *contestsPath != "" {
		cfg.ContestsPath = *contestsPath
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	if *recent > 0 || *reviewContest != "" {
		return review(cfg, *reviewContest, *recent)
	}

	sinks := []alerts.Sink{alerts.NewStatsFile(cfg.StatsPath)}

	var db *history.DB
	if cfg.HistoryDSN != "" {
		db, err = history.Open(cfg.HistoryDriver, cfg.HistoryDSN)
		if err != nil {
			telemetry.Warnf("History disabled: %v", err)
		} else {
			defer db.Close()
			sinks = append(sinks, db)
		}
	}

	if cfg.TelegramToken != "" {
		tg, err := alerts.NewTelegramSink(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			telemetry.Warnf("Telegram disabled: %v", err)
		} else {
			sinks = append(sinks, tg)
		}
	}

	// One-shot runs report every flag; only watch mode needs dedupe.
	cooldown := time.Duration(0)
	if *watch {
		cooldown = cfg.AlertCooldown()
	}
	notifier := alerts.NewNotifier(cooldown, sinks...)

	source := func() ([]contest.Contest, error) { return contest.Load(cfg.ContestsPath) }
	threshold := func() (int, error) { return config.LoadThreshold(config.DefaultEnvFile) }
	eng := engine.New(source, threshold, notifier, cfg)
	if db != nil {
		eng.SetRetention(db, cfg.HistoryRetention())
	}

	telemetry.Infof("Value bot started | contests=%s stats=%s workers=%d sinks=%d watch=%v",
		cfg.ContestsPath, cfg.StatsPath, cfg.Workers, len(sinks), *watch)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !*watch {
		if _, _, err := eng.Scan(ctx); err != nil {
			telemetry.Errorf("Scan failed: %v", err)
			return 1
		}
		return 0
	}

	srv := startHealthServer(cfg.Port, eng, cfg.PollInterval())
	eng.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Warnf("Health server shutdown: %v", err)
	}
	return 0
}

// review prints stored flags instead of scanning.
func review(cfg config.Config, contestName string, limit int) int {
	if cfg.HistoryDSN == "" {
		telemetry.Errorf("HISTORY_DSN is not set; there is no history to review")
		return 1
	}
	db, err := history.Open(cfg.HistoryDriver, cfg.HistoryDSN)
	if err != nil {
		telemetry.Errorf("Opening history: %v", err)
		return 1
	}
	defer db.Close()

	if err := db.Review(context.Background(), os.Stdout, contestName, limit); err != nil {
		telemetry.Errorf("Reading history: %v", err)
		return 1
	}
	return 0
}

// startHealthServer serves /health, which fails once scans have stalled for
// more than three poll intervals.
func startHealthServer(port string, eng *engine.Engine, poll time.Duration) *http.Server {
	mux := http.NewServeMux()
	started := time.Now()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		last := eng.LastScan()
		if last.IsZero() {
			last = started
		}
		if age := time.Since(last); age > 3*poll {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "stale: last scan %s ago", age.Round(time.Second))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("xG Value Bot - Running"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		telemetry.Infof("Health server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.Errorf("Health server error: %v", err)
		}
	}()
	return srv
}
