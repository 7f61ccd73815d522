package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/courtsight/flashcourt/internal/pkg/browser"
	pkgconfig "github.com/courtsight/flashcourt/internal/pkg/config"
	"github.com/courtsight/flashcourt/internal/pkg/health"
	"github.com/courtsight/flashcourt/internal/pkg/logging"
	"github.com/courtsight/flashcourt/internal/pkg/performance"
	"github.com/courtsight/flashcourt/internal/pkg/reporting"
	"github.com/courtsight/flashcourt/internal/pkg/storage"
	"github.com/courtsight/flashcourt/internal/scraper/flashscore"
)

const defaultConfigPath = "configs/config.yaml"

type config struct {
	configPath   string
	day          string
	results      bool
	date         string
	runFor       time.Duration
	testTelegram bool
}

func main() {
	if err := run(); err != nil {
		slog.Error("Scraper failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	slog.Info("Starting scraper...")

	cfg := parseFlags()
	slog.Info("Loading config", "path", cfg.configPath)

	appConfig, err := pkgconfig.Load(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.SetupLogger(&appConfig.Logging, "scraper")
	if err != nil {
		slog.Warn("Failed to setup logging, continuing with default logger", "error", err)
		logger = slog.Default()
	}
	slog.Info("Config loaded successfully")

	day, err := parseDay(cfg.day)
	if err != nil {
		return err
	}
	if cfg.date != "" {
		if !cfg.results {
			return fmt.Errorf("-date is only valid together with -results")
		}
		if _, err := time.Parse("20060102", cfg.date); err != nil {
			return fmt.Errorf("invalid -date %q, want YYYYMMDD: %w", cfg.date, err)
		}
	}

	ctx, cancel := createContext(cfg.runFor)
	defer cancel()
	var stopFlag atomic.Bool
	setupSignalHandler(ctx, cancel, &stopFlag)

	notifier := reporting.NewTelegramNotifier(&appConfig.Telegram)
	if notifier != nil {
		defer notifier.Stop()
	}
	if cfg.testTelegram {
		if notifier == nil {
			return fmt.Errorf("telegram is not configured, set telegram.bot_token and telegram.chat_id")
		}
		if err := notifier.SendTestAlert(ctx, "Scraper connectivity check"); err != nil {
			return fmt.Errorf("failed to queue test alert: %w", err)
		}
		slog.Info("Test alert queued")
		return nil
	}

	if appConfig.Health.Port > 0 {
		health.Run(ctx, health.AddrFor(appConfig.Health.Port), "scraper", appConfig.Health.ReadHeaderTimeout())
	}

	var mirror storage.ResultsMirror
	if appConfig.Postgres.DSN != "" {
		pg, err := storage.NewPostgresMirror(&appConfig.Postgres, logger)
		if err != nil {
			slog.Warn("Postgres mirror unavailable, continuing without it", "error", err)
		} else {
			mirror = pg
			defer pg.Close()
		}
	}

	dateKey := cfg.date
	if dateKey == "" {
		dateKey = day.DateKey(time.Now())
	}
	store, err := storage.NewJSONStore(appConfig.Storage.OutputDir, dateKey, logger)
	if err != nil {
		return fmt.Errorf("failed to open day store: %w", err)
	}
	slog.Info("Day store ready", "path", store.Path())

	session, err := browser.NewSession(ctx, appConfig.Browser, appConfig.Timeouts, logger)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer session.Close()

	scraper, err := flashscore.New(flashscore.Deps{
		Page:     session,
		Store:    store,
		Config:   appConfig,
		Reporter: reporting.MultiReporter{reporting.NewLogReporter(logger), health.ProgressReporter{}},
		Mirror:   mirror,
		Logger:   logger,
		Stop:     stopFlag.Load,
	})
	if err != nil {
		return fmt.Errorf("failed to build scraper: %w", err)
	}

	if cfg.results {
		err = runResults(ctx, scraper, notifier, dateKey)
	} else {
		err = runScrape(ctx, scraper, store, notifier, day, dateKey)
	}
	health.SetPhase("idle")
	performance.GetTracker().PrintSummary()
	return err
}

func runScrape(ctx context.Context, scraper *flashscore.Scraper, store storage.MatchStore, notifier *reporting.TelegramNotifier, day flashscore.Day, dateKey string) error {
	health.StartRun("scraping")
	health.ClearMatches()
	publishDayRecords(store)

	summary, err := scraper.ScrapeDay(ctx, day)
	if err != nil {
		notifyFailure(notifier, "scraping", err)
		return fmt.Errorf("scrape run failed: %w", err)
	}

	publishDayRecords(store)
	if notifier != nil {
		if err := notifier.SendRunSummary(context.Background(), dateKey, summary); err != nil {
			slog.Warn("Failed to queue telegram summary", "error", err)
		}
	}
	slog.Info("Scrape run finished", "date_key", dateKey, "summary", summary.String())
	return nil
}

func runResults(ctx context.Context, scraper *flashscore.Scraper, notifier *reporting.TelegramNotifier, dateKey string) error {
	health.StartRun("results")

	summary, err := scraper.CollectResults(ctx, dateKey)
	if err != nil {
		notifyFailure(notifier, "results", err)
		return fmt.Errorf("results run failed: %w", err)
	}
	slog.Info("Results run finished", "date_key", dateKey, "summary", summary.String())
	return nil
}

// publishDayRecords mirrors the day file into the in-memory store behind
// the /matches endpoint, before and after a run.
func publishDayRecords(store storage.MatchStore) {
	records, err := store.Load()
	if err != nil {
		slog.Warn("Failed to load day file for publishing", "error", err)
		return
	}
	health.PublishMatches(records)
}

func notifyFailure(notifier *reporting.TelegramNotifier, stage string, runErr error) {
	if notifier == nil {
		return
	}
	if err := notifier.SendFailureAlert(context.Background(), stage, runErr); err != nil {
		slog.Warn("Failed to queue telegram failure alert", "stage", stage, "error", err)
	}
}

func parseFlags() config {
	var cfg config

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.StringVar(&cfg.day, "day", "today", "Schedule day to scrape: 'today' or 'tomorrow'")
	flag.BoolVar(&cfg.results, "results", false, "Collect final scores for already stored matches instead of scraping")
	flag.StringVar(&cfg.date, "date", "", "Day file date key (YYYYMMDD) for -results. Empty = today")
	flag.DurationVar(&cfg.runFor, "run-for", 0, "Auto-stop after duration (e.g. 10m, 1h). 0 = run until SIGINT/SIGTERM")
	flag.BoolVar(&cfg.testTelegram, "test-telegram", false, "Send a telegram connectivity check and exit")
	flag.Parse()
	return cfg
}

func parseDay(s string) (flashscore.Day, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return flashscore.Today, nil
	case "tomorrow":
		return flashscore.Tomorrow, nil
	default:
		return "", fmt.Errorf("unknown -day %q, want 'today' or 'tomorrow'", s)
	}
}

func createContext(runFor time.Duration) (context.Context, context.CancelFunc) {
	if runFor > 0 {
		return context.WithTimeout(context.Background(), runFor)
	}
	return context.WithCancel(context.Background())
}

// setupSignalHandler installs two-stage shutdown: the first signal asks
// the scraper to stop after the match in flight, the second aborts the
// run by cancelling the context.
func setupSignalHandler(ctx context.Context, cancel context.CancelFunc, stop *atomic.Bool) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal, finishing current match...", "signal", sig.String())
			stop.Store(true)
		case <-ctx.Done():
			return
		}
		select {
		case sig := <-sigChan:
			slog.Info("Received second shutdown signal, aborting run", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
}
