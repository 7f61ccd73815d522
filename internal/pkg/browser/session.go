package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/courtsight/flashcourt/internal/pkg/config"
	"github.com/courtsight/flashcourt/internal/pkg/interfaces"
)

// Session owns one headless Chrome process and drives its single page.
// It is not safe for concurrent use; the orchestrator holds it
// exclusively for the duration of a run.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	pageLoadTimeout time.Duration
	elementTimeout  time.Duration
	logger          *slog.Logger
}

var _ interfaces.Page = (*Session)(nil)

// NewSession launches the browser. The parent context bounds the whole
// browser lifetime; cancelling it kills the process.
func NewSession(parent context.Context, cfg config.BrowserConfig, timeouts config.TimeoutConfig, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))

	s := &Session{
		ctx:             ctx,
		cancel:          cancel,
		allocCancel:     allocCancel,
		pageLoadTimeout: timeouts.PageLoad(),
		elementTimeout:  timeouts.Element(),
		logger:          logger,
	}

	// An empty Run starts the browser now, so launch failures surface
	// here instead of on the first navigation.
	if err := chromedp.Run(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	logger.Info("browser session started", "headless", cfg.Headless)
	return s, nil
}

// Close shuts the browser down. Safe to call more than once.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, s.pageLoadTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// WaitReady waits for the document body plus a short settle period. The
// site renders its odds and H2H tables client-side after the load event,
// so navigation completing does not mean the content exists yet.
func (s *Session) WaitReady(ctx context.Context, timeout time.Duration) error {
	settle := 2 * time.Second
	if timeout > 0 && timeout < settle {
		settle = timeout
	}
	return s.run(ctx, timeout,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
	)
}

func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (s *Session) Click(ctx context.Context, selector string) error {
	return s.run(ctx, s.elementTimeout,
		chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible),
	)
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, s.elementTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}
	return html, nil
}

func (s *Session) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, s.elementTimeout, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return loc, nil
}

// run executes actions on the browser context, bounded by the timeout
// and cancelled early if the caller's context goes away.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var runCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}
