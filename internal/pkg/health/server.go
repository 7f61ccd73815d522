package health

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/courtsight/flashcourt/internal/pkg/health/handlers"
)

func init() {
	// Wire store accessors into the handlers package
	handlers.SetGetMatchesFunc(GetMatches)
	handlers.SetGetMatchesByNameFunc(GetMatchesByName)
	handlers.SetGetProgressFunc(GetProgress)
}

// Run starts the health server in the background and shuts it down when
// ctx is cancelled.
func Run(ctx context.Context, addr string, service string, readHeaderTimeout time.Duration) {
	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("/ping", handlers.HandlePing)
	mux.HandleFunc("/health", handlers.HandleHealth)

	// Metrics endpoint
	mux.HandleFunc("/metrics", handlers.HandleMetrics)

	// Run progress endpoint
	mux.HandleFunc("/progress", handlers.HandleProgress)

	// Day records endpoints
	mux.HandleFunc("/matches", handlers.HandleMatches)
	mux.HandleFunc("/match-by-name", handlers.HandleMatchByName)

	if readHeaderTimeout <= 0 {
		slog.Error("read_header_timeout must be specified in config")
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		slog.Info("Health server listening", "service", service, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Health server error", "service", service, "error", err)
		}
	}()
}

func AddrFor(port int) string {
	if port <= 0 {
		slog.Error("port must be greater than 0")
		os.Exit(1)
	}
	return fmt.Sprintf(":%d", port)
}
