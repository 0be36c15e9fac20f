package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"upfolio/internal/config"
	"upfolio/internal/proxy"
	"upfolio/internal/recorder"
	"upfolio/internal/upstream"
	"upfolio/internal/util"
)

func main() {
	// Credentials commonly live in a .env file during development; absence
	// is fine, the environment may carry them directly.
	_ = godotenv.Load()

	cfgPath := os.Getenv("UPFOLIO_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	up := upstream.NewClient(
		cfg.Upstream.BaseURL,
		cfg.Upstream.APIKey,
		cfg.Upstream.APISecret,
		cfg.Upstream.RedirectURI,
	)

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Storage.SQLitePath != "" {
		sq, err := recorder.NewSQLiteRecorder(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening snapshot recorder: %v", err)
		}
		rec = sq
		logger.Info("snapshot recorder enabled", "path", cfg.Storage.SQLitePath)
	}
	defer rec.Close()

	srv := proxy.NewServer(up, cfg.Server.FrontendOrigin, rec, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("proxy listening", "addr", httpServer.Addr, "upstream", cfg.Upstream.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down proxy")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
