// Command distiller serves the single-audit distiller: the Clearinghouse
// download workflow, the gen-table agency summaries, and the findings API.
//
// Usage:
//
//	distiller -config distiller.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/opengrants/distiller/config"
	"github.com/opengrants/distiller/dbopen"
	"github.com/opengrants/distiller/facsearch"
	"github.com/opengrants/distiller/findings"
	"github.com/opengrants/distiller/runlog"
	"github.com/opengrants/distiller/web"
)

func main() {
	configPath := flag.String("config", "", "path to distiller.yaml config file")
	logLevel := flag.String("log-level", env("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	flag.Parse()

	var lvl slog.Level
	switch *logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath); err != nil {
		logger.Error("distiller: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	if p := os.Getenv("PORT"); p != "" {
		cfg.Server.Port = p
	}
	if f := os.Getenv("GEN_FILE"); f != "" {
		cfg.Server.GenFile = f
	}

	db, err := dbopen.Open(cfg.Database.Path,
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(findings.Schema),
		dbopen.WithSchema(runlog.Schema))
	if err != nil {
		return err
	}
	defer db.Close()

	runner := facsearch.NewRunner(facsearch.Config{
		BrowserBin:   cfg.Browser.Bin,
		DownloadDir:  cfg.Browser.DownloadDir,
		Headless:     cfg.Browser.HeadlessEnabled(),
		Stealth:      cfg.Browser.Stealth,
		SlotsPerPage: cfg.Browser.SlotsPerPage,
		PollBudget:   cfg.Browser.PollBudget,
		PollInterval: cfg.Browser.PollInterval,
		FindTimeout:  cfg.Browser.FindTimeout,
		Logger:       logger,
	})
	// The browser is a hard dependency of the download workflow; refuse to
	// start without one rather than fail on the first request.
	if err := runner.CheckBrowser(); err != nil {
		return err
	}

	srv, err := web.New(web.Config{GenFile: cfg.Server.GenFile}, logger,
		findings.NewService(db), runlog.New(db), runner)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// Download sessions block the request for the whole browser run.
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("server stopped")
	return nil
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
