// Package main implements the gymassist interactive assistant for gym members.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/codeGROOVE-dev/gymassist/pkg/chat"
	"github.com/codeGROOVE-dev/gymassist/pkg/config"
	"github.com/codeGROOVE-dev/gymassist/pkg/exercise"
	"github.com/codeGROOVE-dev/gymassist/pkg/faq"
	"github.com/codeGROOVE-dev/gymassist/pkg/forecast"
	"github.com/codeGROOVE-dev/gymassist/pkg/gemini"
	"github.com/codeGROOVE-dev/gymassist/pkg/googlemaps"
	"github.com/codeGROOVE-dev/gymassist/pkg/httpcache"
	"github.com/codeGROOVE-dev/gymassist/pkg/locator"
	"github.com/codeGROOVE-dev/gymassist/pkg/membership"
	"github.com/codeGROOVE-dev/gymassist/pkg/notify"
	"github.com/codeGROOVE-dev/gymassist/pkg/store"
	"github.com/codeGROOVE-dev/gymassist/pkg/textscore"
	"github.com/codeGROOVE-dev/gymassist/pkg/trainer"
)

const appVersion = "gymassist v1.0.0"

var (
	configPath  = flag.String("config", "", "Path to YAML config file (default "+config.DefaultPath+" if present)")
	dbPath      = flag.String("db", "", "SQLite database path (overrides config)")
	importDir   = flag.String("import", "", "Import CSV tables from this directory before starting")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	noColor     = flag.Bool("no-color", false, "Disable colored output")
	printConfig = flag.Bool("print-config", false, "Print the effective configuration and exit")
	version     = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println(appVersion)
		return
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger); err != nil {
		logger.Error("gymassist failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	if *noColor || cfg.NoColor {
		color.NoColor = true
	}
	if *printConfig {
		return config.Write(os.Stdout, cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	if *importDir != "" {
		counts, err := st.ImportCSV(ctx, *importDir)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(os.Stderr, "imported %d rows into %s\n", counts[name], name)
		}
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	var sender notify.Sender = notify.LogSender{Logger: logger}
	if cfg.SMTP.Host != "" {
		smtpSender, err := notify.NewSMTPSender(cfg.SMTP, logger)
		if err != nil {
			return err
		}
		sender = smtpSender
	}
	mail := notify.NewDispatcher(sender, time.Minute, logger)
	defer mail.Wait()

	var geocoder locator.Geocoder
	if cfg.Maps.APIKey != "" {
		geocoder = googlemaps.NewClient(cfg.Maps.APIKey, httpClient, logger)
	}

	var fallback faq.Answerer
	if cfg.GeminiEnabled() {
		fallback = gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.GCPProject, logger)
	}

	wgerCache := httpcache.New(1000, cfg.Wger.CacheTTL, logger)

	app := &chat.App{
		Members:        membership.New(st, mail, logger),
		Locator:        locator.New(st, geocoder, logger),
		Trainers:       trainer.New(st, textscore.NewVader(), st, logger),
		Exercises:      exercise.New(cfg.Wger.BaseURL, httpcache.NewClient(wgerCache, httpClient, logger), logger),
		Forecast:       forecast.New(st, cfg.Forecast, logger),
		Gyms:           st,
		FAQ:            faq.New(fallback, logger),
		Usage:          st,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		MaxAttempts:    cfg.MaxAttempts,
	}
	if err := app.Run(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
