package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tele "gopkg.in/telebot.v4"

	"delphiwatch/app/api"
	"delphiwatch/app/cfg"
	"delphiwatch/app/database"
	"delphiwatch/app/feed"
	"delphiwatch/app/notifier"
	"delphiwatch/app/rules"
	"delphiwatch/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting delphiwatch", "version", appCfg.Version)

	// Database connection and migrations
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	deliveryRepo := database.NewDeliveryRepository(db)
	cursorRepo := database.NewCursorRepository(db)

	// Rules: a broken rules file at startup is a configuration error
	rulesCache := rules.NewCache(appCfg.RulesFile)
	if err := rulesCache.Run(); err != nil {
		slog.Error("Failed to load rules", "file", appCfg.RulesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Rules loaded", "file", appCfg.RulesFile, "rules", rulesCache.Get().Len())

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	watcher := rules.NewWatcher(rulesCache)
	go func() {
		if err := watcher.Run(watchCtx); err != nil {
			slog.Warn("Rules watcher stopped", "error", err)
		}
	}()

	// Telegram transport
	bot, err := tele.NewBot(tele.Settings{Token: appCfg.BotToken})
	if err != nil {
		slog.Error("Failed to initialize Telegram bot", "error", err)
		os.Exit(1)
	}
	dispatcher := notifier.New(bot, appCfg.ChatID, appCfg.ForumURL, appCfg.DeliveriesPerMin)

	// Pipeline components
	httpClient := &http.Client{Timeout: appCfg.GetFetchTimeout()}
	fetcher := feed.NewFetcher(httpClient, feed.NewParser(), appCfg.FeedURL, appCfg.UserAgent, appCfg.GetFetchTimeout())
	matcher := feed.NewMatcher()

	pollTask := tasks.NewPollTask(fetcher, matcher, rulesCache, deliveryRepo, cursorRepo, dispatcher)
	scheduler := tasks.NewScheduler(pollTask, appCfg.GetPollInterval(), appCfg.GetMaxBackoff())
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Scheduler started", "interval", appCfg.GetPollInterval().String(), "feed", appCfg.FeedURL)

	// HTTP server
	apiHandler := api.NewHandler(deliveryRepo, cursorRepo, rulesCache, scheduler, appCfg.Version)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	case err := <-scheduler.Fatal():
		slog.Error("Scheduler stopped on store failure", "error", err)
	}

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", "error", err)
	}

	// Scheduler and rules watcher are stopped via defers; the scheduler lets
	// the in-flight cycle finish its current post before returning.
	slog.Info("Shutdown complete")
}
