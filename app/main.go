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

	"github.com/ouvidorlabs/ouvidor/app/ai"
	"github.com/ouvidorlabs/ouvidor/app/api"
	"github.com/ouvidorlabs/ouvidor/app/cfg"
	"github.com/ouvidorlabs/ouvidor/app/company"
	"github.com/ouvidorlabs/ouvidor/app/coupon"
	"github.com/ouvidorlabs/ouvidor/app/database"
	"github.com/ouvidorlabs/ouvidor/app/scraper"
	"github.com/ouvidorlabs/ouvidor/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Ouvidor server", "version", cfg.GetVersion())

	db, err := database.Open(appCfg.DBPath)
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

	configCache := company.NewConfigCache(appCfg.CompaniesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load company configurations", "dir", appCfg.CompaniesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Company configurations loaded", "count", configCache.GetConfigCount())

	companyRepo := database.NewCompanyRepository(db)
	complaintRepo := database.NewComplaintRepository(db)
	couponRepo := database.NewCouponRepository(db)
	couponService := coupon.NewService(couponRepo, appCfg.CouponPrefix)

	// The AI layer is optional: without an API key the scraper and the read
	// API still work, analysis and drafting are just disabled.
	var analyzer *ai.Analyzer
	var responder *ai.Responder
	if appCfg.GeminiAPIKey != "" {
		client, err := ai.NewGeminiClient(context.Background(), appCfg.GeminiAPIKey, appCfg.GeminiModel)
		if err != nil {
			slog.Error("Failed to initialize AI client", "error", err)
			os.Exit(1)
		}
		analyzer = ai.NewAnalyzer(client)
		responder = ai.NewResponder(client)
	} else {
		responder = ai.NewResponder(nil)
		slog.Warn("GEMINI_API_KEY not set, analysis disabled and responses use plain templates")
	}

	providerFactory := func() (scraper.SessionProvider, error) {
		return scraper.NewBrowserProvider(scraper.BrowserOptions{
			Headless:   appCfg.Headless,
			UserAgent:  appCfg.UserAgent,
			NavTimeout: time.Duration(appCfg.NavTimeout) * time.Second,
		})
	}

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval_s", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(configCache, companyRepo, complaintRepo, providerFactory, analyzer)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(configCache, companyRepo, complaintRepo, couponService,
		analyzer, responder, scheduler, providerFactory)
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
		slog.Info("HTTP server listening", "port", appCfg.Port)
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
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
