package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"PricePulse/internal/config"
	"PricePulse/internal/ingest"
	"PricePulse/internal/provider"
	"PricePulse/internal/scheduler"
	"PricePulse/internal/server"
	"PricePulse/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] PricePulse starting...")

	// Load .env if present, then config
	_ = godotenv.Load()
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init store
	st, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open store: %v", err)
	}
	defer st.Close()
	if err := st.Migrate(); err != nil {
		log.Fatalf("[FATAL] migrate store: %v", err)
	}

	// Init fetcher and pipeline
	fetcher := provider.NewYahooFetcher(cfg.Fetch.BaseURL, cfg.Proxy, cfg.Fetch.RatePerSec, cfg.Fetch.MaxRetries)
	log.Printf("[INFO] data source: %s", fetcher.Name())
	runner := ingest.NewRunner(fetcher, st, cfg.Fetch.Workers)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, runner, st, cfg.Fetch.WindowDays)
	if err := sched.Register(cfg.Fetch.RefreshCron); err != nil {
		log.Fatalf("[FATAL] register refresh task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: refresh immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, refreshing now")
		go sched.RunNow()
	}

	// Init HTTP server
	srv := server.NewServer(cfg, st, runner)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	log.Println("[INFO] PricePulse is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Printf("[INFO] signal %v received, stopping...", sig)
	case err := <-errCh:
		log.Printf("[ERROR] http server: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] shutdown: %v", err)
	}
	cancel()
	log.Println("[INFO] PricePulse stopped")
}
