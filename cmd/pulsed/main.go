package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"pulse-backend/config"
	"pulse-backend/internal/api"
	"pulse-backend/internal/auth"
	"pulse-backend/internal/backend"
	"pulse-backend/internal/booking"
	"pulse-backend/internal/db"
	"pulse-backend/internal/feed"
	"pulse-backend/internal/mw"
	"pulse-backend/internal/notification"
	"pulse-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "pulse-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Check for VAPID keys
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Fatalf("VAPID keys must be configured. Please generate them and add them to your config file.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Collection store over the row backend
	appStore := store.New(backend.NewGormClient(gormDB))
	if err := appStore.LoadAll(ctx); err != nil {
		if errors.Is(err, backend.ErrSchemaMissing) {
			// Keep serving; the status endpoint hands out the repair DDL.
			logger.Println("schema missing, starting in degraded mode")
		} else {
			logger.Printf("initial load incomplete: %v", err)
		}
	} else {
		logger.Println("collection store loaded")
	}

	// Alert worker pool
	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
	workerPool.Start(ctx)
	logger.Printf("alert worker pool started with %d workers", cfg.WorkerPool.Size)

	// Shared response cache, busted on every applied feed event
	cacheStore := api.NewCache(cfg.Server)

	// Change feed poller keeps the mirrors converged with backend writes
	if cfg.Feed.Enabled {
		poller, err := feed.NewPoller(gormDB, cfg.Feed.Interval, cfg.Feed.BatchSize)
		if err != nil {
			logger.Fatalf("failed to initialize feed poller: %v", err)
		}
		poller.Subscribe(func(ev feed.Event) {
			appStore.Apply(ev)
			mw.Bust(cacheStore)
		})
		go poller.Run(ctx)
	} else {
		logger.Println("change feed disabled, mirrors refresh on demand only")
	}

	gate := auth.NewGate(cfg.Auth.Registry)
	session := booking.NewSessionFile(cfg.Session.LastReservationFile)

	// Initialize router
	handler := api.NewHandler(appStore, gate, cfg.Venue, gormDB, &webpushOptions, session, workerPool, cacheStore)
	router := api.NewRouter(handler, cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
