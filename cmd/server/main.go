package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "goldloan-backend/internal/api/http"
	"goldloan-backend/internal/config"
	"goldloan-backend/internal/jobs"
	"goldloan-backend/internal/logger"
	"goldloan-backend/internal/notify"
	"goldloan-backend/internal/repository/sqlstore"
	"goldloan-backend/internal/scheduler"
	"goldloan-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Gold Loan Ledger Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "driver", cfg.Database.Driver, "host", cfg.Database.Host, "database", cfg.Database.Database, "path", cfg.Database.Path)
	logger.Info("Interest configuration", "monthly_rate_percent", cfg.Interest.MonthlyRatePercent, "timezone", cfg.Interest.Timezone)

	// Initialize Database
	ctx := context.Background()
	db, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.GetDatabaseDSN())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if err := sqlstore.EnsureSchema(ctx, db); err != nil {
		logger.Error("Failed to prepare schema", "error", err)
		log.Fatalf("Failed to prepare schema: %v", err)
	}

	// Initialize Repositories
	store := sqlstore.NewStore(db)

	// Initialize Notification Sinks
	sinks := notify.Multi{notify.NewStoreSink(store.NotificationRepository)}
	var emailSink *notify.EmailSink
	if cfg.SendGrid.APIKey != "" && len(cfg.SendGrid.Recipients) > 0 {
		logger.Info("Email notifications enabled", "recipients", len(cfg.SendGrid.Recipients))
		emailSink = notify.NewEmailSink(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName, cfg.SendGrid.Recipients)
		sinks = append(sinks, emailSink)
	}

	// Initialize Services
	settings := service.Settings{
		MonthlyRatePercent: cfg.Interest.MonthlyRatePercent,
		Location:           cfg.Location(),
		BatchConcurrency:   cfg.Interest.BatchConcurrency,
	}
	customerSvc := service.NewCustomerService(store.CustomerRepository, store.TxManager, sinks, settings)
	interestSvc := service.NewInterestService(store.CustomerRepository, store.TxManager, sinks, settings)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	// Optionally run the daily interest job in-process
	var runs httpapi.LastRunReporter
	var cronScheduler *scheduler.Scheduler
	if cfg.Scheduler.EmbedInServer {
		jobRunner := jobs.NewJobRunner(interestSvc, cfg)
		cronScheduler, err = scheduler.NewScheduler(jobRunner, cfg.Location())
		if err != nil {
			log.Fatalf("Failed to initialize scheduler: %v", err)
		}
		cronScheduler.Start()
		runs = jobRunner
		logger.Info("Embedded scheduler running", "next_run", cronScheduler.NextRun())
	}

	// Initialize HTTP handlers
	router := httpapi.NewRouter(
		httpapi.NewCustomerHandler(customerSvc),
		httpapi.NewInterestHandler(interestSvc, runs),
		httpapi.NewNotificationHandler(noteSvc),
	)

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")
	if cronScheduler != nil {
		cronScheduler.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if emailSink != nil {
		emailSink.Wait()
	}
	logger.Info("Server stopped. Goodbye!")
}
