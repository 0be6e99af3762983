package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

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
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'apply-daily-interest')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Gold Loan Cronjob Runner...", "log_level", cfg.Log.Level, "timezone", cfg.Interest.Timezone)

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
		log.Fatalf("Failed to prepare schema: %v", err)
	}

	// Initialize Repositories
	store := sqlstore.NewStore(db)

	// Initialize Services
	sinks := notify.Multi{notify.NewStoreSink(store.NotificationRepository)}
	var emailSink *notify.EmailSink
	if cfg.SendGrid.APIKey != "" && len(cfg.SendGrid.Recipients) > 0 {
		emailSink = notify.NewEmailSink(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName, cfg.SendGrid.Recipients)
		sinks = append(sinks, emailSink)
	}
	interestSvc := service.NewInterestService(store.CustomerRepository, store.TxManager, sinks, service.Settings{
		MonthlyRatePercent: cfg.Interest.MonthlyRatePercent,
		Location:           cfg.Location(),
		BatchConcurrency:   cfg.Interest.BatchConcurrency,
	})

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(interestSvc, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		if emailSink != nil {
			emailSink.Wait()
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner, cfg.Location())
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.", "next_run", cronScheduler.NextRun())

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	if emailSink != nil {
		emailSink.Wait()
	}
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "apply-daily-interest":
		jobRunner.ApplyDailyInterest()
		if result := jobRunner.LastResult(); result != nil {
			fmt.Printf("run %s: eligible=%d applied=%d skipped=%d failed=%d archived=%d\n",
				result.RunID, result.Eligible, result.Applied, result.Skipped, result.Failed, result.Archived)
		}
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - apply-daily-interest\n")
		os.Exit(1)
	}
}
