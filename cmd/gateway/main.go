package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mattter-gateway/internal/api"
	"mattter-gateway/internal/config"
	"mattter-gateway/internal/gateway"
	"mattter-gateway/internal/jobs"
	"mattter-gateway/internal/logger"
	"mattter-gateway/internal/metrics"
	"mattter-gateway/internal/scheduler"
	"mattter-gateway/internal/session"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'revalidate-identity', 'prune-idle-threads')")
	flag.Parse()

	// Environment overrides may live in a local .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Skipping .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Mattter Gateway...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Backend configuration", "base_url", cfg.Backend.BaseURL, "timeout", cfg.RequestTimeout())

	// Initialize session store over persisted credentials
	persist := session.NewFileStore(cfg.Session.CredentialsFile)
	sess := session.NewStore(nil, persist)
	backend := api.New(cfg.Backend.BaseURL, cfg.RequestTimeout(), sess)
	sess.SetBackend(backend)

	// Resolve the persisted session before serving; a dead token degrades
	// to anonymous, it never blocks startup.
	initCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	if err := sess.Initialize(initCtx); err != nil {
		logger.Warn("Session restore failed, starting anonymous", "error", err)
	}
	cancel()
	logger.Info("Session resolved", "status", sess.Status())

	// Initialize metrics and the gateway surface
	m := metrics.New()
	gw := gateway.New(cfg, sess, backend, m)
	defer gw.Close()

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(cfg, sess, gw.Threads())

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      gw.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
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
	logger.Info("Shutting down gateway...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	logger.Info("Gateway stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "revalidate-identity":
		jobRunner.RevalidateIdentity()
	case "prune-idle-threads":
		jobRunner.PruneIdleThreads()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - revalidate-identity\n")
		fmt.Printf("  - prune-idle-threads\n")
		os.Exit(1)
	}
}
