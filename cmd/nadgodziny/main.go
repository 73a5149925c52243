package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"nadgodziny/internal/amqp"
	"nadgodziny/internal/config"
	"nadgodziny/internal/geocode"
	apphttp "nadgodziny/internal/http"
	"nadgodziny/internal/log"
	"nadgodziny/internal/notify"
	"nadgodziny/internal/profile"
	"nadgodziny/internal/storage"
	"nadgodziny/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentApp)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings, err := storage.Open(cfg.SQLiteDBPath, logger)
	if err != nil {
		logger.Error("Failed to open settings store", log.FieldError, err, log.FieldKey, cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer settings.Close()

	records := store.Open(ctx, settings, logger)

	// The broker carries reminders and report requests to the delivery
	// worker. Without it the app still records hours, it just cannot
	// notify or mail.
	var (
		reports   apphttp.ReportQueue
		scheduler *notify.Scheduler
	)
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, reminders and report delivery disabled", log.FieldError, err)
	} else {
		defer amqpClient.Close()
		reports = amqpClient
		scheduler = notify.NewScheduler(amqpClient, logger)
		defer scheduler.Stop()
	}

	var schedIface profile.ReminderScheduler
	if scheduler != nil {
		schedIface = scheduler
	}
	profiles := profile.NewCoordinator(records, schedIface, logger)

	// Re-arm the daily reminder for an already onboarded user.
	if u := profiles.ActiveProfile(); u != nil && scheduler != nil {
		if err := scheduler.Reschedule(ctx, u.NotificationTime); err != nil {
			logger.Warn("Failed to re-arm daily reminder", log.FieldError, err,
				log.FieldReminder, u.NotificationTime.String())
		}
	}

	geocoder := geocode.NewClient(cfg.GeocodeBaseURL, cfg.GeocodeTimeout, logger)

	server := apphttp.NewServer(records, profiles, reports, geocoder, logger)
	srv := server.HTTPServer(":" + cfg.Port)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting nadgodziny server",
			"port", cfg.Port, log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
