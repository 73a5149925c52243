package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"nadgodziny/internal/amqp"
	"nadgodziny/internal/config"
	"nadgodziny/internal/log"
	"nadgodziny/internal/mailer"
	"nadgodziny/internal/storage"
	"nadgodziny/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentApp)
	logger.Info("Starting reminder-worker", log.FieldOperation, log.OpStartup)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The worker reads the profile and entries the same way the server
	// wrote them, through the settings store.
	settings, err := storage.Open(cfg.SQLiteDBPath, logger)
	if err != nil {
		logger.Error("Failed to open settings store", log.FieldError, err, log.FieldKey, cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer settings.Close()

	// Outbound mail is optional: without it reminders and report
	// requests are acked and dropped with a log.
	var mail mailer.Mailer
	if cfg.MailConfigured() {
		gm, err := mailer.NewGmail(ctx, cfg, logger)
		if err != nil {
			logger.Error("Failed to initialize Gmail client", log.FieldError, err)
			os.Exit(1)
		}
		mail = gm
		logger.Info("Gmail client initialized")
	} else {
		logger.Info("Mail disabled - no Gmail OAuth material provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.New(settings, mail, logger)

	if err := amqpClient.Consume(ctx, w.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully", log.FieldOperation, log.OpShutdown)
}
