// Command worker drains the courtesy notification queue and sends the granted emails.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"eventmanager/config"
	"eventmanager/internal/adapters/email"
	"eventmanager/internal/adapters/queue"
	"eventmanager/internal/i18n"
	"eventmanager/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg, os.Stdout)

	if cfg.Redis.Addr == "" {
		logger.Error("REDIS_ADDR is required for the worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := queue.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Error("redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		logger.Error("mailer", "error", err)
		os.Exit(1)
	}

	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	handler := services.NewCourtesyNotificationHandler(emailService, i18n.NewLocalizer(cfg.DefaultLocale))
	consumer := queue.NewConsumer(queue.NewQueue(rdb, cfg.Redis.Queue, logger), handler.Handle, logger)

	logger.Info("worker started", "queue", cfg.Redis.Queue, "email_provider", cfg.Email.Provider)
	consumer.Run(ctx)
	logger.Info("worker stopped")
}
