// Command mailer drains the mail topic and delivers each message over SMTP.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"portfolio/internal/config"
	"portfolio/internal/mail"
	"portfolio/internal/middleware"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	brokers := cfg.KafkaBrokerList()
	if len(brokers) == 0 {
		log.Fatal("KAFKA_BROKERS must be set")
	}
	if cfg.SMTPHost == "" {
		log.Fatal("SMTP_HOST must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	smtp := mail.NewSMTPSender(mail.SMTPOptionsFromConfig(cfg))
	consumer := mail.NewConsumer(brokers, cfg.KafkaGroupID, cfg.KafkaMailTopic, smtp)

	middleware.Logger.Info("mailer started", "topic", cfg.KafkaMailTopic, "group", cfg.KafkaGroupID)
	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Mailer stopped: %v", err)
	}
	middleware.Logger.Info("mailer stopped")
}
