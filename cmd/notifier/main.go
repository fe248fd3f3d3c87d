// Command notifier consumes order events from Kafka and sends confirmation
// emails through SES. It runs separately from the API server so a mail or
// broker outage never touches order placement.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"cs-store-backend/internal/config"
	"cs-store-backend/internal/models"
	"cs-store-backend/pkg/notify"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"
)

// pgRecipients resolves user IDs to email addresses from the users table.
type pgRecipients struct {
	db *pgxpool.Pool
}

func (r *pgRecipients) EmailForUser(ctx context.Context, userID string) (string, error) {
	var email string
	err := r.db.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("recipients.EmailForUser: %w", err)
	}
	return email, nil
}

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: could not load config: %v", err)
	}
	if cfg.KafkaBrokers == "" {
		log.Fatal("FATAL: KAFKA_BROKERS is required for the notifier")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("signal received, stopping...")
		cancel()
	}()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: could not connect to database: %v", err)
	}
	defer pool.Close()

	emailer, err := notify.NewSESEmailer(ctx, cfg.SESFromAddress)
	if err != nil {
		log.Fatalf("FATAL: could not build SES client: %v", err)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		Topic:    cfg.KafkaOrderTopic,
		GroupID:  "order-notifier",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer func() {
		if err := reader.Close(); err != nil {
			log.Println("error closing kafka reader:", err)
		}
	}()

	consumer := notify.NewConsumer(reader, emailer, &pgRecipients{db: pool})
	log.Printf("Notifier consuming %s from %s", cfg.KafkaOrderTopic, cfg.KafkaBrokers)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("FATAL: consumer stopped: %v", err)
	}
}
