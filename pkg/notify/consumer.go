package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"cs-store-backend/internal/models"

	"github.com/segmentio/kafka-go"
)

// ReaderInterface is the slice of kafka.Reader the consumer needs.
type ReaderInterface interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// RecipientLookupInterface resolves the email address for a user ID.
type RecipientLookupInterface interface {
	EmailForUser(ctx context.Context, userID string) (string, error)
}

// Consumer drains order events and sends a confirmation email per event.
// Failures are logged and skipped; the order itself is already committed and
// a lost email must never wedge the stream.
type Consumer struct {
	reader     ReaderInterface
	emailer    EmailerInterface
	recipients RecipientLookupInterface
}

func NewConsumer(reader ReaderInterface, emailer EmailerInterface, recipients RecipientLookupInterface) *Consumer {
	return &Consumer{reader: reader, emailer: emailer, recipients: recipients}
}

// Start blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Println("notify: reading message error:", err)
				continue
			}
			if err := c.processMessage(ctx, msg); err != nil {
				log.Println("notify: processing message error:", err)
			}
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var ev models.OrderEvent
	decoder := json.NewDecoder(bytes.NewReader(msg.Value))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&ev); err != nil {
		return fmt.Errorf("decode order event: %w", err)
	}
	if ev.OrderID == "" || ev.UserID == "" {
		return fmt.Errorf("order event missing identifiers")
	}

	to, err := c.recipients.EmailForUser(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient for user %s: %w", ev.UserID, err)
	}

	subject := fmt.Sprintf("Order %s confirmed", ev.OrderID)
	body := fmt.Sprintf("Your order %s has been placed.\nOrder total: ₹%.2f\nStatus: %s\n",
		ev.OrderID, ev.GrandTotal, ev.Status)
	if err := c.emailer.Send(ctx, to, subject, body); err != nil {
		return fmt.Errorf("send confirmation for order %s: %w", ev.OrderID, err)
	}
	return nil
}
