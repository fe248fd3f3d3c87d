package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cs-store-backend/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedEmail struct {
	to, subject, body string
}

type fakeEmailer struct {
	sent []capturedEmail
}

func (f *fakeEmailer) Send(ctx context.Context, to, subject, body string) error {
	f.sent = append(f.sent, capturedEmail{to, subject, body})
	return nil
}

type fakeRecipients struct{}

func (fakeRecipients) EmailForUser(ctx context.Context, userID string) (string, error) {
	return userID + "@example.com", nil
}

func TestConsumerSendsConfirmationEmail(t *testing.T) {
	ev := models.OrderEvent{
		EventID: "ev-1", OrderID: "order-1", UserID: "user-1",
		GrandTotal: 990, Status: "confirmed", OccurredAt: time.Now(),
	}
	b, err := json.Marshal(ev)
	require.NoError(t, err)

	emailer := &fakeEmailer{}
	c := NewConsumer(nil, emailer, fakeRecipients{})

	err = c.processMessage(context.Background(), kafka.Message{Key: []byte("order-1"), Value: b})
	require.NoError(t, err)

	require.Len(t, emailer.sent, 1)
	assert.Equal(t, "user-1@example.com", emailer.sent[0].to)
	assert.Contains(t, emailer.sent[0].subject, "order-1")
	assert.Contains(t, emailer.sent[0].body, "990.00")
}

func TestConsumerRejectsMalformedEvents(t *testing.T) {
	emailer := &fakeEmailer{}
	c := NewConsumer(nil, emailer, fakeRecipients{})

	err := c.processMessage(context.Background(), kafka.Message{Value: []byte(`{"order_id":`)})
	assert.Error(t, err)

	err = c.processMessage(context.Background(), kafka.Message{Value: []byte(`{"unknown_field":1}`)})
	assert.Error(t, err)

	assert.Empty(t, emailer.sent)
}

type stubWriter struct {
	msgs []kafka.Message
}

func (s *stubWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	s.msgs = append(s.msgs, msgs...)
	return nil
}

func (s *stubWriter) Close() error { return nil }

func TestPublisherKeysByOrderID(t *testing.T) {
	w := &stubWriter{}
	p := NewKafkaPublisherWithWriter(w)

	err := p.PublishOrderCreated(context.Background(), models.OrderEvent{
		EventID: "ev-1", OrderID: "order-9", UserID: "user-1", GrandTotal: 120,
	})
	require.NoError(t, err)

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "order-9", string(w.msgs[0].Key))

	var ev models.OrderEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, "order-9", ev.OrderID)
}
