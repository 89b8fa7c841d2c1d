package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/filipposta/legacy-premium-api/internal/config"
)

const (
	TopicViewEvents    = "view.events"
	TopicAccountEvents = "account.events"
)

const (
	ViewLogged = "view.logged"

	AccountRegistered      = "account.registered"
	AccountDeleted         = "account.deleted"
	PasswordResetRequested = "account.password_reset_requested"
)

type ViewEventPayload struct {
	EventType string    `json:"event_type"`
	ProfileID string    `json:"profile_id"`
	ViewerID  string    `json:"viewer_id"`
	EventID   string    `json:"event_id"`
	ViewedAt  time.Time `json:"viewed_at"`
}

type AccountEventPayload struct {
	EventType  string    `json:"event_type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	ResetToken string    `json:"reset_token,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type KafkaProducerClient struct {
	ViewEventsWriter    *kafka.Writer
	AccountEventsWriter *kafka.Writer
}

func NewKafkaProducerClient(cfg config.Config) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	viewWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicViewEvents,
		Balancer: &kafka.LeastBytes{},
	}

	accountWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicAccountEvents,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaProducerClient{
		ViewEventsWriter:    viewWriter,
		AccountEventsWriter: accountWriter,
	}, nil
}

func (c *KafkaProducerClient) PublishViewEvent(ctx context.Context, payload ViewEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cannot marshal view event: %w", err)
	}
	return c.ViewEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.ProfileID),
		Value: value,
	})
}

func (c *KafkaProducerClient) PublishAccountEvent(ctx context.Context, payload AccountEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cannot marshal account event: %w", err)
	}
	return c.AccountEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.UserID),
		Value: value,
	})
}

func (c *KafkaProducerClient) Close() {
	if c.ViewEventsWriter != nil {
		c.ViewEventsWriter.Close()
	}
	if c.AccountEventsWriter != nil {
		c.AccountEventsWriter.Close()
	}
}
