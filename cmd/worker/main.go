package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/filipposta/legacy-premium-api/adapters/event"
	"github.com/filipposta/legacy-premium-api/adapters/persistence"
	"github.com/filipposta/legacy-premium-api/internal/config"
	"github.com/filipposta/legacy-premium-api/internal/domain/docstore"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

// The worker tails view.events and keeps a denormalized view counter
// on each user document, so profile pages can show "N profile visits"
// without scanning profileViews.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	appLogger.Info("Starting Legacy Premium view-count worker...")

	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	store, err := persistence.NewPostgresDocStore(dbPool, appLogger)
	if err != nil {
		appLogger.Fatal("cannot init document store", err)
	}

	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicViewEvents,
		GroupID:  "view-count-group",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer consumer.Close()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicViewEvents))

	ctx := context.Background()
	for {
		msg, err := consumer.FetchMessage(ctx)
		if err != nil {
			appLogger.Error("failed to read message from Kafka", err)
			continue
		}

		var payload event.ViewEventPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			appLogger.Warn("skipping malformed view event", zap.Error(err))
			commitMessage(consumer, msg, appLogger)
			continue
		}

		if err := bumpViewCount(ctx, store, payload.ProfileID); err != nil {
			appLogger.Error("failed to bump view count", err, zap.String("profile_id", payload.ProfileID))
			continue
		}

		commitMessage(consumer, msg, appLogger)
	}
}

// bumpViewCount is read-modify-write without a transaction; counts
// can drift under concurrent workers, which is acceptable for a
// display-only counter.
func bumpViewCount(ctx context.Context, store docstore.Store, profileID string) error {
	doc, err := store.Get(ctx, docstore.CollectionUsers, profileID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// Profile deleted since the view; nothing to count.
			return nil
		}
		return err
	}

	count := 0
	if v, ok := doc.Data["profileViewCount"].(float64); ok {
		count = int(v)
	}

	return store.Set(ctx, docstore.CollectionUsers, profileID,
		map[string]any{"profileViewCount": count + 1}, true)
}

func commitMessage(consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		log.Error("failed to commit message", err)
	}
}
