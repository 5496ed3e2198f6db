package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/maltedev/price-tracker/internal/domain"
)

const DefaultStream = "price-events"

// RedisClient interface for Redis operations (for testing)
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Publisher pushes price change events onto a Redis stream and drops the
// cached read models for the affected product.
type Publisher struct {
	redis  RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &Publisher{
		redis:  client,
		stream: stream,
		logger: logger.With("component", "events"),
	}
}

// Publish emits a PriceChanged event. Cache invalidation failures are logged
// but never fail the publish, stale cache entries expire on their own.
func (p *Publisher) Publish(ctx context.Context, event domain.PriceChanged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"id":         uuid.New().String(),
			"type":       "price.changed",
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"product_id": event.ProductID.String(),
			"data":       string(payload),
		},
	}

	if _, err := p.redis.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	p.invalidateCache(ctx, event.ProductID)

	p.logger.Info("published price change",
		"product_id", event.ProductID,
		"old_price", event.OldPrice,
		"new_price", event.NewPrice)

	return nil
}

func (p *Publisher) invalidateCache(ctx context.Context, productID uuid.UUID) {
	keys := []string{
		fmt.Sprintf("product-details:%s", productID),
		fmt.Sprintf("product-history:%s", productID),
	}

	if err := p.redis.Del(ctx, keys...).Err(); err != nil {
		p.logger.Warn("failed to invalidate cache", "product_id", productID, "error", err)
	}
}
