package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"ridedeck/internal/models"
	"ridedeck/pkg/cache"
	"ridedeck/pkg/logger"
)

// RedisBroker publishes events on a Redis pub/sub channel so that every API
// instance delivers them to its own websocket clients.
type RedisBroker struct {
	cache   *cache.RedisCache
	channel string
	logger  *logger.Logger
	mutex   sync.RWMutex
	subs    subscribers
}

func NewRedisBroker(redisCache *cache.RedisCache, channel string, log *logger.Logger) *RedisBroker {
	return &RedisBroker{
		cache:   redisCache,
		channel: channel,
		logger:  log,
	}
}

func (b *RedisBroker) Publish(ctx context.Context, event *models.RideEvent) error {
	if err := b.cache.Publish(ctx, b.channel, event); err != nil {
		return fmt.Errorf("failed to publish ride event: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(handler Handler) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.subs.add(handler)
}

// Run subscribes to the channel and dispatches until ctx is cancelled.
func (b *RedisBroker) Run(ctx context.Context) error {
	pubsub := b.cache.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			var event models.RideEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.WithError(err).Warn("Dropping malformed ride event")
				continue
			}

			b.mutex.RLock()
			b.subs.dispatch(ctx, &event)
			b.mutex.RUnlock()
		}
	}
}

func (b *RedisBroker) Close() error {
	return nil
}
