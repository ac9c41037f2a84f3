package events

import (
	"context"
	"sync"

	"ridedeck/internal/models"
)

// LocalBroker delivers events to handlers in the publishing goroutine. It is
// used when there is no Redis to fan out across instances.
type LocalBroker struct {
	mutex sync.RWMutex
	subs  subscribers
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{}
}

func (b *LocalBroker) Publish(ctx context.Context, event *models.RideEvent) error {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	b.subs.dispatch(ctx, event)
	return nil
}

func (b *LocalBroker) Subscribe(handler Handler) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.subs.add(handler)
}

func (b *LocalBroker) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (b *LocalBroker) Close() error {
	return nil
}
