package events

import (
	"context"

	"ridedeck/internal/models"
)

// Handler receives every ride event delivered by a broker.
type Handler func(ctx context.Context, event *models.RideEvent)

type Publisher interface {
	Publish(ctx context.Context, event *models.RideEvent) error
}

// Broker publishes ride events and delivers them to subscribed handlers.
// Run blocks until ctx is cancelled.
type Broker interface {
	Publisher
	Subscribe(handler Handler)
	Run(ctx context.Context) error
	Close() error
}

type subscribers struct {
	handlers []Handler
}

func (s *subscribers) add(handler Handler) {
	s.handlers = append(s.handlers, handler)
}

func (s *subscribers) dispatch(ctx context.Context, event *models.RideEvent) {
	for _, handler := range s.handlers {
		handler(ctx, event)
	}
}
