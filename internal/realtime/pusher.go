// Package realtime delivers persisted notifications to connected clients over
// a message broker.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yukikurage/creative-task-api/internal/config"
	"github.com/yukikurage/creative-task-api/internal/models"
)

// Pusher delivers one notification to its recipient. Delivery is best effort.
type Pusher interface {
	Push(ctx context.Context, notification *models.Notification) error
	Close() error
}

// New builds the pusher selected by cfg.PushDriver.
func New(cfg *config.Config) (Pusher, error) {
	switch cfg.PushDriver {
	case "nats":
		return NewNATSPusher(cfg.NATSURL, cfg.NATSPrefix)
	case "kafka":
		return NewKafkaPusher(cfg.KafkaBrokers, cfg.KafkaTopic)
	case "none", "":
		return NoopPusher{}, nil
	}
	return nil, fmt.Errorf("unsupported push driver %q", cfg.PushDriver)
}

// NoopPusher drops every notification.
type NoopPusher struct{}

func (NoopPusher) Push(context.Context, *models.Notification) error { return nil }
func (NoopPusher) Close() error                                    { return nil }

func encode(notification *models.Notification) ([]byte, error) {
	b, err := json.Marshal(notification)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification: %w", err)
	}
	return b, nil
}
