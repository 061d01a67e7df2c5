package realtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/yukikurage/creative-task-api/internal/constants"
	"github.com/yukikurage/creative-task-api/internal/models"
)

// NATSPusher publishes each notification on a per-user subject.
type NATSPusher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPusher connects to url. Subjects are "<prefix>.<user id>".
func NewNATSPusher(url, prefix string) (*NATSPusher, error) {
	conn, err := nats.Connect(url, nats.Name("creative-task-api"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPusher{conn: conn, prefix: prefix}, nil
}

// Subject returns the subject a user's notifications are published on.
func Subject(prefix, userID string) string {
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		prefix = constants.DefaultNotificationPrefix
	}
	return prefix + "." + userID
}

func (p *NATSPusher) Push(ctx context.Context, notification *models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := encode(notification)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(Subject(p.prefix, notification.UserID), payload); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Close flushes pending publishes and closes the connection.
func (p *NATSPusher) Close() error {
	return p.conn.Drain()
}
