package realtime

import (
	"context"
	"fmt"
	"time"

	kgo "github.com/segmentio/kafka-go"
	"github.com/yukikurage/creative-task-api/internal/constants"
	"github.com/yukikurage/creative-task-api/internal/models"
)

// KafkaPusher writes notifications to one topic keyed by recipient, so a
// user's notifications stay ordered within a partition.
type KafkaPusher struct {
	writer  *kgo.Writer
	timeout time.Duration
}

func NewKafkaPusher(brokers []string, topic string) (*KafkaPusher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka push driver needs at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka push driver needs a topic")
	}

	w := &kgo.Writer{
		Addr:         kgo.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kgo.Hash{},
		RequiredAcks: kgo.RequireOne,
	}

	return &KafkaPusher{
		writer:  w,
		timeout: constants.NotificationPushTimeout,
	}, nil
}

func (p *KafkaPusher) Push(ctx context.Context, notification *models.Notification) error {
	payload, err := encode(notification)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.writer.WriteMessages(cctx, kgo.Message{
		Key:   []byte(notification.UserID),
		Value: payload,
		Time:  time.Now(),
	})
}

func (p *KafkaPusher) Close() error { return p.writer.Close() }
