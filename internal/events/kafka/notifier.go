package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	interfaces "github.com/webern/moneybags/internal/interfaces"
)

// Notifier publishes diagnostic notifications to a Kafka topic.
type Notifier struct {
	writer *kafka.Writer
}

// NewNotifier creates a Notifier writing to topic on the given brokers.
func NewNotifier(brokers []string, topic string) *Notifier {
	return &Notifier{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (n *Notifier) Publish(ctx context.Context, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return n.writer.WriteMessages(ctx, kafka.Message{Value: data})
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

var _ interfaces.Notifier = (*Notifier)(nil)
