package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/rl1809/warehouse-inventory/internal/config"
)

const (
	batchTimeout = 10 * time.Millisecond
	batchSize    = 1
)

// Producer is satisfied by the traced otel-kafka-konsumer writer.
type Producer interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

type notification struct {
	Subject string    `json:"subject"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// KafkaNotifier publishes notifications to a topic. Keys are the subject so
// reports of one kind land on one partition in order.
type KafkaNotifier struct {
	producer Producer
	now      func() time.Time
}

func NewKafkaNotifier(producer Producer) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, now: time.Now}
}

// NewKafkaWriter builds a traced writer for topic. Trace context is injected
// into the message headers.
func NewKafkaWriter(broker, topic string) (Producer, error) {
	base := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: batchTimeout,
		BatchSize:    batchSize,
	}

	writer, err := otelkafka.NewWriter(base,
		otelkafka.WithTracerProvider(otel.GetTracerProvider()),
		otelkafka.WithPropagator(propagation.TraceContext{}),
		otelkafka.WithAttributes([]attribute.KeyValue{
			semconv.MessagingDestinationNameKey.String(topic),
			attribute.String("messaging.kafka.client_id", config.ServiceName),
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka writer: %w", err)
	}
	return writer, nil
}

func (k *KafkaNotifier) Send(ctx context.Context, subject, message string) error {
	payload, err := json.Marshal(notification{Subject: subject, Message: message, SentAt: k.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := k.producer.WriteMessage(ctx, kafka.Message{Key: []byte(subject), Value: payload}); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (k *KafkaNotifier) Close() error {
	return k.producer.Close()
}
