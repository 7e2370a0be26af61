// Package event publishes analysis and monitoring events to Kafka.
// Downstream notifiers consume these topics; the service never formats
// chat messages itself.
package event

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/yourorg/signal-service/internal/model"
)

const (
	// TopicSignalEvents carries every produced non-hold signal
	TopicSignalEvents = "signal-events"

	// TopicTradeAlerts carries every alert raised by the trade monitor
	TopicTradeAlerts = "trade-alerts"
)

// Producer handles producing messages to Kafka topics
type Producer struct {
	mu       sync.Mutex
	writers  map[string]*kafka.Writer
	brokers  []string
	clientID string
	logger   *zap.Logger
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, clientID string, logger *zap.Logger) *Producer {
	return &Producer{
		writers:  make(map[string]*kafka.Writer),
		brokers:  brokers,
		clientID: clientID,
		logger:   logger,
	}
}

// getWriter returns the Kafka writer for a topic, creating it on first use
func (p *Producer) getWriter(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Transport: &kafka.Transport{
			ClientID: p.clientID,
		},
	}

	p.writers[topic] = writer
	return writer
}

// publish sends a JSON message to a Kafka topic
func (p *Producer) publish(ctx context.Context, topic, key string, value interface{}) error {
	writer := p.getWriter(topic)

	jsonValue, err := json.Marshal(value)
	if err != nil {
		p.logger.Error("Failed to marshal message",
			zap.String("topic", topic),
			zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
		Time:  time.Now(),
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message",
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	p.logger.Debug("Message published",
		zap.String("topic", topic),
		zap.String("key", key))

	return nil
}

// PublishSignal publishes a signal keyed by symbol, so consumers see
// per-symbol ordering.
func (p *Producer) PublishSignal(ctx context.Context, sig *model.Signal) error {
	return p.publish(ctx, TopicSignalEvents, sig.Symbol, sig)
}

// PublishAlert publishes a monitoring alert keyed by trade id
func (p *Producer) PublishAlert(ctx context.Context, alert model.Alert) error {
	return p.publish(ctx, TopicTradeAlerts, alert.TradeID, alert)
}

// Close closes all Kafka writers
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			p.logger.Error("Failed to close Kafka writer",
				zap.String("topic", topic),
				zap.Error(err))
		}
	}
	return nil
}
