package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/segmentio/kafka-go"

	"salonpro-retention/logger"
)

var ErrPublisherClosed = errors.New("publisher closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher streams activities to a topic keyed by business id so one
// business's events stay ordered within a partition. Writes are async;
// delivery failures surface through the completion callback.
type KafkaPublisher struct {
	writer messageWriter
	log    *logger.Logger
	mu     sync.Mutex
	closed bool
}

func NewKafkaPublisher(brokers []string, topic string, baseLog *logger.Logger) *KafkaPublisher {
	p := &KafkaPublisher{log: baseLog.With("service", "KafkaPublisher", "topic", topic)}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion:   p.completed,
	}
	return p
}

func (p *KafkaPublisher) completed(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	businesses := make([]string, 0, len(msgs))
	for _, m := range msgs {
		businesses = append(businesses, string(m.Key))
	}
	p.log.Warn("activity sink failed", "sink", "kafka", "messages", len(msgs), "business_ids", businesses, "error", err)
}

func (p *KafkaPublisher) Publish(ctx context.Context, a Activity) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrPublisherClosed
	}

	value, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(a.BusinessID.String()),
		Value: value,
	})
}

func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}
