package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Kafka publishes JSON events, one writer per topic.
type Kafka struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafka parses a comma separated broker list. It returns nil when the list is empty.
func NewKafka(brokersCSV string) *Kafka {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil
	}
	return &Kafka{brokers: brokers, writers: map[string]*kafka.Writer{}}
}

func (k *Kafka) writer(topic string) *kafka.Writer {
	k.mu.Lock()
	defer k.mu.Unlock()
	w, ok := k.writers[topic]
	if !ok {
		w = &kafka.Writer{
			Addr:         kafka.TCP(k.brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			// one event per write; don't wait a second for a batch to fill
			BatchTimeout: 10 * time.Millisecond,
			MaxAttempts:  3,
			WriteTimeout: 2 * time.Second,
		}
		k.writers[topic] = w
	}
	return w
}

func (k *Kafka) Publish(ctx context.Context, topic string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return k.writer(topic).WriteMessages(ctx, kafka.Message{Key: []byte(ev.Key), Value: data, Time: time.Now().UTC()})
}

func (k *Kafka) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	var first error
	for _, w := range k.writers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// FromBrokers picks Kafka when brokers are configured and Nop otherwise.
func FromBrokers(brokersCSV string) Publisher {
	if k := NewKafka(brokersCSV); k != nil {
		return k
	}
	return Nop{}
}
