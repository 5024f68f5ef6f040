package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"

	"github.com/turbolytics/formsync/internal"
)

// Notifier publishes every replaced choice list to a topic.
type Notifier struct {
	config   kafka.ConfigMap
	producer *kafka.Producer
	topic    string
	brokers  string
	logger   *zap.Logger

	statsMu sync.RWMutex
	stats   internal.NotifierStats
}

// NewNotifier reads the brokers from the URL host and the topic from its
// path. Query parameters are passed through as producer settings.
func NewNotifier(ctx context.Context, uri *url.URL, logger *zap.Logger) (*Notifier, error) {
	config, topic, err := configFromURL(uri)
	if err != nil {
		return nil, err
	}

	n := &Notifier{
		config:  config,
		topic:   topic,
		brokers: uri.Host,
		logger:  logger,
	}
	if err := n.connect(); err != nil {
		return nil, err
	}
	return n, nil
}

func configFromURL(uri *url.URL) (kafka.ConfigMap, string, error) {
	topic := strings.TrimPrefix(uri.Path, "/")
	if topic == "" {
		return nil, "", fmt.Errorf("topic must be specified in URL path")
	}
	if uri.Host == "" {
		return nil, "", fmt.Errorf("brokers must be specified in URL host")
	}

	config := kafka.ConfigMap{
		"bootstrap.servers":   uri.Host,
		"client.id":           "formsync-notifier",
		"acks":                "all",
		"retries":             "3",
		"linger.ms":           "5",
		"request.timeout.ms":  "5000",
		"delivery.timeout.ms": "10000",
	}

	for key, values := range uri.Query() {
		if len(values) > 0 {
			config[key] = values[0]
		}
	}
	return config, topic, nil
}

func (n *Notifier) connect() error {
	producer, err := kafka.NewProducer(&n.config)
	if err != nil {
		return err
	}
	n.producer = producer

	go func() {
		defer n.logger.Info("Producer event loop closed")

		for e := range producer.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					n.logger.Error("Delivery failed", zap.Error(ev.TopicPartition.Error))
					n.statsMu.Lock()
					n.stats.WriteErrorCount++
					n.stats.LastError = ev.TopicPartition.Error.Error()
					n.statsMu.Unlock()
				} else {
					n.logger.Debug("Message delivered",
						zap.String("topic", *ev.TopicPartition.Topic),
						zap.Int32("partition", ev.TopicPartition.Partition),
						zap.Int64("offset", int64(ev.TopicPartition.Offset)))
				}
			case kafka.Error:
				n.logger.Error("Producer error", zap.Error(ev))
			}
		}
	}()

	n.logger.Info("Kafka notifier connected",
		zap.String("topic", n.topic),
		zap.String("brokers", n.brokers))
	return nil
}

// Key identifies the field a message is about.
func Key(change internal.ChoicesReplaced) []byte {
	return []byte(fmt.Sprintf("%s/%d", change.FormID, change.FieldIndex))
}

func (n *Notifier) message(change internal.ChoicesReplaced) (*kafka.Message, error) {
	value, err := json.Marshal(change)
	if err != nil {
		return nil, err
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &n.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   Key(change),
		Value: value,
	}, nil
}

func (n *Notifier) Notify(ctx context.Context, change internal.ChoicesReplaced) error {
	msg, err := n.message(change)
	if err == nil {
		err = n.producer.Produce(msg, nil)
	}
	if err != nil {
		n.statsMu.Lock()
		n.stats.WriteErrorCount++
		n.stats.LastError = err.Error()
		n.statsMu.Unlock()
		return err
	}

	n.statsMu.Lock()
	n.stats.TotalMessages++
	n.stats.LastWriteAt = time.Now()
	n.stats.LastError = ""
	n.statsMu.Unlock()
	return nil
}

// Close flushes pending messages, waiting up to five seconds.
func (n *Notifier) Close(ctx context.Context) error {
	if n.producer != nil {
		if left := n.producer.Flush(5000); left > 0 {
			n.logger.Warn("messages not delivered before close", zap.Int("pending", left))
		}
		n.producer.Close()
	}
	return nil
}

// Stats includes delivery failures reported asynchronously by the producer.
func (n *Notifier) Stats() internal.NotifierStats {
	n.statsMu.RLock()
	defer n.statsMu.RUnlock()
	return n.stats
}

var (
	_ internal.Notifier      = (*Notifier)(nil)
	_ internal.StatsReporter = (*Notifier)(nil)
)
