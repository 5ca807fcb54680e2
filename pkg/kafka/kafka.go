package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/IBM/sarama"
)

const DefaultEventsTopic = "library-web-events"

type Config struct {
	Addrs       []string `envconfig:"KAFKA_ADDRS"`
	EventsTopic string   `envconfig:"KAFKA_EVENTS_TOPIC" default:"library-web-events"`
}

func (c Config) Enabled() bool {
	return len(c.Addrs) > 0
}

// NewAsyncProducer builds a fire-and-forget producer for UI events.
// Errors are returned on the Errors() channel and must be drained by the caller.
func NewAsyncProducer(cfg Config) (sarama.AsyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForLocal
	defaultCfg.Producer.Return.Successes = false
	defaultCfg.Producer.Return.Errors = true
	defaultCfg.Producer.Flush.Frequency = 500 * time.Millisecond
	defaultCfg.Producer.Compression = sarama.CompressionSnappy

	return sarama.NewAsyncProducer(cfg.Addrs, defaultCfg)
}

const DefaultTailGroup = "library-web-tail"

// NewConsumerGroup joins group starting at the newest offset.
func NewConsumerGroup(cfg Config, group string) (sarama.ConsumerGroup, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	defaultCfg.Consumer.Return.Errors = true

	return sarama.NewConsumerGroup(cfg.Addrs, group, defaultCfg)
}

// Consume serves handler until ctx is done or the group is closed. A
// rebalance ends a session, so Consume is called again in a loop.
func Consume(ctx context.Context, group sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler, topics ...string) error {
	for {
		if err := group.Consume(ctx, topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
