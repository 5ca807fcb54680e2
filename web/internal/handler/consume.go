package handler

import (
	"context"
	"encoding/json"

	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type eventSink func(ctx context.Context, ev model.UIEvent) error

// Consumer feeds UI events from the events topic to a sink.
type Consumer struct {
	sink eventSink
	log  *zap.Logger
}

func NewConsumer(sink func(ctx context.Context, ev model.UIEvent) error, log *zap.Logger) *Consumer {
	return &Consumer{
		sink: sink,
		log:  log.Named("consumer"),
	}
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Debug("message channel was closed")
				return nil
			}
			var ev model.UIEvent
			if err := json.Unmarshal(message.Value, &ev); err != nil {
				consumer.log.Error("decode ui event", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}

			// unmarked messages are redelivered after the next rebalance
			if err := consumer.sink(session.Context(), ev); err != nil {
				consumer.log.Error("consumer.sink", zap.Error(err))
				continue
			}

			consumer.log.Debug("ui event claimed",
				zap.String("action", ev.Action),
				zap.Time("timestamp", message.Timestamp),
				zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
