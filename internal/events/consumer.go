package events

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer delivers flight events from one topic to a handler.
type Consumer struct {
	reader messageReader
	log    logrus.FieldLogger
}

func NewConsumer(brokers []string, groupID, topic string, log logrus.FieldLogger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return newConsumer(reader, log)
}

func newConsumer(reader messageReader, log logrus.FieldLogger) *Consumer {
	return &Consumer{reader: reader, log: log}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume hands each flight event to handle until ctx is done, the reader
// fails or handle returns an error. Messages that are not flight events are
// logged and skipped; their offsets are still committed.
func (c *Consumer) Consume(ctx context.Context, handle func(context.Context, FlightEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("read flight event: %w", err)
		}

		event, err := DecodeFlightEvent(msg.Value)
		if err != nil {
			c.log.WithFields(logrus.Fields{
				"partition": msg.Partition,
				"offset":    msg.Offset,
				"key":       string(msg.Key),
			}).WithError(err).Warn("skipping undecodable flight event")
			continue
		}

		if err := handle(ctx, event); err != nil {
			return fmt.Errorf("handle %s for flight %d: %w", event.Type, event.FlightID, err)
		}
	}
}
