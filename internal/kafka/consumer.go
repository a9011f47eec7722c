package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/trogers1052/networth-tracker/internal/models"
)

// Relay receives holding events read from the topic
type Relay interface {
	Publish(event models.HoldingEvent)
}

// Consumer reads holding events and hands them to the local change feed, so every
// instance refreshes the users it is watching whichever instance took the write.
type Consumer struct {
	reader *kafka.Reader
	relay  Relay
	log    logrus.FieldLogger
}

// NewConsumer creates a new Kafka consumer for holding events. Each instance needs its own
// groupID to see every event; new groups start at the end of the topic.
func NewConsumer(brokers []string, topic, groupID string, relay Relay, log logrus.FieldLogger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        500 * time.Millisecond,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		relay:  relay,
		log:    log,
	}
}

// Start consumes until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	c.log.WithField("topic", c.reader.Config().Topic).Info("Starting Kafka consumer")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("Kafka consumer shutting down")
				return nil
			}
			c.log.WithError(err).Error("Error reading message")
			continue
		}

		if err := c.processMessage(msg); err != nil {
			c.log.WithError(err).WithFields(logrus.Fields{
				"partition": msg.Partition,
				"offset":    msg.Offset,
			}).Warn("Error processing message")
		}
	}
}

var errMissingUser = errors.New("event has no user_id")

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(msg kafka.Message) error {
	var event models.HoldingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal holding event: %w", err)
	}

	switch event.EventType {
	case models.EventHoldingCreated, models.EventHoldingUpdated, models.EventHoldingDeleted:
	default:
		c.log.WithField("event_type", event.EventType).Debug("Ignoring event type")
		return nil
	}

	if event.UserID == "" {
		return errMissingUser
	}

	c.relay.Publish(event)
	c.log.WithFields(logrus.Fields{
		"event_type": event.EventType,
		"user_id":    event.UserID,
		"holding_id": event.HoldingID,
	}).Debug("Relayed holding event")
	return nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
