package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"ticket-validator/internal/models"
)

// viewerMessage is what the browser receives. Exactly one of Violation and
// Summary is set.
type viewerMessage struct {
	Topic     string                  `json:"topic"`
	Violation *models.ViolationEvent  `json:"violation,omitempty"`
	Summary   *models.RunSummaryEvent `json:"summary,omitempty"`
}

// decodeEvent turns a Kafka payload into a viewer message by its eventType.
func decodeEvent(topic string, payload []byte) (viewerMessage, error) {
	var head struct {
		EventType string `json:"eventType"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return viewerMessage{}, fmt.Errorf("decode event: %w", err)
	}

	msg := viewerMessage{Topic: topic}
	switch head.EventType {
	case models.EventTypeViolation:
		var ev models.ViolationEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return viewerMessage{}, fmt.Errorf("decode violation: %w", err)
		}
		msg.Violation = &ev
	case models.EventTypeSummary:
		var ev models.RunSummaryEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return viewerMessage{}, fmt.Errorf("decode summary: %w", err)
		}
		msg.Summary = &ev
	default:
		return viewerMessage{}, fmt.Errorf("unknown event type %q", head.EventType)
	}
	return msg, nil
}

func consumeKafka(ctx context.Context, hub *Hub, brokers []string, topic string, since time.Duration) {
	// Partition reader without a consumer group; the viewer is a passive tap.
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	if err := reader.SetOffsetAt(ctx, time.Now().Add(-since)); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("Failed to seek, reading from current offset")
	}

	logger := log.With().Str("topic", topic).Logger()
	logger.Info().Dur("since", since).Msg("Consuming from Kafka")

	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error().Err(err).Msg("Kafka read error")
			time.Sleep(time.Second)
			continue
		}

		msg, err := decodeEvent(topic, m.Value)
		if err != nil {
			logger.Warn().Err(err).Msg("Skipping message")
			continue
		}

		if msg.Violation != nil {
			logger.Debug().
				Str("runId", msg.Violation.RunID).
				Str("kind", msg.Violation.Kind).
				Int("line", msg.Violation.Line).
				Msg("Received violation")
		} else {
			logger.Info().
				Str("runId", msg.Summary.RunID).
				Str("state", msg.Summary.State).
				Str("mostFrequent", msg.Summary.MostFrequent).
				Msg("Received run summary")
		}

		select {
		case hub.broadcast <- msg:
		case <-ctx.Done():
			return
		}
	}
}
