// Package kafka publishes resolved forecast queries as JSON events for
// downstream consumers (the map layer, analytics). Publishing is best
// effort: the pipeline logs failures and the query still succeeds.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/weatherwise/district-forecast/internal/domain"
)

// Publisher produces resolved-query events to a Kafka topic.
// It implements pipeline.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &Publisher{writer: w, logger: logger}
}

// queryEvent is the wire shape of one resolved query.
type queryEvent struct {
	District    string               `json:"district"`
	Division    string               `json:"division,omitempty"`
	Role        domain.Role          `json:"role"`
	Horizon     int                  `json:"horizon"`
	Location    domain.Location      `json:"location"`
	Days        []domain.DayForecast `json:"days"`
	Explanation string               `json:"explanation"`
	Warnings    []domain.Warning     `json:"warnings,omitempty"`
	ResolvedAt  time.Time            `json:"resolved_at"`
}

// Publish serializes and writes one resolved query to the sink topic.
func (p *Publisher) Publish(ctx context.Context, result domain.Result) error {
	msg, err := serializeToMessage(result)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a resolution result into a Kafka message
// keyed by district, so per-district consumers see events in order.
func serializeToMessage(result domain.Result) (kafkago.Message, error) {
	event := queryEvent{
		District:    result.Forecast.District.Name,
		Division:    result.Forecast.District.Division,
		Role:        result.Query.Role,
		Horizon:     result.Query.Horizon,
		Location:    result.Location,
		Days:        result.Forecast.Days,
		Explanation: result.Explanation.Text,
		Warnings:    result.Warnings,
		ResolvedAt:  domain.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize query event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.District),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "role", Value: []byte(event.Role)},
			{Key: "horizon", Value: []byte(strconv.Itoa(event.Horizon))},
		},
	}, nil
}
