package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"campus-hub/internal/config"
	"campus-hub/internal/logger"
	"campus-hub/internal/models"
)

// Producer streams booking lifecycle events. Publish failures are logged,
// never surfaced: a booking decision must not fail because the broker is
// down.
type Producer struct {
	Writer *kafka.Writer
	Topics config.TopicConfig
	Logger *logger.Logger
	Mock   bool
}

func NewProducer(cfg config.KafkaConfig, log *logger.Logger) *Producer {
	p := &Producer{
		Topics: cfg.Topics,
		Logger: log,
		Mock:   cfg.MockMode,
	}
	if !cfg.MockMode {
		p.Writer = &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Balancer: &kafka.LeastBytes{},
		}
	}
	return p
}

func (p *Producer) publish(topic string, booking models.Booking) error {
	value, err := json.Marshal(booking)
	if err != nil {
		return err
	}

	if p.Mock {
		p.Logger.LogKafka("MOCK", topic, string(value))
		return nil
	}

	return p.Writer.WriteMessages(context.Background(), kafka.Message{
		Topic: topic,
		Key:   []byte(booking.ID),
		Value: value,
	})
}

func (p *Producer) PublishBookingRequested(booking models.Booking) error {
	p.Logger.LogKafka("PUBLISH", p.Topics.BookingRequested, fmt.Sprintf("booking %s requested", booking.ID))
	return p.publish(p.Topics.BookingRequested, booking)
}

func (p *Producer) PublishBookingApproved(booking models.Booking) error {
	p.Logger.LogKafka("PUBLISH", p.Topics.BookingApproved, fmt.Sprintf("booking %s approved", booking.ID))
	return p.publish(p.Topics.BookingApproved, booking)
}

func (p *Producer) PublishBookingRejected(booking models.Booking) error {
	p.Logger.LogKafka("PUBLISH", p.Topics.BookingRejected, fmt.Sprintf("booking %s rejected", booking.ID))
	return p.publish(p.Topics.BookingRejected, booking)
}

func (p *Producer) Close() error {
	if p.Writer != nil {
		return p.Writer.Close()
	}
	return nil
}
