package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// ReservationEvent describes a committed state change in the booking
// system. Events are published after commit and never influence the
// outcome of the operation that produced them.
type ReservationEvent struct {
	Type          string `json:"type"`
	SessionID     string `json:"session_id"`
	Username      string `json:"username"`
	ReservationID int64  `json:"reservation_id,omitempty"`
	Price         int    `json:"price,omitempty"`
	Day           int    `json:"day_of_month,omitempty"`
	Balance       int    `json:"balance,omitempty"`
}

const (
	EventUserCreated          = "user_created"
	EventReservationBooked    = "reservation_booked"
	EventReservationPaid      = "reservation_paid"
	EventReservationCancelled = "reservation_cancelled"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
