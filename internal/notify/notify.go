package notify

import (
	"context"

	"github.com/saasha05/FlightBookingSystem/internal/kafka"
	"go.uber.org/zap"
)

// Sender dispatches user notifications for reservation events consumed by
// the worker. Delivery is currently a structured log record; a mail or
// push backend slots in behind the same method.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	s.log.Info("notify user",
		zap.String("username", event.Username),
		zap.String("event", event.Type),
		zap.Int64("reservation_id", event.ReservationID),
		zap.Int("price", event.Price))
	return nil
}
