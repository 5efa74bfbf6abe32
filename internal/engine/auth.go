package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/saasha05/FlightBookingSystem/internal/auth"
	"github.com/saasha05/FlightBookingSystem/internal/domain"
	"github.com/saasha05/FlightBookingSystem/internal/kafka"
	"github.com/saasha05/FlightBookingSystem/internal/session"
	"github.com/saasha05/FlightBookingSystem/internal/txn"
	"go.uber.org/zap"
)

var errDuplicateUser = errors.New("username already taken")

// Login authenticates the session. Usernames are case-insensitive; a
// session authenticates at most once.
func (e *Engine) Login(ctx context.Context, s *session.Session, username, password string) (string, error) {
	if s.User() != "" {
		return "User already logged in\n", nil
	}
	username = strings.ToLower(username)

	var ok bool
	err := s.Txn().Serializable(ctx, "login", func(ctx context.Context, st txn.Store) error {
		u, err := st.Users().ByUsername(ctx, username)
		if err != nil {
			return err
		}
		ok = u != nil && auth.Verify(password, u.PasswordHash, u.Salt)
		return nil
	})
	if err != nil {
		e.log.Error("login failed", zap.String("username", username), zap.Error(err))
		return e.finish(ctx, s, "Login failed\n")
	}
	if ok && s.Authenticate(username) {
		return e.finish(ctx, s, fmt.Sprintf("Logged in as %s\n", username))
	}
	return e.finish(ctx, s, "Login failed\n")
}

// CreateCustomer registers a new account with an initial balance. Deadlock
// retries draw from the shared process-wide budget; once it is exhausted
// the operation gives up with the generic failure line.
func (e *Engine) CreateCustomer(ctx context.Context, s *session.Session, username, password string, initAmount int) (string, error) {
	if initAmount < 0 {
		return "Failed to create user\n", nil
	}
	lower := strings.ToLower(username)

	err := s.Txn().SerializableBudgeted(ctx, "create-customer", func(ctx context.Context, st txn.Store) error {
		existing, err := st.Users().ByUsername(ctx, lower)
		if err != nil {
			return err
		}
		if existing != nil {
			return errDuplicateUser
		}
		hash, salt, err := auth.Hash(password)
		if err != nil {
			return err
		}
		return st.Users().Create(ctx, &domain.User{
			Username:     lower,
			PasswordHash: hash,
			Salt:         salt,
			Balance:      initAmount,
		})
	})
	switch {
	case err == nil:
		e.publish(ctx, s, kafka.ReservationEvent{Type: kafka.EventUserCreated, Username: lower, Balance: initAmount})
		return e.finish(ctx, s, fmt.Sprintf("Created user %s\n", username))
	case errors.Is(err, errDuplicateUser):
		return e.finish(ctx, s, "Failed to create user\n")
	default:
		e.log.Error("create customer failed", zap.String("username", lower), zap.Error(err))
		return e.finish(ctx, s, "Failed to create user\n")
	}
}
