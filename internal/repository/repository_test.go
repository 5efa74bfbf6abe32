package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFlightRepository(t *testing.T) {
	assert.NotNil(t, NewFlightRepository(nil))
}

func TestNewUserRepository(t *testing.T) {
	assert.NotNil(t, NewUserRepository(nil))
}

func TestNewReservationRepository(t *testing.T) {
	assert.NotNil(t, NewReservationRepository(nil))
}
