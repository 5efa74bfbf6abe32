package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCustomer(t *testing.T) {
	store := newMemStore()
	e, s, _ := newTestEngine(store)

	out, err := e.CreateCustomer(context.Background(), s, "Alice", "pw", 100)
	require.NoError(t, err)
	assert.Equal(t, "Created user Alice\n", out)

	u := store.users["alice"]
	require.NotNil(t, u, "username stored lowercased")
	assert.Equal(t, 100, u.Balance)
	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEmpty(t, u.Salt)
}

func TestCreateCustomerNegativeBalance(t *testing.T) {
	store := newMemStore()
	e, s, coord := newTestEngine(store)

	out, err := e.CreateCustomer(context.Background(), s, "alice", "pw", -1)
	require.NoError(t, err)
	assert.Equal(t, "Failed to create user\n", out)
	assert.Zero(t, coord.attempts, "rejected before reaching the store")
}

func TestCreateCustomerDuplicateUsername(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, "alice", "pw", 100)
	e, s, _ := newTestEngine(store)

	out, err := e.CreateCustomer(context.Background(), s, "ALICE", "other", 50)
	require.NoError(t, err)
	assert.Equal(t, "Failed to create user\n", out)
	assert.Equal(t, 100, store.users["alice"].Balance)
}

func TestCreateCustomerRetriesWithinBudget(t *testing.T) {
	store := newMemStore()
	e, s, coord := newTestEngine(store)
	coord.failAfter = []error{serializationFailure(), serializationFailure()}

	out, err := e.CreateCustomer(context.Background(), s, "bob", "pw", 10)
	require.NoError(t, err)
	assert.Equal(t, "Created user bob\n", out)
	assert.Equal(t, 3, coord.attempts)
	assert.Equal(t, int32(1), coord.budget.Load())
	assert.NotNil(t, store.users["bob"])
}

func TestCreateCustomerBudgetExhausted(t *testing.T) {
	store := newMemStore()
	e, s, coord := newTestEngine(store)
	coord.budget.Store(0)
	coord.failAfter = []error{serializationFailure()}

	out, err := e.CreateCustomer(context.Background(), s, "bob", "pw", 10)
	require.NoError(t, err)
	assert.Equal(t, "Failed to create user\n", out)
	assert.Equal(t, 1, coord.attempts, "no retries left once the shared budget is spent")
	assert.Nil(t, store.users["bob"])
}

func TestLogin(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, "alice", "pw", 100)
	e, s, _ := newTestEngine(store)

	out, err := e.Login(context.Background(), s, "ALICE", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Logged in as alice\n", out)
	assert.Equal(t, "alice", s.User())
}

func TestLoginWrongPassword(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, "alice", "pw", 100)
	e, s, _ := newTestEngine(store)

	out, err := e.Login(context.Background(), s, "alice", "nope")
	require.NoError(t, err)
	assert.Equal(t, "Login failed\n", out)
	assert.Empty(t, s.User())
}

func TestLoginUnknownUser(t *testing.T) {
	store := newMemStore()
	e, s, _ := newTestEngine(store)

	out, err := e.Login(context.Background(), s, "ghost", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Login failed\n", out)
}

func TestLoginTwice(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, "alice", "pw", 100)
	seedUser(t, store, "bob", "pw", 100)
	e, s, _ := newTestEngine(store)
	mustLogin(t, e, s, "alice", "pw")

	out, err := e.Login(context.Background(), s, "bob", "pw")
	require.NoError(t, err)
	assert.Equal(t, "User already logged in\n", out)
	assert.Equal(t, "alice", s.User())
}
