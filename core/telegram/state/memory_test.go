package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/konflic/purchase-bot/core/storage"
)

const awaitingName State = "create_list:awaiting_name"

func TestManagerDefaults(t *testing.T) {
	m := NewMemoryManager(0)

	assert.Equal(t, StateIdle, m.GetState(1))
	assert.False(t, m.InProgress(1))
	assert.Equal(t, storage.DefaultKey, m.ActiveList(1))
	assert.Empty(t, m.PendingDelete(1))
	assert.Empty(t, m.Choices(1))
}

func TestManagerStateTransitions(t *testing.T) {
	m := NewMemoryManager(0)

	m.SetState(1, awaitingName)
	assert.Equal(t, awaitingName, m.GetState(1))
	assert.True(t, m.InProgress(1))

	m.ClearState(1)
	assert.Equal(t, StateIdle, m.GetState(1))
	assert.False(t, m.InProgress(1))
}

func TestManagerActiveListSurvivesReset(t *testing.T) {
	m := NewMemoryManager(0)

	m.SetActiveList(1, "groceries")
	m.SetState(1, awaitingName)
	m.SetPendingDelete(1, "groceries")
	m.SetChoices(1, []string{"default", "groceries"})

	m.ClearState(1)

	assert.Equal(t, "groceries", m.ActiveList(1))
	assert.Empty(t, m.PendingDelete(1))
	assert.Empty(t, m.Choices(1))
}

func TestManagerLazyExpiry(t *testing.T) {
	m := NewMemoryManager(10 * time.Millisecond)

	m.SetState(1, awaitingName)
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, StateIdle, m.GetState(1))
	assert.False(t, m.InProgress(1))
}

func TestManagerExpireStaleSweep(t *testing.T) {
	m := NewMemoryManager(time.Minute)

	m.SetState(1, awaitingName)
	m.SetState(2, awaitingName)
	m.SetActiveList(2, "party")

	// Nothing is stale yet.
	assert.Zero(t, m.ExpireStale(time.Now()))

	expired := m.ExpireStale(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 2, expired)
	assert.Equal(t, StateIdle, m.GetState(1))
	assert.Equal(t, StateIdle, m.GetState(2))
	assert.Equal(t, "party", m.ActiveList(2))
}

func TestManagerUsersIsolated(t *testing.T) {
	m := NewMemoryManager(0)

	m.SetState(1, awaitingName)
	m.SetActiveList(2, "other")

	assert.Equal(t, StateIdle, m.GetState(2))
	assert.Equal(t, storage.DefaultKey, m.ActiveList(1))
}

func TestManagerGetReturnsSnapshot(t *testing.T) {
	m := NewMemoryManager(0)

	m.SetChoices(1, []string{"a", "b"})
	snap := m.Get(1)
	snap.Choices[0] = "mutated"
	snap.ActiveList = "mutated"

	assert.Equal(t, []string{"a", "b"}, m.Choices(1))
	assert.Equal(t, storage.DefaultKey, m.ActiveList(1))
}

func TestManagerClearDropsEverything(t *testing.T) {
	m := NewMemoryManager(0)

	m.SetActiveList(1, "groceries")
	m.SetState(1, awaitingName)
	m.Clear(1)

	assert.Equal(t, StateIdle, m.GetState(1))
	assert.Equal(t, storage.DefaultKey, m.ActiveList(1))
}
