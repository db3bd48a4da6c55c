package state

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores the conversation state and per-user selections.
// ActiveList survives conversation resets; the rest is scratch data
// for the step currently in progress.
type Session struct {
	State State
	// Touched is when the conversation state last changed. Sessions whose
	// state is stale past the manager TTL fall back to idle.
	Touched time.Time

	// ActiveList is the sanitized key of the list operations act on.
	ActiveList string
	// PendingDelete holds the key awaiting a delete confirmation.
	PendingDelete string
	// Choices snapshots an enumeration shown to the user, so numeric
	// replies resolve against what they actually saw.
	Choices []string
}

// Manager orchestrates user sessions and FSM state transitions.
type Manager interface {
	// Get returns a snapshot of the user's session. Mutating the copy has
	// no effect on stored state.
	Get(userID int64) Session
	Clear(userID int64)

	// Dialog state
	SetState(userID int64, st State)
	GetState(userID int64) State
	ClearState(userID int64)
	InProgress(userID int64) bool

	// Per-user selections
	SetActiveList(userID int64, key string)
	ActiveList(userID int64) string
	SetPendingDelete(userID int64, key string)
	PendingDelete(userID int64) string
	SetChoices(userID int64, keys []string)
	Choices(userID int64) []string

	// ExpireStale resets conversations untouched for longer than the TTL
	// and reports how many it reset.
	ExpireStale(now time.Time) int

	ManagerHandler(c tele.Context) error
}
