package state

import (
	"sync"
	"time"

	"github.com/konflic/purchase-bot/core/logger"
	"github.com/konflic/purchase-bot/core/storage"
	tghelpers "github.com/konflic/purchase-bot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

type memoryManager struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[int64]*Session
}

// NewMemoryManager constructs an in-memory Manager. Conversations whose
// state has not been touched within ttl fall back to idle; a ttl of zero
// disables expiry.
func NewMemoryManager(ttl time.Duration) Manager {
	return &memoryManager{
		ttl:      ttl,
		sessions: make(map[int64]*Session),
	}
}

// session returns the live session for a user, creating it if needed.
// Callers must hold the write lock.
func (m *memoryManager) session(userID int64) *Session {
	sess, ok := m.sessions[userID]
	if !ok {
		sess = &Session{State: StateIdle, ActiveList: storage.DefaultKey}
		m.sessions[userID] = sess
	}
	return sess
}

func (m *memoryManager) stale(sess *Session, now time.Time) bool {
	return m.ttl > 0 && sess.State != StateIdle && now.Sub(sess.Touched) > m.ttl
}

// expire resets a stale conversation in place. The active list selection
// is kept; only the in-flight step and its scratch data are dropped.
// Callers must hold the write lock.
func (m *memoryManager) expire(sess *Session) {
	sess.State = StateIdle
	sess.PendingDelete = ""
	sess.Choices = nil
}

// Get returns a snapshot of the user's session, expiring it first if stale.
func (m *memoryManager) Get(userID int64) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[userID]
	if !ok {
		return Session{State: StateIdle, ActiveList: storage.DefaultKey}
	}
	if m.stale(sess, time.Now()) {
		m.expire(sess)
	}
	snapshot := *sess
	snapshot.Choices = append([]string(nil), sess.Choices...)
	return snapshot
}

// Clear removes the entire session for a user, active list included.
func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// SetState sets the FSM state for the given user and refreshes the
// conversation deadline.
func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.session(userID)
	sess.State = st
	sess.Touched = time.Now()
}

// GetState returns the current FSM state of a user, or StateIdle if the
// conversation has expired or never started.
func (m *memoryManager) GetState(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok {
		return StateIdle
	}
	if m.stale(sess, time.Now()) {
		m.expire(sess)
	}
	return sess.State
}

// ClearState resets the conversation to idle, keeping the active list.
func (m *memoryManager) ClearState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[userID]; ok {
		m.expire(sess)
	}
}

// InProgress reports whether the user currently has a live, unexpired
// conversation.
func (m *memoryManager) InProgress(userID int64) bool {
	return m.GetState(userID) != StateIdle
}

// SetActiveList records the list subsequent item operations act on.
func (m *memoryManager) SetActiveList(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).ActiveList = key
}

// ActiveList returns the user's current list key, defaulting to the
// default list when nothing has been selected.
func (m *memoryManager) ActiveList(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok && sess.ActiveList != "" {
		return sess.ActiveList
	}
	return storage.DefaultKey
}

// SetPendingDelete stores the key awaiting a delete confirmation.
func (m *memoryManager) SetPendingDelete(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).PendingDelete = key
}

// PendingDelete returns the key awaiting confirmation, if any.
func (m *memoryManager) PendingDelete(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok {
		return sess.PendingDelete
	}
	return ""
}

// SetChoices snapshots an enumeration shown to the user.
func (m *memoryManager) SetChoices(userID int64, keys []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).Choices = append([]string(nil), keys...)
}

// Choices returns the enumeration snapshot recorded for the user.
func (m *memoryManager) Choices(userID int64) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok {
		return append([]string(nil), sess.Choices...)
	}
	return nil
}

// ExpireStale sweeps every stale conversation back to idle and reports
// how many were reset. Meant to run periodically from a sweeper goroutine.
func (m *memoryManager) ExpireStale(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	expired := 0
	for _, sess := range m.sessions {
		if m.stale(sess, now) {
			m.expire(sess)
			expired++
		}
	}
	return expired
}

// ManagerHandler executes the handler registered for the user's current
// state, if any. Expired conversations resolve to idle, which has no
// handler, so stray text after a timeout falls through untouched.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	current := m.GetState(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.manager",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
	)

	if handler, ok := fsmHandlers[current]; ok {
		return handler(c)
	}
	return nil
}
