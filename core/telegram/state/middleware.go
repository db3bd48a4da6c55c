package state

import tele "gopkg.in/telebot.v4"

const sessionKey = "fsm_session"

// WithSession injects a session snapshot from Manager into the handler context.
func WithSession(mgr Manager) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			session := mgr.Get(c.Sender().ID)
			c.Set(sessionKey, session)
			return next(c)
		}
	}
}

// SessionFrom returns the session snapshot placed by WithSession, if any.
func SessionFrom(c tele.Context) (Session, bool) {
	if v := c.Get(sessionKey); v != nil {
		if s, ok := v.(Session); ok {
			return s, true
		}
	}
	return Session{}, false
}
