// Package state provides the FSM/session manager for conversations.
// State names are registered by the application; the package only knows
// how to store sessions, dispatch to state handlers and expire stale
// conversations.
package state
