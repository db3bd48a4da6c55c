package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Item is a single purchase list entry. Struck items stay in the list
// but render crossed out.
type Item struct {
	Text   string
	Struck bool
}

// ErrProtected is returned for any attempt to delete the default list.
var ErrProtected = errors.New("storage: default list is protected")

// StoreError wraps infrastructure-level failures so callers can tell
// storage trouble apart from a list that simply does not exist.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsFailure reports whether err originates from storage I/O rather than
// domain conditions like a protected or missing list.
func IsFailure(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// Store persists named item collections per user. Keys are sanitized
// storage keys; reading a missing list yields an empty sequence.
type Store interface {
	// ListAll enumerates list keys: "default" first if present, the rest alphabetic.
	ListAll(ctx context.Context, userID int64) ([]string, error)
	// Read returns the stored items, or an empty slice for a missing list.
	Read(ctx context.Context, userID int64, key string) ([]Item, error)
	// Write atomically replaces the full stored sequence, creating the list if needed.
	Write(ctx context.Context, userID int64, key string, items []Item) error
	// Delete removes the list and reports whether it existed.
	// Deleting the default list fails with ErrProtected.
	Delete(ctx context.Context, userID int64, key string) (bool, error)
	// Exists reports whether the list has been created.
	Exists(ctx context.Context, userID int64, key string) (bool, error)
}

// SortKeys orders list keys the way every enumeration presents them:
// the default list first, everything else alphabetically.
func SortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == DefaultKey {
			return keys[j] != DefaultKey
		}
		if keys[j] == DefaultKey {
			return false
		}
		return keys[i] < keys[j]
	})
}
