package purchase

import (
	"context"
	"strconv"
	"strings"

	"github.com/konflic/purchase-bot/core/logger"
	"github.com/konflic/purchase-bot/core/storage"
	"log/slog"
)

// batchSeparator splits one message into several items when adding.
const batchSeparator = "  "

const componentLists = "service.lists"

// Service implements purchase list operations on top of a storage backend.
// All list addressing goes through sanitized storage keys, so any
// user-supplied name is safe to pass in as key material.
type Service struct {
	store storage.Store
}

// NewService returns a Service backed by the given store.
func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// EnsureUser makes sure the user's default list exists. Called on first
// contact so enumerations are never empty.
func (s *Service) EnsureUser(ctx context.Context, userID int64) error {
	ok, err := s.store.Exists(ctx, userID, storage.DefaultKey)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := s.store.Write(ctx, userID, storage.DefaultKey, nil); err != nil {
		return err
	}
	logger.Info(ctx, componentLists, "user.init",
		slog.Int64("user_id", userID),
		slog.String("list_key", storage.DefaultKey),
	)
	return nil
}

// Lists enumerates the user's list keys, default first, rest alphabetic.
func (s *Service) Lists(ctx context.Context, userID int64) ([]string, error) {
	if err := s.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListAll(ctx, userID)
}

// Items returns the stored items of a list. A list that was never
// created reads as empty.
func (s *Service) Items(ctx context.Context, userID int64, key string) ([]storage.Item, error) {
	return s.store.Read(ctx, userID, key)
}

// Exists reports whether the list has been created.
func (s *Service) Exists(ctx context.Context, userID int64, key string) (bool, error) {
	return s.store.Exists(ctx, userID, key)
}

// Create makes a new empty list from a raw user-supplied name and
// returns its storage key.
func (s *Service) Create(ctx context.Context, userID int64, rawName string) (string, error) {
	if strings.TrimSpace(rawName) == "" {
		return "", ErrInvalidInput
	}
	key := storage.SanitizeKey(rawName)
	ok, err := s.store.Exists(ctx, userID, key)
	if err != nil {
		return "", err
	}
	if ok {
		return key, ErrAlreadyExists
	}
	if err := s.store.Write(ctx, userID, key, nil); err != nil {
		return "", err
	}
	logger.Info(ctx, componentLists, "list.create",
		slog.Int64("user_id", userID),
		slog.String("list_key", key),
	)
	return key, nil
}

// Delete removes a list. The default list is protected by the store and
// a list that does not exist reports ErrNotFound.
func (s *Service) Delete(ctx context.Context, userID int64, key string) error {
	existed, err := s.store.Delete(ctx, userID, key)
	if err != nil {
		return err
	}
	if !existed {
		return ErrNotFound
	}
	logger.Info(ctx, componentLists, "list.delete",
		slog.Int64("user_id", userID),
		slog.String("list_key", key),
	)
	return nil
}

// AddItems appends items to a list. Two consecutive spaces separate
// several items inside one message; the whole input is lowercased and
// line breaks never produce separate entries.
func (s *Service) AddItems(ctx context.Context, userID int64, key, text string) ([]string, error) {
	text = strings.ToLower(strings.ReplaceAll(text, "\n", " "))

	var added []string
	for _, part := range strings.Split(text, batchSeparator) {
		part = strings.Join(strings.Fields(part), " ")
		if part == "" {
			continue
		}
		added = append(added, part)
	}
	if len(added) == 0 {
		return nil, ErrEmptyInput
	}

	items, err := s.store.Read(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	for _, entry := range added {
		items = append(items, storage.Item{Text: entry})
	}
	if err := s.store.Write(ctx, userID, key, items); err != nil {
		return nil, err
	}
	logger.Info(ctx, componentLists, "items.add",
		slog.Int64("user_id", userID),
		slog.String("list_key", key),
		slog.Int("items", len(added)),
	)
	return added, nil
}

// RemoveTokens deletes items addressed by whitespace-separated tokens.
// Every token resolves against the list as it was before the batch, so
// "2 3" removes the second and third item even though positions shift
// as the batch is applied. A token is either a 1-based position or an
// exact item text (case-insensitive). Unresolved tokens are reported
// back, they never abort the rest of the batch.
func (s *Service) RemoveTokens(ctx context.Context, userID int64, key, text string) (removed, unresolved []string, err error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, nil, ErrEmptyInput
	}

	snapshot, err := s.store.Read(ctx, userID, key)
	if err != nil {
		return nil, nil, err
	}

	drop := make(map[int]bool)
	for _, tok := range tokens {
		idx, ok := resolveToken(snapshot, tok)
		if !ok || drop[idx] {
			unresolved = append(unresolved, tok)
			continue
		}
		drop[idx] = true
		removed = append(removed, snapshot[idx].Text)
	}

	if len(drop) > 0 {
		kept := make([]storage.Item, 0, len(snapshot)-len(drop))
		for i, it := range snapshot {
			if !drop[i] {
				kept = append(kept, it)
			}
		}
		if err := s.store.Write(ctx, userID, key, kept); err != nil {
			return nil, nil, err
		}
	}

	logger.Info(ctx, componentLists, "items.remove",
		slog.Int64("user_id", userID),
		slog.String("list_key", key),
		slog.Int("removed", len(removed)),
		slog.Int("unresolved", len(unresolved)),
	)
	return removed, unresolved, nil
}

func resolveToken(items []storage.Item, tok string) (int, bool) {
	if n, err := strconv.Atoi(tok); err == nil {
		if n >= 1 && n <= len(items) {
			return n - 1, true
		}
		return 0, false
	}
	want := strings.ToLower(tok)
	for i, it := range items {
		if strings.ToLower(it.Text) == want {
			return i, true
		}
	}
	return 0, false
}

// ToggleStruck handles an item button press. The first press strikes the
// item out, a press on an already struck item removes it for good.
// It returns the affected item and whether it was removed.
func (s *Service) ToggleStruck(ctx context.Context, userID int64, key string, index int) (storage.Item, bool, error) {
	items, err := s.store.Read(ctx, userID, key)
	if err != nil {
		return storage.Item{}, false, err
	}
	if index < 0 || index >= len(items) {
		return storage.Item{}, false, ErrNotFound
	}

	it := items[index]
	if !it.Struck {
		items[index].Struck = true
		if err := s.store.Write(ctx, userID, key, items); err != nil {
			return storage.Item{}, false, err
		}
		return items[index], false, nil
	}

	items = append(items[:index], items[index+1:]...)
	if err := s.store.Write(ctx, userID, key, items); err != nil {
		return storage.Item{}, false, err
	}
	return it, true, nil
}

// ClearStruck drops every struck item from the list and reports how many
// were removed.
func (s *Service) ClearStruck(ctx context.Context, userID int64, key string) (int, error) {
	items, err := s.store.Read(ctx, userID, key)
	if err != nil {
		return 0, err
	}
	kept := items[:0:0]
	for _, it := range items {
		if !it.Struck {
			kept = append(kept, it)
		}
	}
	dropped := len(items) - len(kept)
	if dropped == 0 {
		return 0, nil
	}
	if err := s.store.Write(ctx, userID, key, kept); err != nil {
		return 0, err
	}
	return dropped, nil
}

// ResolveChoice maps user input to one of the previously shown keys:
// a 1-based position into the enumeration, or a name that sanitizes to
// one of the keys.
func ResolveChoice(choices []string, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(choices) {
			return choices[n-1], true
		}
		return "", false
	}
	key := storage.SanitizeKey(input)
	for _, c := range choices {
		if c == key {
			return c, true
		}
	}
	return "", false
}

// AllStruck reports whether the list is non-empty and fully struck out,
// which is the cue to offer deleting the completed list.
func AllStruck(items []storage.Item) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if !it.Struck {
			return false
		}
	}
	return true
}
