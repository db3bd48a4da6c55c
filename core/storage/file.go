package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/konflic/purchase-bot/core/logger"
	"log/slog"
)

const listFileExt = ".txt"

// FileStore keeps one newline-delimited text file per (user, list) pair
// under root/<userID>/<key>.txt.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed and returns the store.
func NewFileStore(root string) (*FileStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("storage: empty root path")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &StoreError{Op: "init", Err: err}
	}
	if logger.Store != nil {
		logger.Store.Info("file store ready",
			slog.String("event", "store.init"),
			slog.String("backend", "file"),
			slog.String("path", root),
		)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) userDir(userID int64) string {
	return filepath.Join(s.root, strconv.FormatInt(userID, 10))
}

func (s *FileStore) listPath(userID int64, key string) string {
	// Keys are sanitized by callers; re-sanitizing keeps a hostile key
	// from ever reaching the filesystem as a path.
	return filepath.Join(s.userDir(userID), SanitizeKey(key)+listFileExt)
}

// ListAll enumerates list keys for a user, default first, rest alphabetic.
func (s *FileStore) ListAll(_ context.Context, userID int64) ([]string, error) {
	entries, err := os.ReadDir(s.userDir(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StoreError{Op: "list", Err: err}
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, listFileExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, listFileExt))
	}
	SortKeys(keys)
	return keys, nil
}

// Read returns the stored items; a missing list reads as empty, not as an error.
func (s *FileStore) Read(_ context.Context, userID int64, key string) ([]Item, error) {
	data, err := os.ReadFile(s.listPath(userID, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StoreError{Op: "read", Key: key, Err: err}
	}
	var items []Item
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, decodeLine(line))
	}
	return items, nil
}

// Write replaces the whole record atomically via temp file + rename, so a
// crash mid-write never leaves a torn file behind.
func (s *FileStore) Write(_ context.Context, userID int64, key string, items []Item) error {
	dir := s.userDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return s.writeErr(key, err)
	}

	tmp, err := os.CreateTemp(dir, "."+SanitizeKey(key)+"-*.tmp")
	if err != nil {
		return s.writeErr(key, err)
	}
	tmpName := tmp.Name()

	var b strings.Builder
	for _, it := range items {
		b.WriteString(encodeLine(it))
		b.WriteByte('\n')
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return s.writeErr(key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return s.writeErr(key, err)
	}
	if err := os.Rename(tmpName, s.listPath(userID, key)); err != nil {
		os.Remove(tmpName)
		return s.writeErr(key, err)
	}
	return nil
}

func (s *FileStore) writeErr(key string, err error) error {
	serr := &StoreError{Op: "write", Key: key, Err: err}
	if logger.Store != nil {
		logger.Store.Error("list write failed",
			slog.String("event", "store.write"),
			slog.String("list_key", key),
			slog.String("err", err.Error()),
		)
	}
	return serr
}

// Delete removes the persisted list. The default list is refused with ErrProtected.
func (s *FileStore) Delete(_ context.Context, userID int64, key string) (bool, error) {
	if SanitizeKey(key) == DefaultKey {
		return false, ErrProtected
	}
	err := os.Remove(s.listPath(userID, key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &StoreError{Op: "delete", Key: key, Err: err}
	}
	return true, nil
}

// Exists reports whether the list file is present.
func (s *FileStore) Exists(_ context.Context, userID int64, key string) (bool, error) {
	_, err := os.Stat(s.listPath(userID, key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, &StoreError{Op: "stat", Key: key, Err: err}
}

var _ Store = (*FileStore)(nil)
