package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	in := []Item{{Text: "milk"}, {Text: "bread", Struck: true}, {Text: "eggs"}}
	require.NoError(t, s.Write(ctx, 42, "groceries", in))

	out, err := s.Read(ctx, 42, "groceries")
	require.NoError(t, err)
	assert.Equal(t, in, out)

	ok, err := s.Exists(ctx, 42, "groceries")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileStoreMissingListReadsEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	items, err := s.Read(ctx, 7, "nowhere")
	require.NoError(t, err)
	assert.Empty(t, items)

	ok, err := s.Exists(ctx, 7, "nowhere")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreListAllOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, key := range []string{"zebra", "default", "apples"} {
		require.NoError(t, s.Write(ctx, 1, key, nil))
	}

	keys, err := s.ListAll(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "apples", "zebra"}, keys)
}

func TestFileStoreListAllEmptyUser(t *testing.T) {
	s := newTestStore(t)
	keys, err := s.ListAll(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Write(ctx, 5, "party", []Item{{Text: "cake"}}))

	existed, err := s.Delete(ctx, 5, "party")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.Delete(ctx, 5, "party")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestFileStoreDefaultListProtected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Write(ctx, 5, DefaultKey, []Item{{Text: "soap"}}))

	_, err := s.Delete(ctx, 5, DefaultKey)
	assert.ErrorIs(t, err, ErrProtected)

	// Raw names that sanitize to the default key are refused too.
	_, err = s.Delete(ctx, 5, "  Default  ")
	assert.ErrorIs(t, err, ErrProtected)

	items, err := s.Read(ctx, 5, DefaultKey)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFileStoreUsersIsolated(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Write(ctx, 1, "shared", []Item{{Text: "mine"}}))
	require.NoError(t, s.Write(ctx, 2, "shared", []Item{{Text: "yours"}}))

	a, err := s.Read(ctx, 1, "shared")
	require.NoError(t, err)
	b, err := s.Read(ctx, 2, "shared")
	require.NoError(t, err)
	assert.Equal(t, "mine", a[0].Text)
	assert.Equal(t, "yours", b[0].Text)
}

func TestFileStoreReadsLegacyStruckSigil(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewFileStore(root)
	require.NoError(t, err)

	dir := filepath.Join(root, "10")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	raw := "milk\n~bread~\n\n  \neggs\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.txt"), []byte(raw), 0o644))

	items, err := s.Read(ctx, 10, "default")
	require.NoError(t, err)
	assert.Equal(t, []Item{
		{Text: "milk"},
		{Text: "bread", Struck: true},
		{Text: "eggs"},
	}, items)
}

func TestFileStoreWriteReplacesWhole(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Write(ctx, 3, "l", []Item{{Text: "a"}, {Text: "b"}}))
	require.NoError(t, s.Write(ctx, 3, "l", []Item{{Text: "c"}}))

	items, err := s.Read(ctx, 3, "l")
	require.NoError(t, err)
	assert.Equal(t, []Item{{Text: "c"}}, items)
}

func TestStoreErrorClassification(t *testing.T) {
	infra := &StoreError{Op: "write", Key: "x", Err: errors.New("disk full")}
	assert.True(t, IsFailure(infra))
	assert.False(t, IsFailure(ErrProtected))
	assert.False(t, IsFailure(nil))
}
