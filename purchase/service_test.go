package purchase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konflic/purchase-bot/core/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewService(store)
}

func TestEnsureUserCreatesDefault(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.EnsureUser(ctx, 1))
	// Second call is a no-op.
	require.NoError(t, svc.EnsureUser(ctx, 1))

	keys, err := svc.Lists(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{storage.DefaultKey}, keys)
}

func TestCreateList(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	key, err := svc.Create(ctx, 1, "Weekend BBQ")
	require.NoError(t, err)
	assert.Equal(t, "weekend_bbq", key)

	// Same sanitized key means the same list.
	_, err = svc.Create(ctx, 1, "weekend   bbq")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = svc.Create(ctx, 1, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteList(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	key, err := svc.Create(ctx, 1, "party")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, key))
	assert.ErrorIs(t, svc.Delete(ctx, 1, key), ErrNotFound)

	require.NoError(t, svc.EnsureUser(ctx, 1))
	assert.ErrorIs(t, svc.Delete(ctx, 1, storage.DefaultKey), storage.ErrProtected)
}

func TestAddItemsSingle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	added, err := svc.AddItems(ctx, 1, "default", "Milk")
	require.NoError(t, err)
	assert.Equal(t, []string{"milk"}, added)

	items, err := svc.Items(ctx, 1, "default")
	require.NoError(t, err)
	assert.Equal(t, []storage.Item{{Text: "milk"}}, items)
}

func TestAddItemsBatchOnDoubleSpace(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	added, err := svc.AddItems(ctx, 1, "default", "bread  eggs")
	require.NoError(t, err)
	assert.Equal(t, []string{"bread", "eggs"}, added)

	// Single spaces stay inside one item.
	added, err = svc.AddItems(ctx, 1, "default", "green tea")
	require.NoError(t, err)
	assert.Equal(t, []string{"green tea"}, added)

	items, err := svc.Items(ctx, 1, "default")
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestAddItemsNewlinesNeverSplit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	added, err := svc.AddItems(ctx, 1, "default", "milk\n2 liters")
	require.NoError(t, err)
	assert.Equal(t, []string{"milk 2 liters"}, added)
}

func TestAddItemsEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.AddItems(ctx, 1, "default", "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestRemoveTokensByIndexUsesSnapshot(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.AddItems(ctx, 1, "default", "a  b  c  d")
	require.NoError(t, err)

	// Both positions refer to the list before the batch, so "2 3"
	// removes b and c, not b and d.
	removed, unresolved, err := svc.RemoveTokens(ctx, 1, "default", "2 3")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, removed)
	assert.Empty(t, unresolved)

	items, err := svc.Items(ctx, 1, "default")
	require.NoError(t, err)
	assert.Equal(t, []storage.Item{{Text: "a"}, {Text: "d"}}, items)
}

func TestRemoveTokensByText(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.AddItems(ctx, 1, "default", "milk  bread")
	require.NoError(t, err)

	removed, unresolved, err := svc.RemoveTokens(ctx, 1, "default", "MILK cheese")
	require.NoError(t, err)
	assert.Equal(t, []string{"milk"}, removed)
	assert.Equal(t, []string{"cheese"}, unresolved)
}

func TestRemoveTokensOutOfRange(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.AddItems(ctx, 1, "default", "milk")
	require.NoError(t, err)

	removed, unresolved, err := svc.RemoveTokens(ctx, 1, "default", "0 2")
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, []string{"0", "2"}, unresolved)
}

func TestRemoveTokensEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, _, err := svc.RemoveTokens(ctx, 1, "default", " ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestToggleStruckThenRemove(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.AddItems(ctx, 1, "default", "milk  bread")
	require.NoError(t, err)

	it, gone, err := svc.ToggleStruck(ctx, 1, "default", 0)
	require.NoError(t, err)
	assert.False(t, gone)
	assert.True(t, it.Struck)
	assert.Equal(t, "milk", it.Text)

	it, gone, err = svc.ToggleStruck(ctx, 1, "default", 0)
	require.NoError(t, err)
	assert.True(t, gone)
	assert.Equal(t, "milk", it.Text)

	items, err := svc.Items(ctx, 1, "default")
	require.NoError(t, err)
	assert.Equal(t, []storage.Item{{Text: "bread"}}, items)
}

func TestToggleStruckOutOfRange(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, _, err := svc.ToggleStruck(ctx, 1, "default", 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearStruck(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.AddItems(ctx, 1, "default", "a  b  c")
	require.NoError(t, err)
	_, _, err = svc.ToggleStruck(ctx, 1, "default", 0)
	require.NoError(t, err)
	_, _, err = svc.ToggleStruck(ctx, 1, "default", 2)
	require.NoError(t, err)

	n, err := svc.ClearStruck(ctx, 1, "default")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := svc.Items(ctx, 1, "default")
	require.NoError(t, err)
	assert.Equal(t, []storage.Item{{Text: "b"}}, items)
}

func TestResolveChoice(t *testing.T) {
	choices := []string{"default", "groceries", "weekend_bbq"}

	key, ok := ResolveChoice(choices, "2")
	assert.True(t, ok)
	assert.Equal(t, "groceries", key)

	key, ok = ResolveChoice(choices, "Weekend BBQ")
	assert.True(t, ok)
	assert.Equal(t, "weekend_bbq", key)

	_, ok = ResolveChoice(choices, "4")
	assert.False(t, ok)

	_, ok = ResolveChoice(choices, "nothing")
	assert.False(t, ok)

	_, ok = ResolveChoice(choices, "")
	assert.False(t, ok)
}

func TestAllStruck(t *testing.T) {
	assert.False(t, AllStruck(nil))
	assert.False(t, AllStruck([]storage.Item{{Text: "a", Struck: true}, {Text: "b"}}))
	assert.True(t, AllStruck([]storage.Item{{Text: "a", Struck: true}, {Text: "b", Struck: true}}))
}
