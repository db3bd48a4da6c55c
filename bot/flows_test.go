package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/konflic/purchase-bot/core/config"
	"github.com/konflic/purchase-bot/core/storage"
	"github.com/konflic/purchase-bot/core/telegram/router"
	"github.com/konflic/purchase-bot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// fakeContext implements just enough of tele.Context for handler tests.
// Calls to anything not stubbed below panic via the nil embedded interface.
type fakeContext struct {
	tele.Context
	sender *tele.User
	text   string
	data   string
	store  map[string]interface{}
	sent   []string
}

func newFakeContext(userID int64, text string) *fakeContext {
	return &fakeContext{
		sender: &tele.User{ID: userID},
		text:   text,
		store:  map[string]interface{}{},
	}
}

func (f *fakeContext) Sender() *tele.User  { return f.sender }
func (f *fakeContext) Chat() *tele.Chat    { return &tele.Chat{ID: f.sender.ID} }
func (f *fakeContext) Text() string        { return f.text }
func (f *fakeContext) Update() tele.Update { return tele.Update{ID: 1} }

func (f *fakeContext) Callback() *tele.Callback {
	if f.data == "" {
		return nil
	}
	return &tele.Callback{Data: f.data}
}

func (f *fakeContext) Get(key string) interface{}        { return f.store[key] }
func (f *fakeContext) Set(key string, v interface{})     { f.store[key] = v }
func (f *fakeContext) Respond(...*tele.CallbackResponse) error { return nil }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func (f *fakeContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return f.Send(what, opts...)
}

func (f *fakeContext) lastSent() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

func tContext() context.Context { return context.Background() }

func newTestApp(t *testing.T) *App {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	cfg := &coreconfig.Config{}
	cfg.Conversation.TimeoutSeconds = 30
	app := New(cfg, store)
	app.registerFlows()
	return app
}

func TestCreateListFlow(t *testing.T) {
	app := newTestApp(t)

	c := newFakeContext(1, "/create_list")
	require.NoError(t, app.handleCreateList(c))
	assert.Equal(t, stateAwaitingListName, app.fsm.GetState(1))

	c = newFakeContext(1, "Weekend BBQ")
	require.NoError(t, app.fsm.ManagerHandler(c))
	// The key is Markdown-escaped before it is embedded in the reply.
	assert.Contains(t, c.lastSent(), `weekend\_bbq`)
	assert.Equal(t, state.StateIdle, app.fsm.GetState(1))
	assert.Equal(t, "weekend_bbq", app.fsm.ActiveList(1))
}

func TestCreateListDuplicateEndsConversation(t *testing.T) {
	app := newTestApp(t)

	c := newFakeContext(1, "")
	require.NoError(t, app.handleCreateList(c))
	require.NoError(t, app.fsm.ManagerHandler(newFakeContext(1, "party")))

	require.NoError(t, app.handleCreateList(c))
	dup := newFakeContext(1, "Party")
	require.NoError(t, app.fsm.ManagerHandler(dup))
	assert.Contains(t, dup.lastSent(), "существует")
	assert.Equal(t, state.StateIdle, app.fsm.GetState(1))
}

func TestSelectListByNumber(t *testing.T) {
	app := newTestApp(t)

	setup := newFakeContext(1, "")
	require.NoError(t, app.handleCreateList(setup))
	require.NoError(t, app.fsm.ManagerHandler(newFakeContext(1, "groceries")))

	c := newFakeContext(1, "/select_list")
	require.NoError(t, app.handleSelectList(c))
	assert.Equal(t, stateAwaitingListChoice, app.fsm.GetState(1))

	// Enumeration is default first, so "2" is groceries.
	choice := newFakeContext(1, "2")
	require.NoError(t, app.fsm.ManagerHandler(choice))
	assert.Equal(t, "groceries", app.fsm.ActiveList(1))
}

func TestSelectUnknownListEndsConversation(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.handleSelectList(newFakeContext(1, "")))
	choice := newFakeContext(1, "99")
	require.NoError(t, app.fsm.ManagerHandler(choice))
	assert.Equal(t, msgUnknownList, choice.lastSent())
	assert.Equal(t, state.StateIdle, app.fsm.GetState(1))
	assert.Equal(t, storage.DefaultKey, app.fsm.ActiveList(1))
}

func TestDeleteListConfirmFlow(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.handleCreateList(newFakeContext(1, "")))
	require.NoError(t, app.fsm.ManagerHandler(newFakeContext(1, "party")))

	require.NoError(t, app.handleDeleteList(newFakeContext(1, "/delete_list")))
	assert.Equal(t, stateAwaitingDeleteChoice, app.fsm.GetState(1))

	require.NoError(t, app.fsm.ManagerHandler(newFakeContext(1, "party")))
	assert.Equal(t, stateAwaitingDeleteConfirm, app.fsm.GetState(1))

	confirm := newFakeContext(1, "да")
	require.NoError(t, app.fsm.ManagerHandler(confirm))
	assert.Contains(t, confirm.lastSent(), "удалён")
	// The deleted list was active, so selection falls back to default.
	assert.Equal(t, storage.DefaultKey, app.fsm.ActiveList(1))

	keys, err := app.svc.Lists(tContext(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{storage.DefaultKey}, keys)
}

func TestDeleteListAnyOtherReplyAborts(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.handleCreateList(newFakeContext(1, "")))
	require.NoError(t, app.fsm.ManagerHandler(newFakeContext(1, "party")))

	require.NoError(t, app.handleDeleteList(newFakeContext(1, "")))
	require.NoError(t, app.fsm.ManagerHandler(newFakeContext(1, "party")))

	abort := newFakeContext(1, "нет")
	require.NoError(t, app.fsm.ManagerHandler(abort))
	assert.Equal(t, msgDeleteAborted, abort.lastSent())

	keys, err := app.svc.Lists(tContext(), 1)
	require.NoError(t, err)
	assert.Contains(t, keys, "party")
}

func TestDeleteDefaultListRefused(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.handleDeleteList(newFakeContext(1, "")))
	c := newFakeContext(1, "default")
	require.NoError(t, app.fsm.ManagerHandler(c))
	assert.Equal(t, msgProtectedList, c.lastSent())
	assert.Equal(t, state.StateIdle, app.fsm.GetState(1))
}

func TestAddItemsFlow(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.handleAdd(newFakeContext(1, "/add")))
	c := newFakeContext(1, "Milk  Bread")
	require.NoError(t, app.fsm.ManagerHandler(c))
	assert.Equal(t, fmt.Sprintf(msgItemsAdded, "milk, bread"), c.lastSent())

	items, err := app.svc.Items(tContext(), 1, storage.DefaultKey)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestRemoveItemsFlowReportsUnmatched(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.handleAdd(newFakeContext(1, "")))
	require.NoError(t, app.fsm.ManagerHandler(newFakeContext(1, "a  b  c")))

	require.NoError(t, app.handleRemove(newFakeContext(1, "/remove")))
	c := newFakeContext(1, "2 x")
	require.NoError(t, app.fsm.ManagerHandler(c))
	assert.Contains(t, c.lastSent(), fmt.Sprintf(msgItemsRemoved, "b"))
	assert.Contains(t, c.lastSent(), fmt.Sprintf(msgTokensUnmatched, "x"))
}

func TestStrayTextAfterTimeoutIsOutOfContext(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	cfg := &coreconfig.Config{}
	cfg.Conversation.TimeoutSeconds = 0 // disabled TTL for the manager below
	app := New(cfg, store)
	app.fsm = state.NewMemoryManager(10 * time.Millisecond)
	app.registerFlows()

	require.NoError(t, app.handleCreateList(newFakeContext(1, "")))
	time.Sleep(30 * time.Millisecond)

	// The router consults InProgress before handing text to the FSM.
	assert.False(t, app.fsm.InProgress(1))

	c := newFakeContext(1, "milk")
	require.NoError(t, app.UnknownText()(c))
	assert.Equal(t, msgOutOfContext, c.lastSent())
}

func TestSlashTextMidConversationIsNotAListName(t *testing.T) {
	app := newTestApp(t)
	reg := app.buildRegistry()
	routes := router.TextRoutes(app.fsm, reg, router.TextOptions{
		UnknownText:     app.UnknownText(),
		UnknownDocument: app.UnknownDocument(),
	})
	textHandler := routes[0].Handler

	require.NoError(t, app.handleCreateList(newFakeContext(1, "")))

	// An unknown command must not be swallowed as the list name and
	// must leave the conversation in place.
	c := newFakeContext(1, "/foo")
	require.NoError(t, textHandler(c))
	assert.Equal(t, msgOutOfContext, c.lastSent())
	assert.Equal(t, stateAwaitingListName, app.fsm.GetState(1))

	keys, err := app.svc.Lists(tContext(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{storage.DefaultKey}, keys)

	// The next plain reply still completes the flow.
	name := newFakeContext(1, "party")
	require.NoError(t, textHandler(name))
	assert.Equal(t, "party", app.fsm.ActiveList(1))
}

func TestCancelCommand(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.handleCreateList(newFakeContext(1, "")))
	c := newFakeContext(1, "/cancel")
	require.NoError(t, app.handleCancel(c))
	assert.Equal(t, msgCanceled, c.lastSent())
	assert.Equal(t, state.StateIdle, app.fsm.GetState(1))
}

func TestCancelButtonEndsConversation(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.handleCreateList(newFakeContext(1, "")))

	press := newFakeContext(1, "")
	press.data = "\\f" + cbCancelDialog + "|cancel"
	require.NoError(t, app.cbCancel(press))
	assert.Equal(t, msgCanceled, press.lastSent())
	assert.Equal(t, state.StateIdle, app.fsm.GetState(1))
}

func TestRemoveButtonStrikesThenRemoves(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.handleAdd(newFakeContext(1, "")))
	require.NoError(t, app.fsm.ManagerHandler(newFakeContext(1, "milk  bread")))

	press := newFakeContext(1, "")
	press.data = "\\f" + cbRemoveItem + "|0"
	require.NoError(t, app.cbRemove(press))

	items, err := app.svc.Items(tContext(), 1, storage.DefaultKey)
	require.NoError(t, err)
	assert.True(t, items[0].Struck)

	press = newFakeContext(1, "")
	press.data = "\\f" + cbRemoveItem + "|0"
	require.NoError(t, app.cbRemove(press))

	items, err = app.svc.Items(tContext(), 1, storage.DefaultKey)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "bread", items[0].Text)
}

func TestSelectCallback(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.handleCreateList(newFakeContext(1, "")))
	require.NoError(t, app.fsm.ManagerHandler(newFakeContext(1, "groceries")))
	app.fsm.SetActiveList(1, storage.DefaultKey)

	press := newFakeContext(1, "")
	press.data = "\\f" + cbSelectList + "|groceries"
	require.NoError(t, app.cbSelect(press))
	assert.Equal(t, "groceries", app.fsm.ActiveList(1))
}

func TestDeleteCompletedCallback(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.handleCreateList(newFakeContext(1, "")))
	require.NoError(t, app.fsm.ManagerHandler(newFakeContext(1, "party")))
	require.NoError(t, app.handleAdd(newFakeContext(1, "")))
	require.NoError(t, app.fsm.ManagerHandler(newFakeContext(1, "cake")))

	press := newFakeContext(1, "")
	press.data = "\\f" + cbRemoveItem + "|0"
	require.NoError(t, app.cbRemove(press))

	done := newFakeContext(1, "")
	done.data = "\\f" + cbDeleteCompleted
	require.NoError(t, app.cbDeleteCompleted(done))

	assert.Equal(t, storage.DefaultKey, app.fsm.ActiveList(1))
	keys, err := app.svc.Lists(tContext(), 1)
	require.NoError(t, err)
	assert.NotContains(t, keys, "party")
}

func TestRenderItemsShowsStruckWithTildes(t *testing.T) {
	text, markup := renderItems("default", []storage.Item{
		{Text: "milk"},
		{Text: "bread", Struck: true},
	})
	assert.Contains(t, text, "1. milk")
	assert.Contains(t, text, "~bread~")
	require.NotNil(t, markup)
	// Two item buttons in one row plus the service row.
	assert.Len(t, markup.InlineKeyboard, 2)
}

func TestRenderListsMarksActive(t *testing.T) {
	text, markup := renderLists([]string{"default", "party"}, "party")
	assert.True(t, strings.Contains(text, "▶ 2. party"))
	require.NotNil(t, markup)
	assert.Len(t, markup.InlineKeyboard, 1)
}
