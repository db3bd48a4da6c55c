package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/konflic/purchase-bot/core/storage"
	"github.com/konflic/purchase-bot/core/telegram/format"
	tghelpers "github.com/konflic/purchase-bot/core/telegram/helpers"
	"github.com/konflic/purchase-bot/core/telegram/state"
	"github.com/konflic/purchase-bot/purchase"

	tele "gopkg.in/telebot.v4"
)

// Conversation states. Each one names the operation and the input it waits for.
const (
	stateAwaitingListName       state.State = "create_list:awaiting_name"
	stateAwaitingListChoice     state.State = "select_list:awaiting_choice"
	stateAwaitingDeleteChoice   state.State = "delete_list:awaiting_choice"
	stateAwaitingDeleteConfirm  state.State = "delete_list:awaiting_confirm"
	stateAwaitingItems          state.State = "add_item:awaiting_text"
	stateAwaitingRemoveSelector state.State = "remove_item:awaiting_selector"
)

// registerFlows binds every conversation state to its step handler.
func (a *App) registerFlows() {
	state.RegisterHandler(stateAwaitingListName, a.stepListName)
	state.RegisterHandler(stateAwaitingListChoice, a.stepListChoice)
	state.RegisterHandler(stateAwaitingDeleteChoice, a.stepDeleteChoice)
	state.RegisterHandler(stateAwaitingDeleteConfirm, a.stepDeleteConfirm)
	state.RegisterHandler(stateAwaitingItems, a.stepAddItems)
	state.RegisterHandler(stateAwaitingRemoveSelector, a.stepRemoveSelector)
}

// stepListName receives the name for a new list. Any outcome ends the
// conversation; a successfully created list becomes the active one.
func (a *App) stepListName(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	a.fsm.ClearState(userID)

	key, err := a.svc.Create(ctx, userID, c.Text())
	switch {
	case errors.Is(err, purchase.ErrAlreadyExists):
		return tghelpers.SendMD(c, fmt.Sprintf(msgListExists, format.EscapeV1(key)))
	case err != nil:
		return a.replyServiceError(c, err)
	}

	a.fsm.SetActiveList(userID, key)
	return tghelpers.SendMD(c, fmt.Sprintf(msgListCreated, format.EscapeV1(key)), showItemsMarkup())
}

// stepListChoice resolves a select reply against the snapshot shown to
// the user.
func (a *App) stepListChoice(c tele.Context) error {
	userID := c.Sender().ID
	a.fsm.ClearState(userID)

	key, ok := purchase.ResolveChoice(a.fsm.Choices(userID), c.Text())
	if !ok {
		return tghelpers.SendText(c, msgUnknownList)
	}
	a.fsm.SetActiveList(userID, key)
	return tghelpers.SendMD(c, fmt.Sprintf(msgListSelected, format.EscapeV1(key)), showItemsMarkup())
}

// stepDeleteChoice picks the deletion target and asks for confirmation.
// The default list is refused before the confirm step so the user does
// not confirm something that can never happen.
func (a *App) stepDeleteChoice(c tele.Context) error {
	userID := c.Sender().ID

	key, ok := purchase.ResolveChoice(a.fsm.Choices(userID), c.Text())
	if !ok {
		a.fsm.ClearState(userID)
		return tghelpers.SendText(c, msgUnknownList)
	}
	if key == storage.DefaultKey {
		a.fsm.ClearState(userID)
		return tghelpers.SendMD(c, msgProtectedList)
	}

	a.fsm.SetPendingDelete(userID, key)
	a.fsm.SetState(userID, stateAwaitingDeleteConfirm)
	return tghelpers.SendMD(c, fmt.Sprintf(msgConfirmDelete, format.EscapeV1(key)))
}

// stepDeleteConfirm deletes the pending list on an affirmative reply.
// Anything else aborts. If the active list was deleted, selection falls
// back to the default list.
func (a *App) stepDeleteConfirm(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	key := a.fsm.PendingDelete(userID)
	a.fsm.ClearState(userID)
	if key == "" {
		return tghelpers.SendText(c, msgDeleteAborted)
	}

	reply := strings.ToLower(strings.TrimSpace(c.Text()))
	if _, yes := affirmatives[reply]; !yes {
		return tghelpers.SendText(c, msgDeleteAborted)
	}

	wasActive := a.fsm.ActiveList(userID) == key
	if err := a.svc.Delete(ctx, userID, key); err != nil {
		return a.replyServiceError(c, err)
	}

	out := fmt.Sprintf(msgListDeleted, format.EscapeV1(key))
	if wasActive {
		a.fsm.SetActiveList(userID, storage.DefaultKey)
		out += "\n" + msgActiveReset
	}
	return tghelpers.SendMD(c, out)
}

// stepAddItems appends the message to the active list, splitting on
// double spaces.
func (a *App) stepAddItems(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	a.fsm.ClearState(userID)

	key := a.fsm.ActiveList(userID)
	added, err := a.svc.AddItems(ctx, userID, key, c.Text())
	if err != nil {
		return a.replyServiceError(c, err)
	}
	return tghelpers.SendText(c, fmt.Sprintf(msgItemsAdded, strings.Join(added, ", ")))
}

// stepRemoveSelector removes items by positions or names. Unmatched
// tokens are reported without aborting the matched ones.
func (a *App) stepRemoveSelector(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	a.fsm.ClearState(userID)

	key := a.fsm.ActiveList(userID)
	removed, unresolved, err := a.svc.RemoveTokens(ctx, userID, key, c.Text())
	if err != nil {
		return a.replyServiceError(c, err)
	}

	var parts []string
	if len(removed) > 0 {
		parts = append(parts, fmt.Sprintf(msgItemsRemoved, strings.Join(removed, ", ")))
	}
	if len(unresolved) > 0 {
		parts = append(parts, fmt.Sprintf(msgTokensUnmatched, strings.Join(unresolved, ", ")))
	}
	return tghelpers.SendText(c, strings.Join(parts, "\n"))
}
