package bot

import (
	"errors"
	"fmt"

	"github.com/konflic/purchase-bot/core/buildinfo"
	"github.com/konflic/purchase-bot/core/logger"
	"github.com/konflic/purchase-bot/core/storage"
	tghelpers "github.com/konflic/purchase-bot/core/telegram/helpers"
	"github.com/konflic/purchase-bot/core/telegram/keyboard"
	"github.com/konflic/purchase-bot/core/telegram/state"
	"github.com/konflic/purchase-bot/purchase"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if err := a.svc.EnsureUser(ctx, c.Sender().ID); err != nil {
		return a.replyServiceError(c, err)
	}
	return tghelpers.SendText(c, msgStart)
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.SendText(c, msgHelp)
}

// showLists sends the enumeration with select buttons and snapshots it so
// numeric replies keep meaning what the user saw.
func (a *App) showLists(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	keys, err := a.svc.Lists(ctx, userID)
	if err != nil {
		return a.replyServiceError(c, err)
	}
	a.fsm.SetChoices(userID, keys)

	text, markup := renderLists(keys, a.fsm.ActiveList(userID))
	return tghelpers.SendMD(c, text, markup)
}

func (a *App) handleShowLists(c tele.Context) error {
	return a.showLists(c)
}

func (a *App) handleListItems(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	key := a.fsm.ActiveList(userID)
	if session, ok := state.SessionFrom(c); ok {
		key = session.ActiveList
	}

	items, err := a.svc.Items(ctx, userID, key)
	if err != nil {
		return a.replyServiceError(c, err)
	}
	text, markup := renderItems(key, items)
	return tghelpers.SendMD(c, text, markup)
}

func (a *App) handleCreateList(c tele.Context) error {
	a.fsm.SetState(c.Sender().ID, stateAwaitingListName)
	return tghelpers.SendText(c, msgAskListName, promptOptions())
}

func (a *App) handleSelectList(c tele.Context) error {
	if err := a.showLists(c); err != nil {
		return err
	}
	a.fsm.SetState(c.Sender().ID, stateAwaitingListChoice)
	return tghelpers.SendText(c, msgChooseList, promptOptions())
}

func (a *App) handleDeleteList(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	keys, err := a.svc.Lists(ctx, userID)
	if err != nil {
		return a.replyServiceError(c, err)
	}
	a.fsm.SetChoices(userID, keys)
	a.fsm.SetState(userID, stateAwaitingDeleteChoice)

	text, _ := renderLists(keys, a.fsm.ActiveList(userID))
	return tghelpers.SendMD(c, text+"\n"+msgChooseDelete, keyboard.SingleCancelMarkup(cbCancelDialog))
}

func (a *App) handleAdd(c tele.Context) error {
	a.fsm.SetState(c.Sender().ID, stateAwaitingItems)
	return tghelpers.SendText(c, msgAskItems, promptOptions())
}

func (a *App) handleRemove(c tele.Context) error {
	if err := a.handleListItems(c); err != nil {
		return err
	}
	a.fsm.SetState(c.Sender().ID, stateAwaitingRemoveSelector)
	return tghelpers.SendText(c, msgAskRemove, promptOptions())
}

func (a *App) handleCancel(c tele.Context) error {
	a.fsm.ClearState(c.Sender().ID)
	return tghelpers.SendText(c, msgCanceled)
}

// handleVersion is a hidden admin command for checking what build is running.
func (a *App) handleVersion(c tele.Context) error {
	return tghelpers.SendText(c, fmt.Sprintf("purchase-bot %s (%s) built %s",
		buildinfo.Version, buildinfo.Commit, buildinfo.Date))
}

// UnknownText replies to stray messages outside of any conversation.
func (a *App) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msgOutOfContext)
	}
}

// UnknownDocument handles non-text content the bot has no use for.
func (a *App) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msgOutOfContext)
	}
}

// UnknownCallback answers presses of buttons from stale keyboards.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Неизвестное действие"})
	}
}

// replyServiceError maps domain and storage failures to user messages.
// The conversation never survives an error, so the user always knows to
// start over.
func (a *App) replyServiceError(c tele.Context, err error) error {
	ctx := tghelpers.BuildContext(c)
	a.fsm.ClearState(c.Sender().ID)

	switch {
	case errors.Is(err, storage.ErrProtected):
		return tghelpers.SendMD(c, msgProtectedList)
	case errors.Is(err, purchase.ErrNotFound):
		return tghelpers.SendText(c, msgUnknownList)
	case errors.Is(err, purchase.ErrInvalidInput):
		return tghelpers.SendText(c, msgInvalidName)
	case errors.Is(err, purchase.ErrEmptyInput):
		return tghelpers.SendText(c, msgNothingToAdd)
	}

	logger.Error(ctx, "bot", "service.error",
		slog.String("err", err.Error()),
	)
	return tghelpers.SendText(c, msgStorageDown)
}
