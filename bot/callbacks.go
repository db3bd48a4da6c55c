package bot

import (
	"fmt"

	"github.com/konflic/purchase-bot/core/storage"
	"github.com/konflic/purchase-bot/core/telegram/callbacks"
	"github.com/konflic/purchase-bot/core/telegram/format"
	tghelpers "github.com/konflic/purchase-bot/core/telegram/helpers"
	"github.com/konflic/purchase-bot/purchase"

	tele "gopkg.in/telebot.v4"
)

// cbSelect activates the list named in the button payload.
func (a *App) cbSelect(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	key := storage.SanitizeKey(callbacks.CallbackPayload(c))
	ok, err := a.svc.Exists(ctx, userID, key)
	if err != nil {
		return a.replyServiceError(c, err)
	}
	if !ok {
		return tghelpers.SendText(c, msgUnknownList)
	}

	a.fsm.SetActiveList(userID, key)
	return tghelpers.SendMD(c, fmt.Sprintf(msgListSelected, format.EscapeV1(key)), showItemsMarkup())
}

// cbRemove handles an item button press: strike first, remove when
// pressed again. The message is edited in place so the keyboard follows
// the list.
func (a *App) cbRemove(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	key := a.fsm.ActiveList(userID)

	index, err := callbacks.PayloadInt(c)
	if err != nil {
		return a.UnknownCallback()(c)
	}

	if _, _, err := a.svc.ToggleStruck(ctx, userID, key, index); err != nil {
		return a.replyServiceError(c, err)
	}

	items, err := a.svc.Items(ctx, userID, key)
	if err != nil {
		return a.replyServiceError(c, err)
	}
	text, markup := renderItems(key, items)
	if purchase.AllStruck(items) {
		text += "\n" + msgAllDone
	}
	return tghelpers.EditOrSendMD(c, text, markup)
}

// cbDeleteCompleted finishes a fully struck list. A named list is
// deleted outright; the protected default list is emptied instead.
func (a *App) cbDeleteCompleted(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	key := a.fsm.ActiveList(userID)

	if key == storage.DefaultKey {
		if _, err := a.svc.ClearStruck(ctx, userID, key); err != nil {
			return a.replyServiceError(c, err)
		}
		return tghelpers.SendText(c, msgCleared)
	}

	if err := a.svc.Delete(ctx, userID, key); err != nil {
		return a.replyServiceError(c, err)
	}
	a.fsm.SetActiveList(userID, storage.DefaultKey)
	return tghelpers.SendMD(c,
		fmt.Sprintf(msgListDeleted, format.EscapeV1(key))+"\n"+msgActiveReset)
}

// cbCancel ends the conversation from the cancel button under a prompt.
func (a *App) cbCancel(c tele.Context) error {
	a.fsm.ClearState(c.Sender().ID)
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		return err
	}
	return tghelpers.SendText(c, msgCanceled)
}

// cbLists re-sends the list enumeration.
func (a *App) cbLists(c tele.Context) error {
	return a.showLists(c)
}

// cbItems re-sends the active list view.
func (a *App) cbItems(c tele.Context) error {
	return a.handleListItems(c)
}
