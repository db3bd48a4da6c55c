package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/konflic/purchase-bot/core/storage"
	"github.com/konflic/purchase-bot/core/telegram/format"
	"github.com/konflic/purchase-bot/purchase"
	"github.com/konflic/purchase-bot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

const (
	cbSelectList      = "select_list"
	cbRemoveItem      = "remove_item"
	cbDeleteCompleted = "delete_completed_list"
	cbShowLists       = "show_lists"
	cbShowItems       = "show_items"
	cbCancelDialog    = "cancel_dialog"
)

const (
	listButtonsPerRow = 2
	itemButtonsPerRow = 3
)

// renderLists builds the enumeration text and a select keyboard,
// two list buttons per row.
func renderLists(keys []string, active string) (string, *tele.ReplyMarkup) {
	var b strings.Builder
	b.WriteString("Ваши списки:\n")
	for i, key := range keys {
		marker := "  "
		if key == active {
			marker = "▶ "
		}
		fmt.Fprintf(&b, "%s%d. %s\n", marker, i+1, format.EscapeV1(key))
	}

	btns := make([]keyboard.InlineBtn, 0, len(keys))
	for _, key := range keys {
		btns = append(btns, keyboard.InlineBtn{
			Text:   key,
			Unique: cbSelectList,
			Data:   key,
		})
	}
	return b.String(), keyboard.InlineButtonsNPerRow(btns, listButtonsPerRow)
}

// renderItems builds the list view: numbered items with struck entries
// wrapped in tildes, item buttons three per row, plus service buttons.
func renderItems(key string, items []storage.Item) (string, *tele.ReplyMarkup) {
	var b strings.Builder
	fmt.Fprintf(&b, "Список *%s*:\n", format.EscapeV1(key))
	if len(items) == 0 {
		return fmt.Sprintf(msgEmptyList, format.EscapeV1(key)), listServiceMarkup(false)
	}
	for i, it := range items {
		text := format.EscapeV1(it.Text)
		if it.Struck {
			text = "~" + text + "~"
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, text)
	}

	btns := make([]keyboard.InlineBtn, 0, len(items))
	for i, it := range items {
		label := it.Text
		if it.Struck {
			label = "✓ " + label
		}
		btns = append(btns, keyboard.InlineBtn{
			Text:   label,
			Unique: cbRemoveItem,
			Data:   strconv.Itoa(i),
		})
	}
	markup := keyboard.InlineButtonsNPerRow(btns, itemButtonsPerRow)

	service := listServiceMarkup(purchase.AllStruck(items))
	markup.InlineKeyboard = append(markup.InlineKeyboard, service.InlineKeyboard...)
	return b.String(), markup
}

// showItemsMarkup offers a shortcut to open the freshly selected list.
func showItemsMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{{
		Text:   btnShowItems,
		Unique: cbShowItems,
	}})
}

// promptOptions attaches a cancel button to a conversation prompt.
func promptOptions() *tele.SendOptions {
	return &tele.SendOptions{ReplyMarkup: keyboard.SingleCancelMarkup(cbCancelDialog)}
}

func listServiceMarkup(allStruck bool) *tele.ReplyMarkup {
	rows := [][]keyboard.InlineBtn{}
	if allStruck {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   btnDeleteCompleted,
			Unique: cbDeleteCompleted,
		}})
	}
	rows = append(rows, []keyboard.InlineBtn{{
		Text:   btnShowLists,
		Unique: cbShowLists,
	}})
	return keyboard.InlineButtonsRows(rows...)
}
