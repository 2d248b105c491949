// Package telegram holds small helpers around the bot API: keyboard
// construction, long-message splitting, document sending and the ops-channel
// logger.
package telegram

import (
	"github.com/go-telegram/bot/models"
	"github.com/mkalvans/invoicebot/internal/config"
	"github.com/mkalvans/invoicebot/internal/format"
)

// Button builds one inline callback button, truncating the label so the
// keyboard stays readable with long client or product names.
func Button(label, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         format.Truncate(label, config.KeyboardLabelLen),
		CallbackData: data,
	}
}

// Rows stacks buttons one per row, the common layout for selection lists.
func Rows(buttons ...models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []models.InlineKeyboardButton{b})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// Keyboard builds a markup from explicit rows.
func Keyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// Row groups buttons side by side.
func Row(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}
