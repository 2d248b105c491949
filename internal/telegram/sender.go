package telegram

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/mkalvans/invoicebot/internal/config"
)

// SplitMessage cuts text into chunks that fit a single Telegram message,
// preferring to break at a newline so lists stay whole.
func SplitMessage(text string) []string {
	if len(text) <= config.MaxTelegramMessageLen {
		return []string{text}
	}

	var parts []string
	for len(text) > config.MaxTelegramMessageLen {
		cut := config.MaxTelegramMessageLen
		if idx := lastNewline(text[:cut]); idx > 0 {
			cut = idx
		}
		parts = append(parts, text[:cut])
		text = text[cut:]
		if len(text) > 0 && text[0] == '\n' {
			text = text[1:]
		}
	}
	if len(text) > 0 {
		parts = append(parts, text)
	}
	return parts
}

func lastNewline(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' {
			return i
		}
	}
	return -1
}

// SendText sends a message, splitting when it exceeds the Telegram limit.
func SendText(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	for _, part := range SplitMessage(text) {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   part,
		})
		if err != nil {
			slog.Error("send message", "chat_id", chatID, "error", err)
			return
		}
	}
}

// SendTextWithKeyboard sends a single message with an inline keyboard.
func SendTextWithKeyboard(ctx context.Context, b *bot.Bot, chatID int64, text string, kb *models.InlineKeyboardMarkup) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		slog.Error("send message with keyboard", "chat_id", chatID, "error", err)
	}
}

// SendDocument uploads a file from memory into the chat.
func SendDocument(ctx context.Context, b *bot.Bot, chatID int64, filename string, data []byte, caption string) error {
	_, err := b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: filename,
			Data:     bytes.NewReader(data),
		},
		Caption: caption,
	})
	return err
}
