package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
)

// OpsLogger mirrors notable events into a Telegram ops group, one forum
// topic per event class. A zero chat id disables it entirely; sends are
// best-effort and never fail the calling handler.
type OpsLogger struct {
	bot    *bot.Bot
	chatID int64

	topicError        int
	topicPayment      int
	topicRefund       int
	topicRegistration int
}

func NewOpsLogger(chatID int64, topicError, topicPayment, topicRefund, topicRegistration int) *OpsLogger {
	return &OpsLogger{
		chatID:            chatID,
		topicError:        topicError,
		topicPayment:      topicPayment,
		topicRefund:       topicRefund,
		topicRegistration: topicRegistration,
	}
}

// Bind attaches the bot once it exists. The logger is constructed before the
// bot because middleware depending on it is passed at bot construction.
func (l *OpsLogger) Bind(b *bot.Bot) {
	l.bot = b
}

func (l *OpsLogger) send(ctx context.Context, topic int, text string) {
	if l == nil || l.bot == nil || l.chatID == 0 {
		return
	}
	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.chatID,
		MessageThreadID: topic,
		Text:            text,
	})
	if err != nil {
		slog.Error("ops log send", "topic", topic, "error", err)
	}
}

func (l *OpsLogger) Error(ctx context.Context, userID int64, op string, err error) {
	l.send(ctx, l.topicError, fmt.Sprintf("❌ %s failed for user %d: %v", op, userID, err))
}

func (l *OpsLogger) Payment(ctx context.Context, userID int64, invoiceNumber string, amount int) {
	l.send(ctx, l.topicPayment, fmt.Sprintf("⭐ %d Stars from user %d, invoice %s", amount, userID, invoiceNumber))
}

func (l *OpsLogger) Refund(ctx context.Context, userID int64, chargeID string) {
	l.send(ctx, l.topicRefund, fmt.Sprintf("↩️ refund for user %d, charge %s", userID, chargeID))
}

func (l *OpsLogger) Registration(ctx context.Context, userID, telegramID int64) {
	l.send(ctx, l.topicRegistration, fmt.Sprintf("👤 new user %d (telegram %d)", userID, telegramID))
}
