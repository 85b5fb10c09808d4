package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Min interval between two messages to the same chat, below Telegram's ~30/min limit.
const telegramSendInterval = 2 * time.Second

// Telegram rejects messages longer than this many UTF-16 units.
const telegramMaxMessage = 4096

// messageSender is the part of *tgbotapi.BotAPI the sink uses.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink posts reports to a Telegram chat.
type TelegramSink struct {
	bot      messageSender
	chatID   int64
	interval time.Duration

	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegramSink connects to the bot API with token and posts to chatID.
func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = false
	slog.Info("Telegram sink initialized", "bot", bot.Self.UserName, "chat_id", chatID)
	return newTelegramSink(bot, chatID, telegramSendInterval), nil
}

func newTelegramSink(bot messageSender, chatID int64, interval time.Duration) *TelegramSink {
	return &TelegramSink{bot: bot, chatID: chatID, interval: interval}
}

// Send implements Sink. Sends are serialised and spaced by the send interval.
func (t *TelegramSink) Send(ctx context.Context, a Alert) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if wait := t.interval - time.Since(t.lastSend); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	msg := tgbotapi.NewMessage(t.chatID, truncate(a.Report, telegramMaxMessage))
	_, err := t.bot.Send(msg)
	t.lastSend = time.Now()
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// truncate cuts s to at most n UTF-16 units, ending in "..." when cut.
func truncate(s string, n int) string {
	units := 0
	for _, r := range s {
		units += utf16.RuneLen(r)
	}
	if units <= n {
		return s
	}

	units = 0
	for i, r := range s {
		if units+utf16.RuneLen(r) > n-3 {
			return s[:i] + "..."
		}
		units += utf16.RuneLen(r)
	}
	return s
}
