package services

import (
	"context"

	"github.com/fenilmodi00/meabot-backend/shared"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChatSender delivers a text message to a chat address. A nil error is the
// only delivery confirmation available.
type ChatSender interface {
	Send(ctx context.Context, chatID int64, text string, parseMode string) error
}

// TelegramAPI is the subset of the bot API used by the backend
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// TelegramSender implements ChatSender over the Telegram Bot API
type TelegramSender struct {
	api TelegramAPI
}

// NewTelegramSender wraps a bot API handle
func NewTelegramSender(api TelegramAPI) *TelegramSender {
	return &TelegramSender{api: api}
}

// Send posts text to chatID with the given parse mode
func (s *TelegramSender) Send(ctx context.Context, chatID int64, text string, parseMode string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	if _, err := s.api.Send(msg); err != nil {
		return shared.WrapError(err, shared.ErrorCategoryNetwork, "CHAT_SEND_FAILED",
			"TelegramSender", "send", shared.IsRetryableError(err))
	}
	return nil
}
