package messenger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

var ErrSendFailed = errors.New("cannot send message")

// TelegramSender sends replies through the Telegram Bot API
type TelegramSender struct {
	api *telego.Bot
}

func NewTelegramSender(api *telego.Bot) *TelegramSender {
	return &TelegramSender{api: api}
}

func (s *TelegramSender) Send(ctx context.Context, chatID int64, reply Reply) error {
	message := SendParams(chatID, reply)

	_, err := s.api.SendMessage(message)
	if err != nil {
		// Format: "telego: sendMessage: api: 429 \"Too Many Requests: retry after 5\", migrate to chat ID: 0, retry after: 5"
		if retryAfter := parseRetryAfter(err); retryAfter > 0 {
			slog.Debug("messenger: API error", "error", err.Error())
			slog.Info("messenger: Rate limit hit, waiting", "seconds", retryAfter)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(retryAfter) * time.Second):
			}

			_, err = s.api.SendMessage(message)
			if err == nil {
				slog.Info("messenger: Message sent successfully after rate limit wait")
			}
		}
	}
	if err != nil {
		slog.Error("messenger: Failed to send message", "error", err, "chat_id", chatID, "text_length", len(reply.Text))
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	slog.Debug("messenger: Message sent successfully", "chat_id", chatID)
	return nil
}

// SendParams converts a reply into Bot API parameters
func SendParams(chatID int64, reply Reply) *telego.SendMessageParams {
	message := tu.Message(tu.ID(chatID), reply.Text)

	switch {
	case len(reply.Buttons) > 0:
		message = message.WithReplyMarkup(inlineKeyboard(reply.Buttons))
	case len(reply.Menu) > 0:
		message = message.WithReplyMarkup(replyKeyboard(reply.Menu))
	case reply.RemoveMenu:
		message = message.WithReplyMarkup(&telego.ReplyKeyboardRemove{RemoveKeyboard: true})
	}

	return message
}

func inlineKeyboard(rows [][]Button) *telego.InlineKeyboardMarkup {
	keyboard := make([][]telego.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]telego.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, telego.InlineKeyboardButton{
				Text:         b.Text,
				CallbackData: b.Data,
			})
		}
		keyboard = append(keyboard, buttons)
	}

	return &telego.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}

func replyKeyboard(rows [][]string) *telego.ReplyKeyboardMarkup {
	keyboard := make([][]telego.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]telego.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, telego.KeyboardButton{Text: label})
		}
		keyboard = append(keyboard, buttons)
	}

	return &telego.ReplyKeyboardMarkup{
		Keyboard:       keyboard,
		ResizeKeyboard: true,
	}
}

// parseRetryAfter extracts the flood-wait delay in seconds from a Bot API error
func parseRetryAfter(err error) int {
	if err == nil || !strings.Contains(err.Error(), "Too Many Requests") {
		return 0
	}

	parts := strings.Split(err.Error(), "retry after: ")
	if len(parts) != 2 {
		return 0
	}

	var retryAfter int
	if _, scanErr := fmt.Sscanf(parts[1], "%d", &retryAfter); scanErr != nil {
		return 0
	}
	return retryAfter
}
