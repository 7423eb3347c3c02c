package bot

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegohandler"
)

// requestMiddleware tags every update with a request ID carried by the context logger
func (b *Bot) requestMiddleware(bot *telego.Bot, update telego.Update, next telegohandler.Handler) {
	// Get initial context
	ctx := update.Context()

	logger := slog.Default().With("request_id", uuid.NewString(), "update_id", update.UpdateID)
	logger.Debug("bot: Update received",
		"has_message", update.Message != nil,
		"has_callback_query", update.CallbackQuery != nil,
	)

	update = update.WithContext(withLogger(ctx, logger))
	next(bot, update)
}
