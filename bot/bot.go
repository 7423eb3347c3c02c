package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
)

var (
	ErrGetMe          = errors.New("cannot retrieve api user")
	ErrUpdatesChannel = errors.New("cannot get updates channel")
	ErrHandlerInit    = errors.New("cannot initialize handler")
)

// Bot feeds Telegram updates into the Dialogue
type Bot struct {
	api      *telego.Bot
	dialogue *Dialogue
}

func NewBot(api *telego.Bot, dialogue *Dialogue) *Bot {
	return &Bot{
		api:      api,
		dialogue: dialogue,
	}
}

// Run receives updates by long polling until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	botUser, err := b.api.GetMe()
	if err != nil {
		slog.Error("bot: Cannot retrieve api user", "error", err)

		return errors.Join(ErrGetMe, err)
	}

	slog.Info("bot: Running api as",
		"id", botUser.ID,
		"username", botUser.Username,
		"name", botUser.FirstName,
		"is_bot", botUser.IsBot,
	)

	updates, err := b.api.UpdatesViaLongPolling(nil)
	if err != nil {
		slog.Error("bot: Cannot get update channel", "error", err)

		return errors.Join(ErrUpdatesChannel, err)
	}

	bh, err := th.NewBotHandler(b.api, updates)
	if err != nil {
		slog.Error("bot: Cannot initialize bot handler", "error", err)

		return errors.Join(ErrHandlerInit, err)
	}

	defer bh.Stop()
	defer b.api.StopLongPolling()

	bh.Use(b.requestMiddleware)

	bh.Handle(b.messageHandler, th.AnyMessage())
	bh.Handle(b.callbackHandler, th.AnyCallbackQuery())

	go bh.Start()

	<-ctx.Done()
	slog.Info("bot: Stopping")

	return nil
}

func (b *Bot) messageHandler(_ *telego.Bot, update telego.Update) {
	msg := update.Message
	if msg.From == nil || msg.Chat.Type != telego.ChatTypePrivate {
		return
	}

	b.dialogue.Handle(update.Context(), Event{
		UserID:    msg.From.ID,
		ChatID:    msg.Chat.ID,
		Username:  msg.From.Username,
		FirstName: msg.From.FirstName,
		Text:      msg.Text,
	})
}

func (b *Bot) callbackHandler(bot *telego.Bot, update telego.Update) {
	query := update.CallbackQuery

	if err := bot.AnswerCallbackQuery(tu.CallbackQuery(query.ID)); err != nil {
		loggerFrom(update.Context()).Warn("bot: Cannot answer callback query", "error", err)
	}

	// The bot only talks in private chats where the chat ID is the user ID
	b.dialogue.Handle(update.Context(), Event{
		UserID:    query.From.ID,
		ChatID:    query.From.ID,
		Username:  query.From.Username,
		FirstName: query.From.FirstName,
		Data:      query.Data,
		IsButton:  true,
	})
}
