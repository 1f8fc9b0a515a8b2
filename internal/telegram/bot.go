// Package telegram connects the session machine to the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/dispatch"
	"github.com/spigell/vacancy-bot/internal/session"
)

const DefaultPollTimeout = 60

// Handler reacts to one event of a user.
type Handler interface {
	Handle(ctx context.Context, ev session.Event) []session.Prompt
}

type api interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Config struct {
	Token string
	// PollTimeout is the long polling timeout in seconds.
	PollTimeout int
	Debug       bool
}

type Deps struct {
	Handler Handler
	Logger  *zap.Logger
}

type Bot struct {
	api         api
	handler     Handler
	pollTimeout int
	logger      *zap.Logger
}

func New(cfg *Config, deps *Deps) (*Bot, error) {
	if cfg == nil || strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is required")
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	botAPI.Debug = cfg.Debug

	bot, err := newBot(botAPI, cfg.PollTimeout, deps)
	if err != nil {
		return nil, err
	}

	bot.logger.Info("authorized", zap.String("bot", botAPI.Self.UserName))

	return bot, nil
}

func newBot(a api, pollTimeout int, deps *Deps) (*Bot, error) {
	if deps == nil || deps.Handler == nil {
		return nil, errors.New("handler is required")
	}

	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Bot{
		api:         a,
		handler:     deps.Handler,
		pollTimeout: pollTimeout,
		logger:      logger,
	}, nil
}

// Run polls for updates until ctx is cancelled. Updates of one user are
// handled in arrival order; queued updates are finished before Run returns.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(u)
	workers := dispatch.New(b.logger)
	defer workers.Close()

	// jobs already accepted are finished even after shutdown starts
	jobCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("stopped receiving updates")
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram updates channel closed")
			}
			b.route(jobCtx, workers, update)
		}
	}
}

func (b *Bot) route(ctx context.Context, workers *dispatch.Dispatcher, update tgbotapi.Update) {
	if cb := update.CallbackQuery; cb != nil {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.logger.Warn("answering callback", zap.Error(err))
		}
	}

	chatID, ev, ok := Translate(update)
	if !ok {
		return
	}

	err := workers.Submit(ev.UserID, func() {
		for _, p := range b.handler.Handle(ctx, ev) {
			b.send(chatID, p)
		}
	})
	if err != nil {
		b.logger.Warn("dropping update", zap.String("user_id", ev.UserID), zap.Error(err))
	}
}

func (b *Bot) send(chatID int64, p session.Prompt) {
	msg := Render(chatID, p)

	_, err := b.api.Send(msg)
	if err == nil {
		return
	}

	if msg.ParseMode != "" {
		// catalog text may still break Markdown; fall back to plain text
		b.logger.Warn("sending markdown message, retrying as plain text",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		msg.ParseMode = ""
		if _, err = b.api.Send(msg); err == nil {
			return
		}
	}

	b.logger.Error("sending message", zap.Int64("chat_id", chatID), zap.Error(err))
}
