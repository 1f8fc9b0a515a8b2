package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/vacancy-bot/internal/session"
)

type fakeAPI struct {
	updates chan tgbotapi.Update

	mu        sync.Mutex
	sent      []tgbotapi.MessageConfig
	requests  int
	failFirst bool
	stopped   bool
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg := c.(tgbotapi.MessageConfig)
	if f.failFirst && msg.ParseMode != "" {
		return tgbotapi.Message{}, errors.New("can't parse entities")
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

type echoHandler struct {
	mu     sync.Mutex
	events []session.Event
}

func (h *echoHandler) Handle(_ context.Context, ev session.Event) []session.Prompt {
	h.mu.Lock()
	h.events = append(h.events, ev)
	h.mu.Unlock()

	return []session.Prompt{{Text: ev.Kind.String() + ":" + ev.Text, Markdown: ev.Kind == session.EventText}}
}

func runBot(t *testing.T, a *fakeAPI, h Handler) (context.CancelFunc, chan error) {
	t.Helper()

	bot, err := newBot(a, 0, &Deps{Handler: h})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	return cancel, done
}

func TestBotRoutesUpdatesInOrder(t *testing.T) {
	a := &fakeAPI{updates: make(chan tgbotapi.Update)}
	h := &echoHandler{}
	cancel, done := runBot(t, a, h)

	a.updates <- textUpdate("/start")
	a.updates <- callbackUpdate("find_jobs")
	a.updates <- textUpdate("водитель")

	require.Eventually(t, func() bool { return len(a.messages()) == 3 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	sent := a.messages()
	assert.Equal(t, "start:", sent[0].Text)
	assert.Equal(t, "list:", sent[1].Text)
	assert.Equal(t, "text:водитель", sent[2].Text)
	assert.Equal(t, 1, a.requests)
	assert.True(t, a.stopped)
}

func TestBotFallsBackToPlainText(t *testing.T) {
	a := &fakeAPI{updates: make(chan tgbotapi.Update), failFirst: true}
	cancel, done := runBot(t, a, &echoHandler{})

	a.updates <- textUpdate("оператор_чпу")

	require.Eventually(t, func() bool { return len(a.messages()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Empty(t, a.messages()[0].ParseMode)
}

func TestBotFailsWhenUpdatesClose(t *testing.T) {
	a := &fakeAPI{updates: make(chan tgbotapi.Update)}
	cancel, done := runBot(t, a, &echoHandler{})
	defer cancel()

	close(a.updates)
	assert.Error(t, <-done)
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(&Config{}, &Deps{Handler: &echoHandler{}})
	assert.Error(t, err)

	_, err = newBot(&fakeAPI{}, 0, &Deps{})
	assert.Error(t, err)
}
