package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/spigell/vacancy-bot/internal/session"
)

const (
	callbackList      = "find_jobs"
	callbackQuestions = "questions"
	callbackBack      = "back"
	callbackCancel    = "cancel"
	callbackApply     = "apply_"
)

// Translate turns an update into a session event. ok is false for updates the
// bot does not react to.
func Translate(update tgbotapi.Update) (chatID int64, ev session.Event, ok bool) {
	switch {
	case update.CallbackQuery != nil:
		return translateCallback(update.CallbackQuery)
	case update.Message != nil:
		return translateMessage(update.Message)
	default:
		return 0, session.Event{}, false
	}
}

func translateMessage(msg *tgbotapi.Message) (int64, session.Event, bool) {
	if msg.From == nil || msg.Chat == nil {
		return 0, session.Event{}, false
	}

	ev := eventFor(msg.From)

	if msg.IsCommand() {
		switch msg.Command() {
		case "jobs":
			ev.Kind = session.EventList
		case "cancel":
			ev.Kind = session.EventCancel
		case "questions":
			ev.Kind = session.EventQuestions
		default:
			ev.Kind = session.EventStart
		}
		return msg.Chat.ID, ev, true
	}

	if strings.TrimSpace(msg.Text) == "" {
		return 0, session.Event{}, false
	}

	ev.Kind = session.EventText
	ev.Text = msg.Text

	return msg.Chat.ID, ev, true
}

func translateCallback(cb *tgbotapi.CallbackQuery) (int64, session.Event, bool) {
	if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return 0, session.Event{}, false
	}

	ev := eventFor(cb.From)

	switch data := cb.Data; {
	case data == callbackList:
		ev.Kind = session.EventList
	case data == callbackQuestions:
		ev.Kind = session.EventQuestions
	case data == callbackBack:
		ev.Kind = session.EventStart
	case data == callbackCancel:
		ev.Kind = session.EventCancel
	case strings.HasPrefix(data, callbackApply):
		ev.Kind = session.EventSelect
		index, err := strconv.Atoi(strings.TrimPrefix(data, callbackApply))
		if err != nil {
			index = -1
		}
		ev.Index = index
	default:
		return 0, session.Event{}, false
	}

	return cb.Message.Chat.ID, ev, true
}

func eventFor(user *tgbotapi.User) session.Event {
	return session.Event{
		UserID: strconv.FormatInt(user.ID, 10),
		Handle: user.UserName,
	}
}

// Render builds the outgoing message for a prompt. Each action gets its own
// keyboard row.
func Render(chatID int64, p session.Prompt) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, p.Text)
	if p.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}

	if len(p.Actions) == 0 {
		return msg
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(p.Actions))
	for _, a := range p.Actions {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(a.Label, callbackData(a)),
		))
	}
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)

	return msg
}

func callbackData(a session.Action) string {
	switch a.Kind {
	case session.ActionSelect:
		return callbackApply + strconv.Itoa(a.Index)
	case session.ActionList:
		return callbackList
	case session.ActionQuestions:
		return callbackQuestions
	case session.ActionBack:
		return callbackBack
	default:
		return callbackCancel
	}
}
