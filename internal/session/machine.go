package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/catalog"
	"github.com/spigell/vacancy-bot/internal/logger"
	"github.com/spigell/vacancy-bot/internal/search"
	"github.com/spigell/vacancy-bot/internal/submit"
	"github.com/spigell/vacancy-bot/internal/utils"
)

const maxLoggedTextRunes = 64

// Catalog is the read-only view of the postings.
type Catalog interface {
	ListOpen(ctx context.Context) (*catalog.Entries, error)
	Search(ctx context.Context, query string) (*catalog.Entries, error)
	Questions(ctx context.Context) ([]catalog.Question, error)
	HasFAQ() bool
}

type Submitter interface {
	Submit(ctx context.Context, app submit.Application) (submit.Record, error)
}

type Config struct {
	NamePattern  string
	PhonePattern string
	SessionTTL   time.Duration
	Messages     *Messages
}

type Deps struct {
	Catalog   Catalog
	Submitter Submitter
	Logger    *zap.Logger
}

// Machine drives every user's conversation. Events of one user are applied
// one at a time; events of different users run in parallel.
//
// A selection always refers to the latest search or listing of that user,
// so a newer search silently replaces the candidates an older message showed.
type Machine struct {
	catalog   Catalog
	submitter Submitter
	validator *Validator
	store     *Store
	messages  Messages
	logger    *zap.Logger
}

func New(cfg *Config, deps *Deps) (*Machine, error) {
	if cfg == nil {
		cfg = &Config{SessionTTL: DefaultTTL}
	}

	if deps == nil || deps.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}

	if deps.Submitter == nil {
		return nil, fmt.Errorf("submitter is required")
	}

	validator, err := NewValidator(cfg.NamePattern, cfg.PhonePattern)
	if err != nil {
		return nil, err
	}

	messages := DefaultMessages()
	if cfg.Messages != nil {
		messages = *cfg.Messages
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Machine{
		catalog:   deps.Catalog,
		submitter: deps.Submitter,
		validator: validator,
		store:     NewStore(cfg.SessionTTL),
		messages:  messages,
		logger:    log,
	}, nil
}

// Session returns a copy of the user's current session.
func (m *Machine) Session(userID string) (Session, bool) {
	return m.store.Snapshot(userID)
}

// Handle applies ev to the user's session and returns the prompts to send back.
func (m *Machine) Handle(ctx context.Context, ev Event) []Prompt {
	sess, release := m.store.Acquire(ev.UserID)
	defer release()

	log := logger.WithSessionFields(m.logger, ev.UserID, sess.State.String(), ev.Kind.String())

	var prompts []Prompt
	switch ev.Kind {
	case EventStart:
		prompts = m.greet()
	case EventCancel:
		prompts = m.cancel(log, sess)
	case EventList:
		prompts = m.list(ctx, log, sess)
	case EventQuestions:
		prompts = m.questions(ctx, log)
	case EventSelect:
		prompts = m.selectEntry(log, sess, ev.Index)
	case EventText:
		prompts = m.text(ctx, log, sess, ev)
	default:
		log.Warn("unsupported event")
	}

	log.Debug("event handled", zap.Stringer("next_state", sess.State), zap.Int("prompts", len(prompts)))

	return prompts
}

func (m *Machine) text(ctx context.Context, log *zap.Logger, sess *Session, ev Event) []Prompt {
	switch sess.State {
	case StateAwaitingFullName:
		return m.collectName(log, sess, ev.Text)
	case StateAwaitingPhone:
		return m.collectPhone(ctx, log, sess, ev)
	case StateAwaitingSelection:
		// free text while choosing starts over with a new search
		sess.Reset()
	}

	return m.search(ctx, log, sess, ev.Text)
}

func (m *Machine) greet() []Prompt {
	actions := []Action{{Kind: ActionList, Label: m.messages.ButtonList}}
	if m.catalog.HasFAQ() {
		actions = append(actions, Action{Kind: ActionQuestions, Label: m.messages.ButtonQuestions})
	}

	return []Prompt{{Text: m.messages.Greeting, Actions: actions}}
}

func (m *Machine) cancel(log *zap.Logger, sess *Session) []Prompt {
	sess.Reset()
	log.Info("session cancelled")

	return []Prompt{{
		Text:    m.messages.Cancelled,
		Actions: []Action{{Kind: ActionList, Label: m.messages.ButtonList}},
	}}
}

func (m *Machine) search(ctx context.Context, log *zap.Logger, sess *Session, text string) []Prompt {
	query := utils.TruncateForLog(text, maxLoggedTextRunes)

	results, err := m.catalog.Search(ctx, text)
	if err != nil {
		log.Error("searching catalog", zap.String("query", query), zap.Error(err))
		return []Prompt{m.unavailable()}
	}

	if results.Len() == 0 {
		log.Info("nothing found", zap.String("query", query), zap.Error(ErrNotFound))
		return []Prompt{{
			Text:    m.messages.NotFound,
			Actions: []Action{{Kind: ActionList, Label: m.messages.ButtonList}},
		}}
	}

	sess.Candidates = results.Items
	sess.State = StateAwaitingSelection

	log.Info("search matched", zap.String("query", query), zap.Int("matches", results.Len()))

	return m.cards(results)
}

func (m *Machine) list(ctx context.Context, log *zap.Logger, sess *Session) []Prompt {
	entries, err := m.catalog.ListOpen(ctx)
	if err != nil {
		log.Error("listing catalog", zap.Error(err))
		return []Prompt{m.unavailable()}
	}

	if entries.Len() == 0 {
		return []Prompt{{Text: m.messages.NoOpenVacancies}}
	}

	sess.Candidates = entries.Items

	return m.cards(entries)
}

func (m *Machine) questions(ctx context.Context, log *zap.Logger) []Prompt {
	questions, err := m.catalog.Questions(ctx)
	if errors.Is(err, search.ErrNoFAQ) {
		return []Prompt{{Text: m.messages.NoQuestions}}
	}

	if err != nil {
		log.Error("fetching questions", zap.Error(err))
		return []Prompt{m.unavailable()}
	}

	if len(questions) == 0 {
		return []Prompt{{Text: m.messages.NoQuestions}}
	}

	var b strings.Builder
	b.WriteString(m.messages.QuestionsHeader)
	for _, q := range questions {
		b.WriteString(fill(m.messages.QuestionItem,
			"{question}", escape(q.Question),
			"{answer}", escape(q.Answer),
		))
	}

	return []Prompt{{Text: strings.TrimRight(b.String(), "\n"), Markdown: true}}
}

func (m *Machine) selectEntry(log *zap.Logger, sess *Session, index int) []Prompt {
	if index < 0 || index >= len(sess.Candidates) {
		log.Info("selection out of range",
			zap.Int("index", index),
			zap.Int("candidates", len(sess.Candidates)),
			zap.Error(ErrNotFound),
		)
		return []Prompt{{Text: m.messages.SelectionNotFound}}
	}

	entry := sess.Candidates[index]
	sess.SelectedVacancy = entry.Title
	sess.FullName = ""
	sess.Phone = ""
	sess.State = StateAwaitingFullName

	log.Info("vacancy selected", zap.Int("index", index), zap.String("vacancy", entry.Title))

	description := ""
	if d := strings.TrimSpace(entry.Description); d != "" {
		description = fmt.Sprintf("\n\n%s:\n%s", m.messages.DescriptionLabel, escape(d))
	}

	return []Prompt{{
		Text: fill(m.messages.Selected,
			"{vacancy}", escape(entry.Title),
			"{description}", description,
		),
		Markdown: true,
		Actions:  []Action{{Kind: ActionCancel, Label: m.messages.ButtonCancel}},
	}}
}

func (m *Machine) collectName(log *zap.Logger, sess *Session, text string) []Prompt {
	name, err := m.validator.FullName(text)
	if err != nil {
		log.Info("rejected full name", zap.Error(err))
		return []Prompt{{
			Text:    m.messages.InvalidName,
			Actions: []Action{{Kind: ActionCancel, Label: m.messages.ButtonCancel}},
		}}
	}

	sess.FullName = name
	sess.State = StateAwaitingPhone

	return []Prompt{{
		Text:    m.messages.AskPhone,
		Actions: []Action{{Kind: ActionCancel, Label: m.messages.ButtonCancel}},
	}}
}

// collectPhone finishes the intake. The session is reset whether or not the
// submission succeeds; on failure the collected data is echoed back to the
// user and logged so it is not lost silently.
func (m *Machine) collectPhone(ctx context.Context, log *zap.Logger, sess *Session, ev Event) []Prompt {
	phone, err := m.validator.Phone(ev.Text)
	if err != nil {
		log.Info("rejected phone", zap.Error(err))
		return []Prompt{{
			Text:    m.messages.InvalidPhone,
			Actions: []Action{{Kind: ActionCancel, Label: m.messages.ButtonCancel}},
		}}
	}

	sess.Phone = phone
	app := submit.Application{
		FullName:     sess.FullName,
		Phone:        sess.Phone,
		VacancyTitle: sess.SelectedVacancy,
		Handle:       ev.Handle,
	}
	sess.Reset()

	record, err := m.submitter.Submit(ctx, app)
	summary := []string{
		"{vacancy}", escape(app.VacancyTitle),
		"{name}", escape(app.FullName),
		"{phone}", escape(app.Phone),
	}

	if err != nil {
		log.Error("application was not submitted",
			zap.Error(err),
			zap.Time("submitted_at", record.Timestamp),
			zap.String("full_name", record.FullName),
			zap.String("phone", record.Phone),
			zap.String("vacancy", record.VacancyTitle),
			zap.String("handle", record.SubmitterHandle),
		)
		return []Prompt{{
			Text:     fill(m.messages.SubmissionFailed, summary...),
			Markdown: true,
			Actions:  []Action{{Kind: ActionList, Label: m.messages.ButtonList}},
		}}
	}

	log.Info("application accepted", zap.String("vacancy", record.VacancyTitle))

	return []Prompt{{Text: fill(m.messages.Submitted, summary...), Markdown: true}}
}

func (m *Machine) unavailable() Prompt {
	return Prompt{
		Text:    m.messages.CatalogUnavailable,
		Actions: []Action{{Kind: ActionList, Label: m.messages.ButtonList}},
	}
}

func (m *Machine) cards(entries *catalog.Entries) []Prompt {
	prompts := make([]Prompt, 0, entries.Len())
	for i, entry := range entries.Items {
		prompts = append(prompts, Prompt{
			Text:     m.card(entry),
			Markdown: true,
			Actions: []Action{
				{Kind: ActionSelect, Label: m.messages.ButtonApply, Index: i},
				{Kind: ActionBack, Label: m.messages.ButtonBack},
			},
		})
	}
	return prompts
}

func (m *Machine) card(e *catalog.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📌 *%s*\n\n", escape(e.Title))
	fmt.Fprintf(&b, "%s: %s\n", m.messages.RateLabel, escape(e.HourlyRate))
	fmt.Fprintf(&b, "%s: %s\n", m.messages.ScheduleALabel, escape(e.ScheduleA))
	fmt.Fprintf(&b, "%s: %s\n", m.messages.ScheduleBLabel, escape(e.ScheduleB))
	fmt.Fprintf(&b, "%s: %s", m.messages.StatusLabel, escape(e.Status))

	if d := strings.TrimSpace(e.Description); d != "" {
		fmt.Fprintf(&b, "\n\n%s:\n%s", m.messages.DescriptionLabel, escape(d))
	}

	return b.String()
}
