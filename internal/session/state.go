package session

import "github.com/spigell/vacancy-bot/internal/catalog"

// State is the step of the intake conversation.
type State int

const (
	StateIdle State = iota
	StateAwaitingSelection
	StateAwaitingFullName
	StateAwaitingPhone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingSelection:
		return "awaiting_selection"
	case StateAwaitingFullName:
		return "awaiting_full_name"
	case StateAwaitingPhone:
		return "awaiting_phone"
	default:
		return "unknown"
	}
}

// Session is the conversation state of a single user.
type Session struct {
	UserID string
	State  State
	// Candidates is the latest search or listing; selections index into it.
	Candidates      []*catalog.Entry
	SelectedVacancy string
	FullName        string
	Phone           string
}

// Reset returns the session to idle and clears every collected field.
func (s *Session) Reset() {
	*s = Session{UserID: s.UserID, State: StateIdle}
}

func (s *Session) clone() Session {
	c := *s
	if s.Candidates != nil {
		c.Candidates = append([]*catalog.Entry(nil), s.Candidates...)
	}
	return c
}
