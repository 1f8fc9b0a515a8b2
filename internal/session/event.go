package session

type EventKind int

const (
	EventText EventKind = iota
	EventSelect
	EventCancel
	EventList
	EventStart
	EventQuestions
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventSelect:
		return "select"
	case EventCancel:
		return "cancel"
	case EventList:
		return "list"
	case EventStart:
		return "start"
	case EventQuestions:
		return "questions"
	default:
		return "unknown"
	}
}

// Event is a normalized inbound message from the chat transport.
type Event struct {
	UserID string
	// Handle is the display handle of the user, if any.
	Handle string
	Kind   EventKind
	Text   string
	// Index is the position selected by an EventSelect.
	Index int
}

type ActionKind int

const (
	ActionSelect ActionKind = iota
	ActionList
	ActionCancel
	ActionBack
	ActionQuestions
)

// Action is an interactive control attached to a prompt.
type Action struct {
	Kind  ActionKind
	Label string
	// Index is the candidate position for ActionSelect.
	Index int
}

// Prompt is an outbound message. Markdown marks text using Telegram's legacy
// Markdown; interpolated values are already escaped.
type Prompt struct {
	Text     string
	Markdown bool
	Actions  []Action
}
