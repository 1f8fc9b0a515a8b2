package catalog

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable is returned when the catalog source cannot be read.
var ErrUnavailable = errors.New("catalog unavailable")

// Row is one raw catalog record keyed by column header.
type Row map[string]any

// Source provides a fresh snapshot of the catalog on every call.
type Source interface {
	FetchSnapshot(ctx context.Context) ([]Row, error)
}

// FAQSource provides question/answer pairs shown next to the catalog.
type FAQSource interface {
	FetchQuestions(ctx context.Context) ([]Question, error)
}

type Question struct {
	Question string
	Answer   string
}

// Entry is one posting from the catalog snapshot. Title may hold several
// newline separated sub-titles.
type Entry struct {
	Title       string `mapstructure:"title"`
	HourlyRate  string `mapstructure:"hourly_rate"`
	ScheduleA   string `mapstructure:"schedule_a"`
	ScheduleB   string `mapstructure:"schedule_b"`
	Description string `mapstructure:"description"`
	Status      string `mapstructure:"status"`
}

// Lines returns the non-empty title lines, split on any line break.
func (e *Entry) Lines() []string {
	return strings.FieldsFunc(e.Title, isLineBreak)
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	default:
		return false
	}
}

type Entries struct {
	Items []*Entry
}

func (e *Entries) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Items)
}

func (e *Entries) Titles() []string {
	titles := make([]string, 0, e.Len())
	if e == nil {
		return titles
	}

	for _, entry := range e.Items {
		titles = append(titles, entry.Title)
	}

	return titles
}

// At returns the entry at position i.
func (e *Entries) At(i int) (*Entry, bool) {
	if i < 0 || i >= e.Len() {
		return nil, false
	}
	return e.Items[i], true
}

// Filter returns a new list with the entries accepted by keep, in the same order.
func (e *Entries) Filter(keep func(*Entry) bool) *Entries {
	kept := make([]*Entry, 0, e.Len())
	if e == nil {
		return &Entries{Items: kept}
	}

	for _, entry := range e.Items {
		if keep(entry) {
			kept = append(kept, entry)
		}
	}

	return &Entries{Items: kept}
}
