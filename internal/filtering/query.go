package filtering

import (
	"context"
	"strings"

	"github.com/spigell/vacancy-bot/internal/catalog"
)

type queryFilter struct {
	query    string
	disabled bool
	reason   string
}

// NewQuery creates a filter that keeps entries with a title line containing
// the query or closely matching it.
func NewQuery(query string) Filter {
	return &queryFilter{query: NormalizeText(query)}
}

func (f *queryFilter) Name() string { return "query" }

func (f *queryFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *queryFilter) IsEnabled() bool { return !f.disabled }

func (f *queryFilter) Apply(_ context.Context, v *catalog.Entries) (*catalog.Entries, Step, error) {
	if f.query == "" {
		left := &catalog.Entries{}
		return left, stepOf(v, left), nil
	}

	left := v.Filter(f.matches)
	return left, stepOf(v, left), nil
}

// matches stops at the first matching line.
func (f *queryFilter) matches(e *catalog.Entry) bool {
	for _, line := range e.Lines() {
		line = NormalizeText(line)
		if line == "" {
			continue
		}

		if strings.Contains(line, f.query) || IsCloseMatch(f.query, line) {
			return true
		}
	}

	return false
}

func (f *queryFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"query": f.query},
	}
}
