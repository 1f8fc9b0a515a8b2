package filtering

import (
	"context"
	"strings"

	"github.com/spigell/vacancy-bot/internal/catalog"
)

// DefaultOpenStatus marks entries that accept applications.
const DefaultOpenStatus = "ОТКРЫТА"

type statusFilter struct {
	open     map[string]struct{}
	markers  []string
	disabled bool
	reason   string
}

// NewStatus creates a filter that keeps only entries with one of the open status markers.
func NewStatus(open []string) Filter {
	f := &statusFilter{open: make(map[string]struct{})}
	for _, marker := range open {
		normalized := NormalizeStatus(marker)
		if normalized == "" {
			continue
		}
		if _, ok := f.open[normalized]; !ok {
			f.open[normalized] = struct{}{}
			f.markers = append(f.markers, normalized)
		}
	}

	if len(f.markers) == 0 {
		f.open[DefaultOpenStatus] = struct{}{}
		f.markers = []string{DefaultOpenStatus}
	}

	return f
}

func (f *statusFilter) Name() string { return "status" }

func (f *statusFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *statusFilter) IsEnabled() bool { return !f.disabled }

// IsOpen reports whether the entry carries one of the open markers.
func (f *statusFilter) IsOpen(e *catalog.Entry) bool {
	_, ok := f.open[NormalizeStatus(e.Status)]
	return ok
}

func (f *statusFilter) Apply(_ context.Context, v *catalog.Entries) (*catalog.Entries, Step, error) {
	left := v.Filter(f.IsOpen)
	return left, stepOf(v, left), nil
}

func (f *statusFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"open": strings.Join(f.markers, ",")},
	}
}
