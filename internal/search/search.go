// Package search is the read-only catalog index: it fetches a fresh snapshot
// on every call and narrows it with the filtering steps.
package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/catalog"
	"github.com/spigell/vacancy-bot/internal/filtering"
)

// ErrNoFAQ is returned by Questions when no FAQ source is configured.
var ErrNoFAQ = errors.New("faq source is not configured")

type Config struct {
	OpenStatuses []string
	// FilterSearchByStatus limits Search to open entries. ListOpen always filters.
	FilterSearchByStatus bool
	Columns              catalog.Columns
}

type Deps struct {
	Source catalog.Source
	FAQ    catalog.FAQSource
	Logger *zap.Logger
}

type Index struct {
	config *Config
	source catalog.Source
	faq    catalog.FAQSource
	logger *zap.Logger
}

func New(cfg *Config, deps *Deps) (*Index, error) {
	if cfg == nil {
		cfg = &Config{FilterSearchByStatus: true}
	}

	if deps == nil || deps.Source == nil {
		return nil, fmt.Errorf("catalog source is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Index{
		config: cfg,
		source: deps.Source,
		faq:    deps.FAQ,
		logger: logger,
	}, nil
}

// HasFAQ reports whether Questions can be served.
func (i *Index) HasFAQ() bool {
	return i.faq != nil
}

// ListOpen returns the open entries in source order.
func (i *Index) ListOpen(ctx context.Context) (*catalog.Entries, error) {
	return i.run(ctx, i.statusStep())
}

// Search returns the entries matching query in source order. An empty result is not an error.
func (i *Index) Search(ctx context.Context, query string) (*catalog.Entries, error) {
	status := i.statusStep()
	if !i.config.FilterSearchByStatus {
		status.Disable("search is configured without status filter")
	}

	return i.run(ctx, status, filtering.NewQuery(query))
}

// Questions returns the FAQ pairs from the FAQ source.
func (i *Index) Questions(ctx context.Context) ([]catalog.Question, error) {
	if i.faq == nil {
		return nil, ErrNoFAQ
	}

	questions, err := i.faq.FetchQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching questions: %w", catalog.ErrUnavailable, err)
	}

	return questions, nil
}

// Steps describes the filters applied by Search.
func (i *Index) Steps() []filtering.Status {
	status := i.statusStep()
	if !i.config.FilterSearchByStatus {
		status.Disable("search is configured without status filter")
	}
	return filtering.Describe([]filtering.Filter{status, filtering.NewQuery("")})
}

func (i *Index) statusStep() filtering.Filter {
	return filtering.NewStatus(i.config.OpenStatuses)
}

func (i *Index) run(ctx context.Context, steps ...filtering.Filter) (*catalog.Entries, error) {
	rows, err := i.source.FetchSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching snapshot: %w", catalog.ErrUnavailable, err)
	}

	entries, err := catalog.Decode(rows, i.config.Columns)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalog.ErrUnavailable, err)
	}

	i.logger.Debug("catalog snapshot fetched", zap.Int("rows", len(rows)), zap.Int("entries", entries.Len()))

	return filtering.Run(ctx, i.logger, steps, entries)
}
