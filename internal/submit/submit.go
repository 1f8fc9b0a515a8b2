package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeLayout = "2006-01-02 15:04:05"
	DefaultNoHandle   = "без username"
)

// ErrSubmissionFailed is returned when the sink rejects or cannot receive a record.
var ErrSubmissionFailed = errors.New("submission failed")

// Sink is the append-only store receiving completed applications.
type Sink interface {
	AppendRecord(ctx context.Context, row []string) error
}

// Application is the data collected by a finished intake.
type Application struct {
	FullName     string
	Phone        string
	VacancyTitle string
	// Handle is the user's chat handle, empty when the user has none.
	Handle string
}

// Record is an application stamped at submission time.
type Record struct {
	Timestamp       time.Time
	FullName        string
	Phone           string
	VacancyTitle    string
	SubmitterHandle string
}

// Row returns the five positional sink fields.
func (r Record) Row(layout string) []string {
	return []string{
		r.Timestamp.Format(layout),
		r.FullName,
		r.Phone,
		r.VacancyTitle,
		r.SubmitterHandle,
	}
}

type Config struct {
	TimeLayout string
	Location   *time.Location
	// NoHandle replaces a missing handle. It is never empty.
	NoHandle string
}

type Submitter struct {
	sink   Sink
	config Config
	now    func() time.Time
	logger *zap.Logger
}

func New(cfg *Config, sink Sink, logger *zap.Logger) (*Submitter, error) {
	if sink == nil {
		return nil, fmt.Errorf("sink is required")
	}

	config := Config{}
	if cfg != nil {
		config = *cfg
	}

	if strings.TrimSpace(config.TimeLayout) == "" {
		config.TimeLayout = DefaultTimeLayout
	}

	if config.Location == nil {
		config.Location = time.Local
	}

	if strings.TrimSpace(config.NoHandle) == "" {
		config.NoHandle = DefaultNoHandle
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Submitter{
		sink:   sink,
		config: config,
		now:    time.Now,
		logger: logger,
	}, nil
}

// Submit stamps the application and appends it to the sink. The returned
// record is valid even when the append fails.
func (s *Submitter) Submit(ctx context.Context, app Application) (Record, error) {
	record := Record{
		Timestamp:       s.now().In(s.config.Location),
		FullName:        app.FullName,
		Phone:           app.Phone,
		VacancyTitle:    app.VacancyTitle,
		SubmitterHandle: s.handle(app.Handle),
	}

	if err := s.sink.AppendRecord(ctx, record.Row(s.config.TimeLayout)); err != nil {
		return record, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	s.logger.Info("application submitted",
		zap.String("vacancy", record.VacancyTitle),
		zap.String("handle", record.SubmitterHandle),
	)

	return record, nil
}

func (s *Submitter) handle(handle string) string {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return s.config.NoHandle
	}
	return "@" + handle
}
