package submit

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

type recordingSink struct {
	rows [][]string
	err  error
}

func (r *recordingSink) AppendRecord(_ context.Context, row []string) error {
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, row)
	return nil
}

func newSubmitter(t *testing.T, cfg *Config, sink Sink, now time.Time) *Submitter {
	t.Helper()

	s, err := New(cfg, sink, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.now = func() time.Time { return now }
	return s
}

func TestSubmitAppendsFivePositionalFields(t *testing.T) {
	sink := &recordingSink{}
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	s := newSubmitter(t, &Config{Location: time.UTC}, sink, now)

	record, err := s.Submit(context.Background(), Application{
		FullName:     "Петров Олег",
		Phone:        "89991234567",
		VacancyTitle: "Водитель",
		Handle:       "oleg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"2025-03-14 09:26:53", "Петров Олег", "89991234567", "Водитель", "@oleg"}
	if len(sink.rows) != 1 || !reflect.DeepEqual(sink.rows[0], want) {
		t.Fatalf("unexpected rows: %v", sink.rows)
	}

	if !record.Timestamp.Equal(now) {
		t.Fatalf("expected submission time stamp, got %v", record.Timestamp)
	}
}

func TestSubmitHandlePlaceholder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    *Config
		handle string
		want   string
	}{
		{name: "missing handle", handle: "", want: DefaultNoHandle},
		{name: "whitespace handle", handle: "   ", want: DefaultNoHandle},
		{name: "custom placeholder", cfg: &Config{NoHandle: "no handle"}, want: "no handle"},
		{name: "blank placeholder falls back", cfg: &Config{NoHandle: " "}, want: DefaultNoHandle},
		{name: "at sign not doubled", handle: "@ivan", want: "@ivan"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sink := &recordingSink{}
			s := newSubmitter(t, tt.cfg, sink, time.Now())

			record, err := s.Submit(context.Background(), Application{VacancyTitle: "Водитель", Handle: tt.handle})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if record.SubmitterHandle != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, record.SubmitterHandle)
			}
		})
	}
}

func TestSubmitFailureWrapsSinkError(t *testing.T) {
	cause := errors.New("sheet is unreachable")
	s := newSubmitter(t, nil, &recordingSink{err: cause}, time.Now())

	record, err := s.Submit(context.Background(), Application{FullName: "Иванов Иван", Phone: "+7 900", VacancyTitle: "Грузчик"})
	if !errors.Is(err, ErrSubmissionFailed) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped ErrSubmissionFailed, got %v", err)
	}

	if record.FullName != "Иванов Иван" || record.VacancyTitle != "Грузчик" {
		t.Fatalf("expected record to be returned on failure, got %+v", record)
	}
}

func TestNewRequiresSink(t *testing.T) {
	if _, err := New(nil, nil, nil); err == nil {
		t.Fatalf("expected error without sink")
	}
}
