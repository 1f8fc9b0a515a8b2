package sheets

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/spigell/vacancy-bot/internal/catalog"
)

type fakeValues struct {
	data     map[string][][]any
	errs     []error
	gets     []string
	appended map[string][][]any
	calls    int
	deadline bool
}

func (f *fakeValues) next() error {
	f.calls++
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeValues) Get(ctx context.Context, readRange string) ([][]any, error) {
	_, f.deadline = ctx.Deadline()
	f.gets = append(f.gets, readRange)
	if err := f.next(); err != nil {
		return nil, err
	}
	return f.data[readRange], nil
}

func (f *fakeValues) Append(_ context.Context, appendRange string, row []any) error {
	if err := f.next(); err != nil {
		return err
	}
	if f.appended == nil {
		f.appended = map[string][][]any{}
	}
	f.appended[appendRange] = append(f.appended[appendRange], row)
	return nil
}

func testClient(values valuesAPI, questions string) *Client {
	return newClient(values, &Config{QuestionsSheet: questions, RetryDelay: time.Millisecond}, nil)
}

func TestFetchSnapshotMapsHeaders(t *testing.T) {
	t.Parallel()

	values := &fakeValues{data: map[string][][]any{
		"'Вакансии'": {
			{"Вакансия", "Часовая ставка", "СТАТУС", "Описание"},
			{"Водитель", 450, "ОТКРЫТА"},
			{"Грузчик", "300", "ЗАКРЫТА", "Склад"},
		},
	}}

	rows, err := testClient(values, "").FetchSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, catalog.Row{"Вакансия": "Водитель", "Часовая ставка": "450", "СТАТУС": "ОТКРЫТА", "Описание": ""}, rows[0])
	assert.Equal(t, "Склад", rows[1]["Описание"])
	assert.True(t, values.deadline, "call must carry a per-attempt timeout")
}

func TestFetchSnapshotEmptySheet(t *testing.T) {
	t.Parallel()

	rows, err := testClient(&fakeValues{}, "").FetchSnapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetchQuestions(t *testing.T) {
	t.Parallel()

	values := &fakeValues{data: map[string][][]any{
		"'Вопросы'!A2:B": {
			{"Есть ли жильё?", "Да"},
			{"Когда выплаты?"},
			{"", "сирота"},
		},
	}}

	client := testClient(values, DefaultQuestionsSheet)
	require.True(t, client.HasQuestions())

	questions, err := client.FetchQuestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []catalog.Question{
		{Question: "Есть ли жильё?", Answer: "Да"},
		{Question: "Когда выплаты?", Answer: ""},
	}, questions)
}

func TestFetchQuestionsWithoutSheet(t *testing.T) {
	t.Parallel()

	values := &fakeValues{}
	questions, err := testClient(values, "").FetchQuestions(context.Background())
	require.NoError(t, err)
	assert.Nil(t, questions)
	assert.Zero(t, values.calls)
}

func TestAppendRecord(t *testing.T) {
	t.Parallel()

	values := &fakeValues{}
	err := testClient(values, "").AppendRecord(context.Background(),
		[]string{"2024-01-02 03:04:05", "Петров Олег", "89991234567", "Водитель", "без username"})
	require.NoError(t, err)

	require.Len(t, values.appended["'Отклики'"], 1)
	assert.Equal(t, "Петров Олег", values.appended["'Отклики'"][0][1])
}

func TestRetries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   bool
	}{
		{
			name:      "rate limited then ok",
			errs:      []error{&googleapi.Error{Code: http.StatusTooManyRequests}},
			wantCalls: 2,
		},
		{
			name:      "server errors exhaust attempts",
			errs:      []error{&googleapi.Error{Code: 500}, &googleapi.Error{Code: 503}, &googleapi.Error{Code: 502}},
			wantCalls: 3,
			wantErr:   true,
		},
		{
			name:      "transport error is retried",
			errs:      []error{errors.New("connection reset")},
			wantCalls: 2,
		},
		{
			name:      "forbidden is final",
			errs:      []error{&googleapi.Error{Code: http.StatusForbidden}},
			wantCalls: 1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			values := &fakeValues{errs: tt.errs}
			err := testClient(values, "").AppendRecord(context.Background(), []string{"x"})

			assert.Equal(t, tt.wantCalls, values.calls)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestQuote(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "'Отклики'", quote("Отклики"))
	assert.Equal(t, "'O''Neil list'", quote("O'Neil list"))
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), &Config{Credentials: "{}"}, nil)
	assert.Error(t, err)

	_, err = New(context.Background(), &Config{SpreadsheetID: "id"}, nil)
	assert.Error(t, err)
}
