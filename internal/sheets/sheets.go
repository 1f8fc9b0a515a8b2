// Package sheets reads the catalog and the FAQ from a Google spreadsheet and
// appends submitted applications to it.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/spigell/vacancy-bot/internal/catalog"
	"github.com/spigell/vacancy-bot/internal/submit"
	"github.com/spigell/vacancy-bot/internal/utils"
)

const (
	DefaultVacanciesSheet = "Вакансии"
	DefaultQuestionsSheet = "Вопросы"
	DefaultResponsesSheet = "Отклики"

	DefaultTimeout    = 15 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

type Config struct {
	SpreadsheetID string
	// Credentials is the service account JSON.
	Credentials    string
	VacanciesSheet string
	// QuestionsSheet may be empty to run without FAQ.
	QuestionsSheet string
	ResponsesSheet string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

var (
	_ catalog.Source    = (*Client)(nil)
	_ catalog.FAQSource = (*Client)(nil)
	_ submit.Sink       = (*Client)(nil)
)

// valuesAPI is the part of the Sheets values API the client needs.
type valuesAPI interface {
	Get(ctx context.Context, readRange string) ([][]any, error)
	Append(ctx context.Context, appendRange string, row []any) error
}

// Client implements catalog.Source, catalog.FAQSource and submit.Sink.
type Client struct {
	values valuesAPI
	config Config
	logger *zap.Logger
}

func New(ctx context.Context, cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("spreadsheet id is required")
	}

	if strings.TrimSpace(cfg.Credentials) == "" {
		return nil, errors.New("sheets credentials are required")
	}

	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsJSON([]byte(cfg.Credentials)),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return newClient(&serviceValues{service: service, spreadsheetID: cfg.SpreadsheetID}, cfg, logger), nil
}

func newClient(values valuesAPI, cfg *Config, logger *zap.Logger) *Client {
	config := Config{}
	if cfg != nil {
		config = *cfg
	}

	if config.VacanciesSheet == "" {
		config.VacanciesSheet = DefaultVacanciesSheet
	}

	if config.ResponsesSheet == "" {
		config.ResponsesSheet = DefaultResponsesSheet
	}

	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultMaxRetries
	}

	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultRetryDelay
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{values: values, config: config, logger: logger}
}

// HasQuestions reports whether a questions sheet is configured.
func (c *Client) HasQuestions() bool {
	return c.config.QuestionsSheet != ""
}

// FetchSnapshot returns the vacancy rows keyed by the header row.
func (c *Client) FetchSnapshot(ctx context.Context) ([]catalog.Row, error) {
	var values [][]any
	err := c.call(ctx, "read vacancies", func(ctx context.Context) error {
		var err error
		values, err = c.values.Get(ctx, quote(c.config.VacanciesSheet))
		return err
	})
	if err != nil {
		return nil, err
	}

	return records(values), nil
}

// FetchQuestions returns the question/answer pairs below the header row.
func (c *Client) FetchQuestions(ctx context.Context) ([]catalog.Question, error) {
	if !c.HasQuestions() {
		return nil, nil
	}

	var values [][]any
	err := c.call(ctx, "read questions", func(ctx context.Context) error {
		var err error
		values, err = c.values.Get(ctx, quote(c.config.QuestionsSheet)+"!A2:B")
		return err
	})
	if err != nil {
		return nil, err
	}

	questions := make([]catalog.Question, 0, len(values))
	for _, row := range values {
		q := catalog.Question{Question: cell(row, 0), Answer: cell(row, 1)}
		if strings.TrimSpace(q.Question) == "" {
			continue
		}
		questions = append(questions, q)
	}

	return questions, nil
}

// AppendRecord appends row below the last row of the responses sheet.
func (c *Client) AppendRecord(ctx context.Context, row []string) error {
	values := make([]any, len(row))
	for i, v := range row {
		values[i] = v
	}

	return c.call(ctx, "append response", func(ctx context.Context) error {
		return c.values.Append(ctx, quote(c.config.ResponsesSheet), values)
	})
}

func (c *Client) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	policy := utils.RetryPolicy{
		Attempts:  c.config.MaxRetries,
		Delay:     c.config.RetryDelay,
		Retryable: retryable,
	}

	attempt := 0
	err := utils.Retry(ctx, policy, func(ctx context.Context) error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()

		err := fn(callCtx)
		if err != nil {
			c.logger.Warn("sheets call failed", zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// retryable reports whether a failed call may succeed when repeated.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}

	// transport errors and per-attempt timeouts
	return true
}

// records maps every data row onto the header row. Cells missing at the end
// of a row become empty strings.
func records(values [][]any) []catalog.Row {
	if len(values) == 0 {
		return nil
	}

	header := make([]string, len(values[0]))
	for i := range values[0] {
		header[i] = cell(values[0], i)
	}

	rows := make([]catalog.Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make(catalog.Row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			row[name] = cell(raw, i)
		}
		rows = append(rows, row)
	}

	return rows
}

func cell(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return fmt.Sprint(row[i])
}

func quote(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

type serviceValues struct {
	service       *sheetsapi.Service
	spreadsheetID string
}

func (s *serviceValues) Get(ctx context.Context, readRange string) ([][]any, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s *serviceValues) Append(ctx context.Context, appendRange string, row []any) error {
	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, appendRange, &sheetsapi.ValueRange{
		Values: [][]any{row},
	}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}
