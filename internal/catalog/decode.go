package catalog

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	DefaultHourlyRate = "не указана"
	DefaultSchedule   = "нет данных"
	DefaultStatus     = "не указан"
)

// Columns maps entry fields to the catalog column headers.
type Columns struct {
	Title       string `mapstructure:"title"`
	HourlyRate  string `mapstructure:"hourly-rate"`
	ScheduleA   string `mapstructure:"schedule-a"`
	ScheduleB   string `mapstructure:"schedule-b"`
	Description string `mapstructure:"description"`
	Status      string `mapstructure:"status"`
}

func DefaultColumns() Columns {
	return Columns{
		Title:       "Вакансия",
		HourlyRate:  "Часовая ставка",
		ScheduleA:   "Вахта по 12 часов (30/30)",
		ScheduleB:   "Вахта по 11 ч (60/30)",
		Description: "Описание",
		Status:      "СТАТУС",
	}
}

// WithDefaults fills blank headers from DefaultColumns.
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	pick := func(v, fallback string) string {
		if strings.TrimSpace(v) == "" {
			return fallback
		}
		return v
	}

	return Columns{
		Title:       pick(c.Title, d.Title),
		HourlyRate:  pick(c.HourlyRate, d.HourlyRate),
		ScheduleA:   pick(c.ScheduleA, d.ScheduleA),
		ScheduleB:   pick(c.ScheduleB, d.ScheduleB),
		Description: pick(c.Description, d.Description),
		Status:      pick(c.Status, d.Status),
	}
}

type column struct {
	key      string
	header   string
	fallback string
}

func (c Columns) layout() []column {
	return []column{
		{key: "title", header: c.Title},
		{key: "hourly_rate", header: c.HourlyRate, fallback: DefaultHourlyRate},
		{key: "schedule_a", header: c.ScheduleA, fallback: DefaultSchedule},
		{key: "schedule_b", header: c.ScheduleB, fallback: DefaultSchedule},
		{key: "description", header: c.Description},
		{key: "status", header: c.Status, fallback: DefaultStatus},
	}
}

// Decode turns raw rows into entries. Columns absent from a row get their
// documented default; rows without a title are skipped.
func Decode(rows []Row, cols Columns) (*Entries, error) {
	cols = cols.WithDefaults()
	layout := cols.layout()
	entries := make([]*Entry, 0, len(rows))

	for idx, row := range rows {
		raw := make(map[string]any, len(layout))
		for _, col := range layout {
			value, ok := row[col.header]
			if !ok || value == nil {
				value = col.fallback
			}
			raw[col.key] = value
		}

		entry := &Entry{}
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           entry,
			TagName:          "mapstructure",
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, err
		}

		if err := decoder.Decode(raw); err != nil {
			return nil, fmt.Errorf("decoding catalog row %d: %w", idx+1, err)
		}

		if strings.TrimSpace(entry.Title) == "" {
			continue
		}

		entries = append(entries, entry)
	}

	return &Entries{Items: entries}, nil
}
