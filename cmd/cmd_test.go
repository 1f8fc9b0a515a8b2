package cmd

import (
	"testing"

	"github.com/spigell/vacancy-bot/internal/session"
)

func TestChoicesDeduplicatesActions(t *testing.T) {
	t.Parallel()

	prompts := []session.Prompt{
		{Actions: []session.Action{
			{Kind: session.ActionSelect, Label: "Откликнуться", Index: 0},
			{Kind: session.ActionBack, Label: "Назад"},
		}},
		{Actions: []session.Action{
			{Kind: session.ActionSelect, Label: "Откликнуться", Index: 1},
			{Kind: session.ActionBack, Label: "Назад"},
		}},
	}

	got := choices(prompts)
	if len(got) != 3 {
		t.Fatalf("expected 3 choices, got %d: %+v", len(got), got)
	}

	if got[0].label != "Откликнуться #1" || got[0].event.Kind != session.EventSelect || got[0].event.Index != 0 {
		t.Fatalf("unexpected first choice %+v", got[0])
	}

	if got[1].event.Kind != session.EventStart {
		t.Fatalf("back must greet, got %s", got[1].event.Kind)
	}

	if got[2].event.Index != 1 || got[2].event.UserID != consoleUser {
		t.Fatalf("unexpected last choice %+v", got[2])
	}
}

func TestRedactedHidesSecrets(t *testing.T) {
	t.Parallel()

	config := &Config{
		Telegram: &TelegramConfig{Token: "123:abc"},
		Sheets:   &SheetsConfig{Credentials: `{"private_key":"x"}`, SpreadsheetID: "sheet"},
	}

	got := redacted(config)
	if got.Telegram.Token != "***" || got.Sheets.Credentials != "***" {
		t.Fatalf("secrets leaked: %+v %+v", got.Telegram, got.Sheets)
	}

	if got.Sheets.SpreadsheetID != "sheet" {
		t.Fatalf("non secret field changed")
	}

	if config.Telegram.Token != "123:abc" {
		t.Fatalf("original config was modified")
	}
}
