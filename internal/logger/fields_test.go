package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  user_id  ", Value: "  42  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "user_id" || fields[0].String != "42" {
		t.Fatalf("unexpected user field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	enriched.Info("another log")
}

func TestSessionFields(t *testing.T) {
	fields := SessionFields(" 42 ", "awaiting_phone", "")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldUser || fields[0].String != "42" {
		t.Fatalf("unexpected user field: %+v", fields[0])
	}

	if fields[1].Key != FieldState || fields[1].String != "awaiting_phone" {
		t.Fatalf("unexpected state field: %+v", fields[1])
	}
}

func TestWithSessionFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithSessionFields(logger, "42", "idle", "text")
	enriched.Info("handled")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldUser] != "42" || ctx[FieldState] != "idle" || ctx[FieldEvent] != "text" {
		t.Fatalf("unexpected context: %v", ctx)
	}

	if WithSessionFields(nil, "42", "idle", "text") == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
}
