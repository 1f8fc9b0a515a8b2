package session

import "testing"

func TestMessagesOverride(t *testing.T) {
	t.Parallel()

	base := DefaultMessages()
	got, err := base.Override(map[string]any{
		"greeting":     "Hello",
		"button-apply": "Apply",
	})
	if err != nil {
		t.Fatalf("Override: %v", err)
	}

	if got.Greeting != "Hello" || got.ButtonApply != "Apply" {
		t.Fatalf("override not applied: %+v", got)
	}
	if got.NotFound != base.NotFound {
		t.Fatalf("untouched key changed: %q", got.NotFound)
	}
	if base.Greeting == "Hello" {
		t.Fatalf("override mutated the receiver")
	}
}

func TestFillAndEscape(t *testing.T) {
	t.Parallel()

	got := fill("*{vacancy}* {name}", "{vacancy}", escape("a_b"), "{name}", "x")
	if got != `*a\_b* x` {
		t.Fatalf("fill = %q", got)
	}
}
