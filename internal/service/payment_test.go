package service

import (
	"strings"
	"testing"
)

func TestDraftPayloadRoundTrip(t *testing.T) {
	p := NewDraftPayload()
	if !strings.HasPrefix(p, "draft_") {
		t.Errorf("payload = %q, want draft_ prefix", p)
	}
	if !ParseDraftPayload(p) {
		t.Errorf("ParseDraftPayload(%q) = false", p)
	}
	if ParseDraftPayload("regenerate_5_1700000000") {
		t.Error("ParseDraftPayload accepted a regenerate payload")
	}

	// Two mints never collide.
	if p == NewDraftPayload() {
		t.Error("two draft payloads are identical")
	}
}

func TestRegeneratePayloadRoundTrip(t *testing.T) {
	p := NewRegeneratePayload(42)

	id, ok := ParseRegeneratePayload(p)
	if !ok {
		t.Fatalf("ParseRegeneratePayload(%q) = false", p)
	}
	if id != 42 {
		t.Errorf("invoice id = %d, want 42", id)
	}
}

func TestParseRegeneratePayloadRejectsGarbage(t *testing.T) {
	for _, in := range []string{
		"draft_abc",
		"regenerate_",
		"regenerate_notanumber_123",
		"regenerate_42",
		"",
	} {
		if _, ok := ParseRegeneratePayload(in); ok {
			t.Errorf("ParseRegeneratePayload(%q) = true, want false", in)
		}
	}
}
