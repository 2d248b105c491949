package telegram

import (
	"strings"
	"testing"

	"github.com/mkalvans/invoicebot/internal/config"
)

func TestSplitMessageShort(t *testing.T) {
	parts := SplitMessage("hello")
	if len(parts) != 1 || parts[0] != "hello" {
		t.Fatalf("SplitMessage = %v", parts)
	}
}

func TestSplitMessageLong(t *testing.T) {
	line := strings.Repeat("x", 100)
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	parts := SplitMessage(sb.String())
	if len(parts) < 2 {
		t.Fatalf("long text split into %d parts, want at least 2", len(parts))
	}
	for i, p := range parts {
		if len(p) > config.MaxTelegramMessageLen {
			t.Errorf("part %d has %d bytes, over the limit", i, len(p))
		}
	}

	joined := strings.Join(parts, "\n")
	if strings.ReplaceAll(joined, "\n", "") != strings.ReplaceAll(sb.String(), "\n", "") {
		t.Error("split lost content")
	}
}

func TestButtonTruncatesLabel(t *testing.T) {
	short := Button("Short name", "cb")
	if short.Text != "Short name" {
		t.Errorf("Button text = %q, want unchanged", short.Text)
	}

	long := Button(strings.Repeat("a", config.KeyboardLabelLen+10), "cb")
	if len([]rune(long.Text)) != config.KeyboardLabelLen {
		t.Errorf("label length = %d, want %d", len([]rune(long.Text)), config.KeyboardLabelLen)
	}
	if !strings.HasSuffix(long.Text, "...") {
		t.Errorf("label = %q, want ellipsis suffix", long.Text)
	}
}
