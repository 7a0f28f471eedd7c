package telegram

import (
	"strings"
	"testing"
)

func TestSplitMessageShortText(t *testing.T) {
	parts := SplitMessage("  hello\nworld  ", MessageLimit)
	if len(parts) != 1 || parts[0] != "hello\nworld" {
		t.Fatalf("ожидали одну часть, получили %q", parts)
	}
	if parts := SplitMessage(" \n ", MessageLimit); parts != nil {
		t.Fatalf("для пустого текста ожидали nil, получили %q", parts)
	}
}

func TestSplitMessagePrefersNewlines(t *testing.T) {
	text := strings.Repeat("a", 3000) + "\n\n" + strings.Repeat("b", 2000) + "\n" + strings.Repeat("c", 500)

	parts := SplitMessage(text, MessageLimit)
	if len(parts) != 2 {
		t.Fatalf("ожидали 2 части, получили %d", len(parts))
	}
	if parts[0] != strings.Repeat("a", 3000) {
		t.Fatalf("первая часть должна содержать только блок a")
	}
	if parts[1] != strings.Repeat("b", 2000)+"\n"+strings.Repeat("c", 500) {
		t.Fatalf("неожиданная вторая часть")
	}
}

func TestSplitMessageHardSplitsLongLine(t *testing.T) {
	text := strings.Repeat("я", 25)
	parts := SplitMessage(text, 10)
	if len(parts) != 3 {
		t.Fatalf("ожидали 3 части, получили %d", len(parts))
	}
	for i, part := range parts {
		if n := len([]rune(part)); n > 10 {
			t.Fatalf("часть %d длиннее лимита: %d", i, n)
		}
	}
	if strings.Join(parts, "") != text {
		t.Fatalf("текст потерян при разбиении")
	}
}
