package telegram

import "strings"

// MessageLimit — предел длины сообщения Telegram в символах.
const MessageLimit = 4096

// SplitMessage режет текст на части не длиннее limit символов.
// Граница ставится по переводу строки; слишком длинная строка режется по limit.
func SplitMessage(text string, limit int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if limit <= 0 {
		limit = MessageLimit
	}

	var (
		parts   []string
		current []rune
	)
	flush := func() {
		chunk := strings.Trim(string(current), "\n")
		if chunk != "" {
			parts = append(parts, chunk)
		}
		current = current[:0]
	}

	for _, line := range strings.SplitAfter(trimmed, "\n") {
		runes := []rune(line)
		if len(current)+len(runes) > limit {
			flush()
		}
		for len(runes) > limit {
			current = append(current, runes[:limit]...)
			flush()
			runes = runes[limit:]
		}
		current = append(current, runes...)
	}
	flush()
	return parts
}
