package logsink

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

// Memory — лента сообщений оператора в памяти процесса с зеркалированием в zerolog.
type Memory struct {
	mu      sync.RWMutex
	entries []domain.LogEntry
	dropped int
	limit   int
	clock   domain.Clock
	log     zerolog.Logger
}

var _ domain.LogSink = (*Memory)(nil)

// NewMemory создаёт ленту. limit <= 0 — без ограничения размера.
func NewMemory(clock domain.Clock, limit int, logger zerolog.Logger) *Memory {
	return &Memory{clock: clock, limit: limit, log: logger}
}

// Append добавляет сообщение с текущим временем.
func (m *Memory) Append(message string, typ domain.LogType) {
	if typ == "" {
		typ = domain.LogInfo
	}
	entry := domain.LogEntry{Timestamp: m.clock.Now(), Message: message, Type: typ}

	m.mu.Lock()
	m.entries = append(m.entries, entry)
	if m.limit > 0 && len(m.entries) > m.limit {
		trim := len(m.entries) - m.limit
		m.entries = append([]domain.LogEntry(nil), m.entries[trim:]...)
		m.dropped += trim
	}
	m.mu.Unlock()

	event := m.log.Info()
	switch typ {
	case domain.LogError:
		event = m.log.Error()
	case domain.LogWarning:
		event = m.log.Warn()
	}
	event.Str("type", string(typ)).Msg(message)
}

// Entries возвращает сообщения начиная с абсолютной позиции since.
// Позиции не сдвигаются при вытеснении старых сообщений.
func (m *Memory) Entries(since int) []domain.LogEntry {
	entries, _ := m.Tail(since)
	return entries
}

// Tail возвращает сообщения с позиции since и позицию для следующего запроса.
func (m *Memory) Tail(since int) ([]domain.LogEntry, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	next := m.dropped + len(m.entries)
	offset := since - m.dropped
	if offset < 0 {
		offset = 0
	}
	if offset >= len(m.entries) {
		return []domain.LogEntry{}, next
	}
	return append([]domain.LogEntry(nil), m.entries[offset:]...), next
}
