package history

import (
	"context"
	"sync"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

// Memory хранит историю кампаний в памяти процесса, новые записи первыми.
// При превышении лимита вытесняются самые старые записи; limit <= 0 снимает ограничение.
type Memory struct {
	mu      sync.RWMutex
	entries []domain.HistoryEntry
	limit   int
}

var _ domain.HistoryRepo = (*Memory)(nil)

// NewMemory создаёт хранилище.
func NewMemory(limit int) *Memory {
	return &Memory{limit: limit}
}

// Append добавляет запись в начало истории.
func (m *Memory) Append(_ context.Context, entry domain.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]domain.HistoryEntry, 0, len(m.entries)+1)
	entries = append(entries, entry.Clone())
	entries = append(entries, m.entries...)
	if m.limit > 0 && len(entries) > m.limit {
		entries = entries[:m.limit]
	}
	m.entries = entries
	return nil
}

// List возвращает копии записей, новые первыми.
func (m *Memory) List(_ context.Context) ([]domain.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.HistoryEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Clone())
	}
	return out, nil
}

// Get возвращает глубокую копию записи.
func (m *Memory) Get(_ context.Context, id string) (domain.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return domain.HistoryEntry{}, domain.ErrHistoryNotFound
}
