package guard

import (
	"context"
	"sync"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

// Memory — внутрипроцессная блокировка по ключу.
type Memory struct {
	mu   sync.Mutex
	held map[string]struct{}
}

var _ domain.RewriteGuard = (*Memory)(nil)

// NewMemory создаёт блокировку.
func NewMemory() *Memory {
	return &Memory{held: make(map[string]struct{})}
}

// Acquire занимает ключ, если он свободен.
func (m *Memory) Acquire(_ context.Context, key string) (func(), bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.held[key]; busy {
		return nil, false, nil
	}
	m.held[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.held, key)
			m.mu.Unlock()
		})
	}, true, nil
}
