package publisher

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

// Rand — потокобезопасный источник случайных чисел с явным зерном.
type Rand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

var _ domain.RandSource = (*Rand)(nil)

// NewRand создаёт источник. Нулевое зерно заменяется текущим временем.
func NewRand(seed uint64) *Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Rand{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntN возвращает число из [0, n).
func (r *Rand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}
