package lifecycle

import (
	"fmt"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

// State — состояние жизненного цикла кампании.
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StatePlanReady  State = "plan_ready"
	StateExecuting  State = "executing"
	StateCompleted  State = "completed"
)

// Busy сообщает, что идёт генерация или исполнение.
func (s State) Busy() bool {
	return s == StateGenerating || s == StateExecuting
}

// checkTransition проверяет допустимость перехода from -> to.
func checkTransition(from, to State) error {
	ok := false
	switch from {
	case StateIdle, StateCompleted:
		ok = to == StateGenerating || to == StatePlanReady || to == StateIdle
	case StatePlanReady:
		ok = to == StateGenerating || to == StateExecuting || to == StatePlanReady || to == StateIdle
	case StateGenerating:
		ok = to == StatePlanReady || to == StateIdle
	case StateExecuting:
		ok = to == StateCompleted
	}
	if !ok {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	return nil
}
