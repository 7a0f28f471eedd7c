package publisher

import (
	"context"
	"time"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

// Simulated имитирует публикацию фиксированной задержкой.
type Simulated struct {
	delay  time.Duration
	policy domain.PublishPolicy
}

var _ domain.Publisher = (*Simulated)(nil)

// NewSimulated создаёт издателя. При policy == nil все посты проходят.
func NewSimulated(delay time.Duration, policy domain.PublishPolicy) *Simulated {
	return &Simulated{delay: delay, policy: policy}
}

// Publish ждёт задержку и применяет правила площадки.
func (s *Simulated) Publish(ctx context.Context, item domain.ContentItem) error {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}
	if s.policy == nil {
		return nil
	}
	return s.policy.Check(item)
}
