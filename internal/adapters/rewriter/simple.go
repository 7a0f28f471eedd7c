package rewriter

import (
	"context"
	"time"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

// EnhancedSuffix дописывается к тексту поста простым переписчиком.
const EnhancedSuffix = "\n\n[AI Enhanced] Added engaging call-to-action and optimized hashtags for better reach."

// Simple имитирует LLM: ждёт задержку и дописывает фиксированный хвост.
type Simple struct {
	delay time.Duration
}

var _ domain.Rewriter = (*Simple)(nil)

// NewSimple создаёт переписчик с задержкой delay.
func NewSimple(delay time.Duration) *Simple {
	return &Simple{delay: delay}
}

// Rewrite возвращает новый текст поста.
func (s *Simple) Rewrite(ctx context.Context, item domain.ContentItem) (string, error) {
	if err := wait(ctx, s.delay); err != nil {
		return "", err
	}
	return item.Content + EnhancedSuffix, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
