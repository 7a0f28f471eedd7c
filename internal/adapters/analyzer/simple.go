package analyzer

import (
	"context"
	"time"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

// DefaultInsights — рекомендации простого анализатора.
const DefaultInsights = "High engagement potential detected. Recommended platforms: LinkedIn (B2B), Threads (viral content). Best posting times: 9-11 AM, 2-4 PM. Suggested content types: Educational posts, behind-the-scenes, success stories."

// Simple ждёт задержку и отдаёт фиксированные рекомендации.
type Simple struct {
	delay time.Duration
}

var _ domain.AudienceAnalyzer = (*Simple)(nil)

// NewSimple создаёт анализатор с задержкой delay.
func NewSimple(delay time.Duration) *Simple {
	return &Simple{delay: delay}
}

// Analyze возвращает рекомендации по аудитории.
func (s *Simple) Analyze(ctx context.Context, _ string) (string, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return DefaultInsights, nil
}
