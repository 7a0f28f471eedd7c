package reporter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/usecase/report"
)

// Simple собирает итоговый отчёт из результатов без обращения к LLM.
type Simple struct {
	delay time.Duration
}

var _ domain.Reporter = (*Simple)(nil)

// NewSimple создаёт Reporter с искусственной задержкой delay.
func NewSimple(delay time.Duration) *Simple {
	return &Simple{delay: delay}
}

// Report возвращает markdown-резюме кампании.
func (s *Simple) Report(ctx context.Context, c domain.Campaign) (string, error) {
	if err := wait(ctx, s.delay); err != nil {
		return "", err
	}
	return Summarize(c), nil
}

// Summarize строит резюме: отчёт генератора (если был), строки по постам и итоги.
func Summarize(c domain.Campaign) string {
	var sections []string
	if generated := strings.TrimSpace(c.GeneratedReport); generated != "" {
		sections = append(sections, generated)
	}

	if len(c.Entries) > 0 {
		var b strings.Builder
		b.WriteString("### Execution Results\n")
		for i, e := range c.Entries {
			b.WriteString("\n")
			b.WriteString(outcomeLine(i, e))
		}
		sections = append(sections, b.String())
	}

	totals := c.Totals()
	sections = append(sections, fmt.Sprintf(
		"**Summary:** %d of %d posts published, %d failed. Estimated impressions: %s. Engagements: %s.",
		totals.Succeeded, totals.Posts, totals.Failed,
		report.FormatThousands(totals.Impressions), report.FormatThousands(totals.Engagements)))

	return strings.Join(sections, "\n\n")
}

func outcomeLine(i int, e domain.PlanEntry) string {
	name := platformName(e.Item.Platform)
	if e.Result == nil {
		return fmt.Sprintf("- Post %d (%s): not executed", i+1, name)
	}
	switch e.Result.Status {
	case domain.ResultSuccess:
		m := e.Result.Metrics
		if m == nil {
			return fmt.Sprintf("- Post %d (%s): published", i+1, name)
		}
		return fmt.Sprintf("- Post %d (%s): published, %s likes, %s shares, %s comments, reach %s",
			i+1, name, report.FormatThousands(m.Likes), report.FormatThousands(m.Shares),
			report.FormatThousands(m.Comments), report.FormatThousands(m.Reach))
	case domain.ResultError:
		reason := e.Result.Error
		if reason == "" {
			reason = "unknown error"
		}
		return fmt.Sprintf("- Post %d (%s): failed, %s", i+1, name, reason)
	default:
		return fmt.Sprintf("- Post %d (%s): %s", i+1, name, e.Result.Status)
	}
}

func platformName(p domain.Platform) string {
	if strings.TrimSpace(string(p)) == "" {
		return "Other"
	}
	return string(p)
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
