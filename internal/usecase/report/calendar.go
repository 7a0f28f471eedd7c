package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

// Calendar раскладывает посты кампании с датой внутри месяца month.
// Посты без даты в календарь не попадают.
func Calendar(c domain.Campaign, month time.Time) []domain.CalendarEvent {
	prefix := month.Format("2006-01") + "-"
	events := make([]domain.CalendarEvent, 0)
	for i, e := range c.Entries {
		if !strings.HasPrefix(e.Item.ScheduledDate, prefix) {
			continue
		}
		id := fmt.Sprintf("post-%d", i)
		if e.Result != nil && e.Result.ID != "" {
			id = e.Result.ID
		}
		events = append(events, domain.CalendarEvent{
			ID:       id,
			Platform: e.Item.Platform,
			Content:  e.Item.Content,
			Date:     e.Item.ScheduledDate,
			Time:     e.Item.ScheduledTime,
			Status:   calendarStatus(e.State()),
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Time < events[j].Time
	})
	return events
}

func calendarStatus(s domain.PostState) domain.ItemStatus {
	switch s {
	case domain.PostPublished:
		return domain.ItemStatusPublished
	case domain.PostFailed:
		return domain.ItemStatusFailed
	default:
		return domain.ItemStatusScheduled
	}
}
