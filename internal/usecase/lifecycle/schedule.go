package lifecycle

import (
	"fmt"
	"time"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

const (
	firstSlotHour = 9
	slotsPerDay   = 15 // 09:00..23:00
)

// defaultSchedule раскладывает посты по дням: пост i выходит через i+1 день
// в 9+i часов. После 23:00 час начинается снова с 09:00.
func defaultSchedule(items []domain.ContentItem, now time.Time) []domain.ContentItem {
	out := make([]domain.ContentItem, len(items))
	for i, item := range items {
		item.ScheduledDate = now.AddDate(0, 0, i+1).Format(time.DateOnly)
		item.ScheduledTime = fmt.Sprintf("%02d:00", firstSlotHour+i%slotsPerDay)
		item.Status = domain.ItemStatusDraft
		out[i] = item
	}
	return out
}
