package report

import (
	"fmt"
	"html"
	"strings"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

// FormatCompletion формирует HTML-уведомление о завершённой кампании для Telegram.
func FormatCompletion(e domain.CampaignEvent) string {
	var sections []string

	header := "🚀 <b>Campaign completed</b>"
	if brand := strings.TrimSpace(e.Brief.BrandName); brand != "" {
		header += ": " + escapeHTML(brand)
	}
	sections = append(sections, header)

	var brief []string
	if goal := strings.TrimSpace(e.Brief.Goal); goal != "" {
		brief = append(brief, "🎯 <b>Goal:</b> "+escapeHTML(goal))
	}
	if audience := strings.TrimSpace(e.Brief.Audience); audience != "" {
		brief = append(brief, "👥 <b>Audience:</b> "+escapeHTML(audience))
	}
	if len(brief) > 0 {
		sections = append(sections, strings.Join(brief, "\n"))
	}

	stats := fmt.Sprintf("📊 <b>Results</b>\n- Posts: %d\n- Published: %d\n- Failed: %d\n- Impressions: %s\n- Engagements: %s",
		e.Total, e.Succeeded, e.Failed, FormatThousands(e.Impressions), FormatThousands(e.Engagements))
	sections = append(sections, stats)

	if summary := strings.TrimSpace(e.Report); summary != "" {
		sections = append(sections, "📝 <b>Executive summary</b>\n"+escapeHTML(summary))
	}

	if !e.CompletedAt.IsZero() {
		sections = append(sections, "<i>"+e.CompletedAt.Format("2006-01-02 15:04 MST")+"</i>")
	}

	return strings.Join(sections, "\n\n")
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}
