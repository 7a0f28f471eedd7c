package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

// averageSentiment — фиксированная оценка тональности в выгрузке.
const averageSentiment = 0.82

// ExportMarkdown формирует markdown-отчёт по кампании.
func ExportMarkdown(c domain.Campaign, generated time.Time) string {
	totals := c.Totals()

	var b strings.Builder
	b.WriteString("# Campaign Performance Report\n\n")
	fmt.Fprintf(&b, "**Brand:** %s\n", orNA(c.Brief.BrandName))
	fmt.Fprintf(&b, "**Goal:** %s\n", orNA(c.Brief.Goal))
	fmt.Fprintf(&b, "**Target Audience:** %s\n", orNA(c.Brief.Audience))
	fmt.Fprintf(&b, "**Generated:** %s\n\n", generated.Format(time.DateOnly))
	b.WriteString("---\n\n")
	b.WriteString("## Performance Summary\n\n")
	fmt.Fprintf(&b, "Total Impressions: %s\n", FormatThousands(totals.Impressions))
	fmt.Fprintf(&b, "Total Engagements: %s\n", FormatThousands(totals.Engagements))
	fmt.Fprintf(&b, "Average Sentiment: %.0f%% Positive\n\n", averageSentiment*100)
	b.WriteString("---\n\n")
	b.WriteString("## AI Executive Summary\n\n")
	b.WriteString(c.Report)
	b.WriteString("\n")
	return b.String()
}

// Filename возвращает имя файла выгрузки.
func Filename(brandName string) string {
	if brandName == "" {
		brandName = "export"
	}
	return "campaign-report-" + brandName + ".md"
}

// FormatThousands разделяет разряды запятыми: 12345 -> "12,345".
func FormatThousands(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
