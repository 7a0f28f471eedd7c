package report

import (
	"strings"
	"testing"
	"time"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

func TestFormatThousands(t *testing.T) {
	cases := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		12345:    "12,345",
		123456:   "123,456",
		1234567:  "1,234,567",
		-9876543: "-9,876,543",
	}
	for in, want := range cases {
		if got := FormatThousands(in); got != want {
			t.Fatalf("FormatThousands(%d): ожидали %q, получили %q", in, want, got)
		}
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("Acme"); got != "campaign-report-Acme.md" {
		t.Fatalf("неожиданное имя %q", got)
	}
	if got := Filename(""); got != "campaign-report-export.md" {
		t.Fatalf("неожиданное имя %q", got)
	}
}

func sampleCampaign() domain.Campaign {
	return domain.Campaign{
		Brief: domain.Brief{BrandName: "Acme", Goal: "Launch", Audience: "Devs"},
		Entries: []domain.PlanEntry{
			{
				Item: domain.ContentItem{Platform: domain.PlatformLinkedIn, Content: "a", ScheduledDate: "2026-10-20", ScheduledTime: "09:00"},
				Result: &domain.ExecutionResult{ID: "r1", Platform: domain.PlatformLinkedIn, Status: domain.ResultSuccess,
					Metrics: &domain.Engagement{Likes: 100, Shares: 20, Comments: 5, Impressions: 2500, Reach: 900}},
			},
			{
				Item:   domain.ContentItem{Platform: domain.PlatformYouTube, Content: "b", ScheduledDate: "2026-10-21", ScheduledTime: "10:00"},
				Result: &domain.ExecutionResult{ID: "r2", Platform: domain.PlatformYouTube, Status: domain.ResultError, Error: "YouTube requires video content"},
			},
			{
				Item:   domain.ContentItem{Platform: domain.PlatformThreads, Content: "c", ScheduledDate: "2026-11-01", ScheduledTime: "11:00"},
				Result: &domain.ExecutionResult{ID: "r3", Platform: domain.PlatformThreads, Status: domain.ResultSuccess, Metrics: &domain.Engagement{Likes: 10, Shares: 2, Comments: 1}},
			},
		},
		Report: "Great launch.",
	}
}

func TestExportMarkdown(t *testing.T) {
	md := ExportMarkdown(sampleCampaign(), time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))

	// 2500 + (10*15 + 2*50) = 2750; 125 + 13 = 138
	for _, want := range []string{
		"# Campaign Performance Report\n\n",
		"**Brand:** Acme\n",
		"**Goal:** Launch\n",
		"**Target Audience:** Devs\n",
		"**Generated:** 2026-10-19\n",
		"## Performance Summary\n\nTotal Impressions: 2,750\nTotal Engagements: 138\n",
		"Average Sentiment: 82% Positive",
		"## AI Executive Summary\n\nGreat launch.\n",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("в отчёте нет %q:\n%s", want, md)
		}
	}
}

func TestExportMarkdownEmptyBrief(t *testing.T) {
	md := ExportMarkdown(domain.Campaign{}, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	if !strings.Contains(md, "**Brand:** N/A\n**Goal:** N/A\n**Target Audience:** N/A\n") {
		t.Fatalf("ожидали N/A для пустого брифа:\n%s", md)
	}
	if !strings.Contains(md, "Total Impressions: 0\nTotal Engagements: 0\n") {
		t.Fatalf("ожидали нулевые итоги:\n%s", md)
	}
}

func TestCalendarFiltersByMonth(t *testing.T) {
	c := sampleCampaign()
	c.Entries = append(c.Entries, domain.PlanEntry{Item: domain.ContentItem{Platform: "Mastodon", ScheduledDate: "2026-10-20", ScheduledTime: "08:00"}})

	events := Calendar(c, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	if len(events) != 3 {
		t.Fatalf("ожидали 3 события в октябре, получили %d", len(events))
	}
	if events[0].ID != "post-3" || events[0].Status != domain.ItemStatusScheduled {
		t.Fatalf("ожидали черновик первым по времени: %+v", events[0])
	}
	if events[1].ID != "r1" || events[1].Status != domain.ItemStatusPublished {
		t.Fatalf("неожиданное второе событие: %+v", events[1])
	}
	if events[2].ID != "r2" || events[2].Status != domain.ItemStatusFailed {
		t.Fatalf("неожиданное третье событие: %+v", events[2])
	}
}

func TestFormatCompletionEscapesHTML(t *testing.T) {
	text := FormatCompletion(domain.CampaignEvent{
		Brief:       domain.Brief{BrandName: "A&B <Co>", Goal: "Launch", Audience: "Devs"},
		Total:       2,
		Succeeded:   1,
		Failed:      1,
		Impressions: 12345,
		Engagements: 160,
		Report:      "Done <fast>",
	})
	for _, want := range []string{
		"<b>Campaign completed</b>: A&amp;B &lt;Co&gt;",
		"- Published: 1",
		"- Impressions: 12,345",
		"Done &lt;fast&gt;",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("в уведомлении нет %q:\n%s", want, text)
		}
	}
}
