package config

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeTimezone(t *testing.T) {
	cases := map[string]string{
		"UTC":                "UTC",
		"europe/amsterdam":   "Europe/Amsterdam",
		" America/New York ": "America/New_York",
		"utc":                "UTC",
		"gmt":                "GMT",
		"etc/utc":            "Etc/UTC",
		"etc/gmt+3":          "Etc/GMT+3",
	}
	for raw, want := range cases {
		got, err := NormalizeTimezone(raw)
		if err != nil {
			t.Fatalf("%q: не ожидали ошибку: %v", raw, err)
		}
		if got != want {
			t.Fatalf("%q: ожидали %q, получили %q", raw, want, got)
		}
	}
}

func TestNormalizeTimezoneRejectsUnknown(t *testing.T) {
	for _, raw := range []string{"", "   ", "Mars/Olympus"} {
		if _, err := NormalizeTimezone(raw); !errors.Is(err, ErrInvalidTimezone) {
			t.Fatalf("%q: ожидали ErrInvalidTimezone, получили %v", raw, err)
		}
	}
}

func TestParseDefaults(t *testing.T) {
	t.Setenv("TZ", "utc")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if cfg.Execution.PublishDelay != 2*time.Second {
		t.Fatalf("ожидали задержку публикации 2s, получили %s", cfg.Execution.PublishDelay)
	}
	if cfg.Generator.Timeout != time.Minute {
		t.Fatalf("ожидали таймаут генерации 60s, получили %s", cfg.Generator.Timeout)
	}
	if cfg.Limits.HistoryMax != 100 {
		t.Fatalf("ожидали лимит истории 100, получили %d", cfg.Limits.HistoryMax)
	}
	if cfg.Location() != time.UTC && cfg.Location().String() != "UTC" {
		t.Fatalf("ожидали UTC, получили %s", cfg.Location())
	}
}

func TestParseRejectsBadTimezone(t *testing.T) {
	t.Setenv("TZ", "Nowhere/Land")
	if _, err := Parse(); !errors.Is(err, ErrInvalidTimezone) {
		t.Fatalf("ожидали ErrInvalidTimezone, получили %v", err)
	}
}
