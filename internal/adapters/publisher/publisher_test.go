package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

func TestDefaultPolicyRejectsOnlyYouTube(t *testing.T) {
	policy := DefaultPolicy()
	for _, platform := range []domain.Platform{domain.PlatformLinkedIn, domain.PlatformThreads, "Mastodon", ""} {
		if err := policy.Check(domain.ContentItem{Platform: platform}); err != nil {
			t.Fatalf("%q: не ожидали ошибку: %v", platform, err)
		}
	}
	if err := policy.Check(domain.ContentItem{Platform: domain.PlatformYouTube}); !errors.Is(err, ErrVideoRequired) {
		t.Fatalf("ожидали ErrVideoRequired, получили %v", err)
	}
}

func TestPolicyWithCustomRule(t *testing.T) {
	errTooLong := errors.New("too long")
	policy := NewPlatformPolicy().With(domain.PlatformThreads, func(item domain.ContentItem) error {
		if len(item.Content) > 5 {
			return errTooLong
		}
		return nil
	})
	if err := policy.Check(domain.ContentItem{Platform: domain.PlatformThreads, Content: "short"}); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if err := policy.Check(domain.ContentItem{Platform: domain.PlatformThreads, Content: "much longer"}); !errors.Is(err, errTooLong) {
		t.Fatalf("ожидали errTooLong, получили %v", err)
	}
	if err := policy.Check(domain.ContentItem{Platform: domain.PlatformYouTube}); err != nil {
		t.Fatalf("правило YouTube не регистрировали, получили %v", err)
	}
}

func TestSimulatedPublishWaitsDelay(t *testing.T) {
	pub := NewSimulated(20*time.Millisecond, DefaultPolicy())
	start := time.Now()
	if err := pub.Publish(context.Background(), domain.ContentItem{Platform: domain.PlatformLinkedIn}); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("публикация завершилась раньше задержки")
	}
	if err := pub.Publish(context.Background(), domain.ContentItem{Platform: domain.PlatformYouTube}); !errors.Is(err, ErrVideoRequired) {
		t.Fatalf("ожидали ErrVideoRequired, получили %v", err)
	}
}

func TestSimulatedPublishCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewSimulated(time.Hour, nil).Publish(ctx, domain.ContentItem{Platform: domain.PlatformLinkedIn})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ожидали context.Canceled, получили %v", err)
	}
}

func TestRandIsDeterministicForSeed(t *testing.T) {
	a, b := NewRand(42), NewRand(42)
	for i := 0; i < 100; i++ {
		x, y := a.IntN(500), b.IntN(500)
		if x != y {
			t.Fatalf("шаг %d: одинаковое зерно дало %d и %d", i, x, y)
		}
		if x < 0 || x >= 500 {
			t.Fatalf("значение %d вне диапазона", x)
		}
	}
}
