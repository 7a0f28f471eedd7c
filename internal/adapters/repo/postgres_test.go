package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/db"
)

// Тест требует живой Postgres: TEST_PG_DSN=postgres://... go test ./internal/adapters/repo
func newTestRepo(t *testing.T, limit int) *Postgres {
	t.Helper()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN не задан")
	}
	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("нет подключения к БД: %v", err)
	}
	t.Cleanup(pool.Close)

	repo := NewPostgres(pool, limit)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("не удалось создать схему: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE campaign_history`); err != nil {
		t.Fatalf("не удалось очистить таблицу: %v", err)
	}
	return repo
}

func TestPostgresEvictsBeyondLimit(t *testing.T) {
	repo := newTestRepo(t, 2)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		campaign := domain.Campaign{ID: fmt.Sprintf("c%d", i), Brief: domain.Brief{BrandName: "Acme"}}
		entry := domain.HistoryEntry{
			ID:       fmt.Sprintf("h%d", i),
			Date:     "2026-10-19",
			Brief:    campaign.Brief,
			Status:   domain.HistoryStatusCompleted,
			Campaign: &campaign,
		}
		if err := repo.Append(ctx, entry); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "h3" || entries[1].ID != "h2" {
		t.Fatalf("ожидали h3, h2; получили %+v", entries)
	}
	if entries[0].Campaign == nil || entries[0].Campaign.ID != "c3" {
		t.Fatalf("снимок кампании не восстановлен: %+v", entries[0].Campaign)
	}

	if _, err := repo.Get(ctx, "h1"); !errors.Is(err, domain.ErrHistoryNotFound) {
		t.Fatalf("вытесненная запись должна пропасть, получили %v", err)
	}
}
