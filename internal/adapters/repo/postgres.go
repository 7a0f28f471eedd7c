package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/metrics"
)

// Postgres хранит историю кампаний в таблице campaign_history.
type Postgres struct {
	pool  *pgxpool.Pool
	limit int
}

var _ domain.HistoryRepo = (*Postgres)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS campaign_history (
	seq        BIGSERIAL PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	entry_date TEXT NOT NULL,
	brand_name TEXT NOT NULL,
	goal       TEXT NOT NULL,
	audience   TEXT NOT NULL,
	status     TEXT NOT NULL,
	snapshot   JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPostgres создаёт адаптер БД. limit ограничивает выдачу List; 0 — без ограничения.
func NewPostgres(pool *pgxpool.Pool, limit int) *Postgres {
	return &Postgres{pool: pool, limit: limit}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// EnsureSchema создаёт таблицу истории, если её нет.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure campaign_history: %w", err)
	}
	return nil
}

// Append сохраняет запись истории вместе со снимком кампании.
func (p *Postgres) Append(ctx context.Context, entry domain.HistoryEntry) error {
	var snapshot []byte
	if entry.Campaign != nil {
		raw, err := json.Marshal(entry.Campaign)
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
		snapshot = raw
	}

	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	start := time.Now()
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
INSERT INTO campaign_history (id, entry_date, brand_name, goal, audience, status, snapshot)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			entry.ID, entry.Date, entry.Brief.BrandName, entry.Brief.Goal, entry.Brief.Audience, entry.Status, snapshot); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
		if p.limit <= 0 {
			return nil
		}
		// Записи сверх лимита вытесняются, как в памяти.
		if _, err := tx.Exec(ctx, `
DELETE FROM campaign_history
WHERE seq <= (
	SELECT seq FROM campaign_history ORDER BY seq DESC OFFSET $1 LIMIT 1
)`, p.limit); err != nil {
			return fmt.Errorf("prune history: %w", err)
		}
		return nil
	})
	metrics.ObserveNetworkRequest("postgres", "history_append", "campaign_history", start, err)
	return err
}

// List возвращает записи, начиная с самой свежей.
func (p *Postgres) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	query := `
SELECT id, entry_date, brand_name, goal, audience, status, snapshot
FROM campaign_history
ORDER BY seq DESC`
	args := []any{}
	if p.limit > 0 {
		query += ` LIMIT $1`
		args = append(args, p.limit)
	}

	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	start := time.Now()
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		metrics.ObserveNetworkRequest("postgres", "history_list", "campaign_history", start, err)
		return nil, fmt.Errorf("select history: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	err = rows.Err()
	metrics.ObserveNetworkRequest("postgres", "history_list", "campaign_history", start, err)
	if err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

// Get возвращает запись по идентификатору.
func (p *Postgres) Get(ctx context.Context, id string) (domain.HistoryEntry, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	start := time.Now()
	row := p.pool.QueryRow(ctx, `
SELECT id, entry_date, brand_name, goal, audience, status, snapshot
FROM campaign_history
WHERE id = $1`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.ObserveNetworkRequest("postgres", "history_get", "campaign_history", start, nil)
		return domain.HistoryEntry{}, fmt.Errorf("%w: %s", domain.ErrHistoryNotFound, id)
	}
	metrics.ObserveNetworkRequest("postgres", "history_get", "campaign_history", start, err)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	return entry, nil
}

func scanEntry(row pgx.Row) (domain.HistoryEntry, error) {
	var (
		entry    domain.HistoryEntry
		snapshot []byte
	)
	if err := row.Scan(&entry.ID, &entry.Date, &entry.Brief.BrandName, &entry.Brief.Goal, &entry.Brief.Audience, &entry.Status, &snapshot); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.HistoryEntry{}, err
		}
		return domain.HistoryEntry{}, fmt.Errorf("scan history: %w", err)
	}
	if len(snapshot) > 0 {
		var campaign domain.Campaign
		if err := json.Unmarshal(snapshot, &campaign); err != nil {
			return domain.HistoryEntry{}, fmt.Errorf("decode snapshot %s: %w", entry.ID, err)
		}
		entry.Campaign = &campaign
	}
	return entry, nil
}
