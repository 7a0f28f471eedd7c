package domain

import (
	"context"
	"time"
)

// GeneratedPlan — ответ внешнего сервиса генерации.
type GeneratedPlan struct {
	Plan   []ContentItem
	Report string
}

// ServiceHealth — ответ проверки здоровья сервиса генерации.
type ServiceHealth struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// PlanGenerator вызывает внешний агентный сервис.
type PlanGenerator interface {
	Generate(ctx context.Context, brief Brief) (GeneratedPlan, error)
	Health(ctx context.Context) (ServiceHealth, error)
}

// Publisher публикует один пост. Возвращённая ошибка превращается в статус error.
type Publisher interface {
	Publish(ctx context.Context, item ContentItem) error
}

// PublishPolicy проверяет ограничения площадки перед публикацией.
type PublishPolicy interface {
	Check(item ContentItem) error
}

// RandSource выдаёт случайные числа для синтетических метрик.
type RandSource interface {
	// IntN возвращает число из [0, n).
	IntN(n int) int
}

// Reporter строит итоговый отчёт по кампании.
type Reporter interface {
	Report(ctx context.Context, campaign Campaign) (string, error)
}

// Rewriter улучшает текст поста.
type Rewriter interface {
	Rewrite(ctx context.Context, item ContentItem) (string, error)
}

// AudienceAnalyzer описывает целевую аудиторию и даёт рекомендации.
type AudienceAnalyzer interface {
	Analyze(ctx context.Context, audience string) (string, error)
}

// HistoryRepo хранит архив завершённых кампаний.
type HistoryRepo interface {
	Append(ctx context.Context, entry HistoryEntry) error
	List(ctx context.Context) ([]HistoryEntry, error)
	Get(ctx context.Context, id string) (HistoryEntry, error)
}

// LogSink — лента сообщений для оператора.
type LogSink interface {
	Append(message string, typ LogType)
	Entries(since int) []LogEntry
}

// RewriteGuard не даёт запускать два переписывания одного поста одновременно.
type RewriteGuard interface {
	// Acquire возвращает release и true, если ключ свободен.
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

// Clock отдаёт текущее время.
type Clock interface {
	Now() time.Time
}

// IDGenerator выдаёт идентификаторы.
type IDGenerator interface {
	NewID() string
}

// CompletionNotifier сообщает оператору о завершённой кампании.
type CompletionNotifier interface {
	NotifyCompletion(ctx context.Context, event CampaignEvent) error
}
