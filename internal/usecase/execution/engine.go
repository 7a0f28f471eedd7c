package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/metrics"
)

// Диапазоны синтетических метрик, включительно.
var (
	likesRange       = [2]int{50, 549}
	sharesRange      = [2]int{10, 109}
	commentsRange    = [2]int{5, 54}
	impressionsRange = [2]int{1000, 5999}
	reachRange       = [2]int{500, 3499}
)

// ReasonCancelled — причина ошибки для постов, не опубликованных из-за отмены прогона.
const ReasonCancelled = "cancelled"

// Observer получает каждое изменение результата в порядке исполнения.
type Observer func(index int, result domain.ExecutionResult)

// Engine последовательно публикует посты плана.
type Engine struct {
	publisher domain.Publisher
	rnd       domain.RandSource
	clock     domain.Clock
	ids       domain.IDGenerator
	log       zerolog.Logger
}

// NewEngine создаёт движок исполнения.
func NewEngine(publisher domain.Publisher, rnd domain.RandSource, clock domain.Clock, ids domain.IDGenerator, logger zerolog.Logger) *Engine {
	return &Engine{publisher: publisher, rnd: rnd, clock: clock, ids: ids, log: logger}
}

// Run публикует посты строго по порядку, по одному. Ошибка поста не прерывает прогон:
// каждый пост получает финальный результат. Отмена ctx завершает оставшиеся посты
// со статусом error и причиной ReasonCancelled.
func (e *Engine) Run(ctx context.Context, items []domain.ContentItem, observe Observer) []domain.ExecutionResult {
	if observe == nil {
		observe = func(int, domain.ExecutionResult) {}
	}

	results := make([]domain.ExecutionResult, len(items))
	for i, item := range items {
		results[i] = domain.ExecutionResult{ID: e.ids.NewID(), Platform: item.Platform, Status: domain.ResultPending}
		observe(i, results[i])
	}

	for i, item := range items {
		if results[i].Platform != item.Platform {
			panic(fmt.Sprintf("execution: result %d platform %q does not match item %q", i, results[i].Platform, item.Platform))
		}
		if err := ctx.Err(); err != nil {
			results[i] = e.finish(results[i], err)
			observe(i, results[i])
			continue
		}

		results[i].Status = domain.ResultExecuting
		observe(i, results[i])

		start := time.Now()
		err := e.publisher.Publish(ctx, item)
		results[i] = e.finish(results[i], err)
		metrics.ObserveExecutionItem(string(item.Platform), string(results[i].Status), time.Since(start))
		e.log.Debug().Int("index", i).Str("platform", string(item.Platform)).Str("status", string(results[i].Status)).Msg("execution: пост обработан")
		observe(i, results[i])
	}
	return results
}

func (e *Engine) finish(res domain.ExecutionResult, publishErr error) domain.ExecutionResult {
	executedAt := e.clock.Now()
	res.ExecutedAt = &executedAt
	if publishErr != nil {
		res.Status = domain.ResultError
		res.Error = publishErr.Error()
		if errors.Is(publishErr, context.Canceled) || errors.Is(publishErr, context.DeadlineExceeded) {
			res.Error = ReasonCancelled
		}
		return res
	}
	res.Status = domain.ResultSuccess
	res.Metrics = &domain.Engagement{
		Likes:       e.between(likesRange),
		Shares:      e.between(sharesRange),
		Comments:    e.between(commentsRange),
		Impressions: e.between(impressionsRange),
		Reach:       e.between(reachRange),
	}
	return res
}

func (e *Engine) between(bounds [2]int) int {
	return bounds[0] + e.rnd.IntN(bounds[1]-bounds[0]+1)
}
