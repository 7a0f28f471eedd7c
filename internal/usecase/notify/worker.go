package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

// MaxDeliveryAttempts — сколько раз событие возвращается в очередь после ошибки.
const MaxDeliveryAttempts = 3

// deliveredWindow — сколько последних доставленных событий помнит обработчик.
const deliveredWindow = 1024

// Worker читает события завершения кампаний и пересылает их оператору.
type Worker struct {
	queue      domain.EventQueue
	notifier   domain.CompletionNotifier
	log        zerolog.Logger
	retryDelay time.Duration

	mu        sync.Mutex
	attempts  map[string]int
	delivered map[string]struct{}
	order     []string
	window    int
}

// NewWorker создаёт обработчик очереди событий.
func NewWorker(queue domain.EventQueue, notifier domain.CompletionNotifier, log zerolog.Logger) *Worker {
	return &Worker{
		queue:      queue,
		notifier:   notifier,
		log:        log,
		retryDelay: time.Second,
		attempts:   make(map[string]int),
		delivered:  make(map[string]struct{}),
		window:     deliveredWindow,
	}
}

// Run обрабатывает события до отмены контекста.
func (w *Worker) Run(ctx context.Context) {
	for {
		event, ack, err := w.queue.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("notifier: ошибка чтения очереди")
			if !w.sleep(ctx) {
				return
			}
			continue
		}
		w.handle(ctx, event, ack)
	}
}

func (w *Worker) handle(ctx context.Context, event domain.CampaignEvent, ack domain.AckFunc) {
	eventLog := w.log.With().
		Str("event_id", event.ID).
		Str("campaign_id", event.CampaignID).
		Str("history_id", event.HistoryID).
		Logger()

	if event.ID == "" {
		eventLog.Error().Msg("notifier: событие без идентификатора, подтверждаем и пропускаем")
		w.ack(eventLog, ack, true)
		return
	}

	attempt, delivered := w.begin(event.ID)
	if delivered {
		eventLog.Info().Msg("notifier: событие уже доставлено, подтверждаем")
		w.ack(eventLog, ack, true)
		return
	}
	eventLog = eventLog.With().Int("attempt", attempt).Logger()

	if err := w.notifier.NotifyCompletion(ctx, event); err != nil {
		if attempt < MaxDeliveryAttempts && ctx.Err() == nil {
			eventLog.Warn().Err(err).Msg("notifier: не удалось отправить уведомление, повторим позже")
			w.ack(eventLog, ack, false)
			w.sleep(ctx)
			return
		}
		eventLog.Error().Err(err).Msg("notifier: достигнут предел попыток, событие отброшено")
		w.finish(event.ID, false)
		w.ack(eventLog, ack, true)
		return
	}

	w.finish(event.ID, true)
	eventLog.Info().Msg("notifier: уведомление отправлено")
	w.ack(eventLog, ack, true)
}

func (w *Worker) begin(id string) (attempt int, delivered bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.delivered[id]; ok {
		return 0, true
	}
	w.attempts[id]++
	return w.attempts[id], false
}

func (w *Worker) finish(id string, delivered bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.attempts, id)
	if !delivered {
		return
	}
	w.delivered[id] = struct{}{}
	w.order = append(w.order, id)
	if len(w.order) > w.window {
		evicted := len(w.order) - w.window
		for _, old := range w.order[:evicted] {
			delete(w.delivered, old)
		}
		w.order = append([]string(nil), w.order[evicted:]...)
	}
}

func (w *Worker) ack(log zerolog.Logger, ack domain.AckFunc, success bool) {
	if ack == nil {
		return
	}
	if err := ack(success); err != nil {
		log.Error().Err(err).Bool("success", success).Msg("notifier: не удалось подтвердить событие")
	}
}

func (w *Worker) sleep(ctx context.Context) bool {
	if w.retryDelay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(w.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
