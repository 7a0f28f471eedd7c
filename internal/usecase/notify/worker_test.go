package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

type scriptedQueue struct {
	mu     sync.Mutex
	events []domain.CampaignEvent
	acks   []bool
	cancel context.CancelFunc
}

func (q *scriptedQueue) Enqueue(_ context.Context, event domain.CampaignEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, event)
	return nil
}

func (q *scriptedQueue) Receive(ctx context.Context) (domain.CampaignEvent, domain.AckFunc, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		q.cancel()
		return domain.CampaignEvent{}, nil, context.Canceled
	}
	event := q.events[0]
	q.events = q.events[1:]
	return event, func(success bool) error {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.acks = append(q.acks, success)
		if !success {
			q.events = append(q.events, event)
		}
		return nil
	}, nil
}

type flakyNotifier struct {
	failures int
	calls    []string
}

func (n *flakyNotifier) NotifyCompletion(_ context.Context, event domain.CampaignEvent) error {
	n.calls = append(n.calls, event.ID)
	if n.failures > 0 {
		n.failures--
		return errors.New("telegram недоступен")
	}
	return nil
}

func runWorker(t *testing.T, notifier domain.CompletionNotifier, events ...domain.CampaignEvent) *scriptedQueue {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := &scriptedQueue{events: events, cancel: cancel}
	w := NewWorker(q, notifier, zerolog.Nop())
	w.retryDelay = 0
	w.Run(ctx)
	return q
}

func TestWorkerDeliversAndAcks(t *testing.T) {
	n := &flakyNotifier{}
	q := runWorker(t, n, domain.CampaignEvent{ID: "a"}, domain.CampaignEvent{ID: "b"})

	require.Equal(t, []string{"a", "b"}, n.calls)
	require.Equal(t, []bool{true, true}, q.acks)
}

func TestWorkerRetriesThenSucceeds(t *testing.T) {
	n := &flakyNotifier{failures: 1}
	q := runWorker(t, n, domain.CampaignEvent{ID: "a"})

	require.Equal(t, []string{"a", "a"}, n.calls)
	require.Equal(t, []bool{false, true}, q.acks)
}

func TestWorkerDropsAfterMaxAttempts(t *testing.T) {
	n := &flakyNotifier{failures: 10}
	q := runWorker(t, n, domain.CampaignEvent{ID: "a"})

	require.Len(t, n.calls, MaxDeliveryAttempts)
	require.Equal(t, []bool{false, false, true}, q.acks)
}

func TestWorkerSkipsEventsWithoutID(t *testing.T) {
	n := &flakyNotifier{}
	q := runWorker(t, n, domain.CampaignEvent{})

	require.Empty(t, n.calls)
	require.Equal(t, []bool{true}, q.acks)
}

func TestWorkerAcksDuplicateDelivery(t *testing.T) {
	n := &flakyNotifier{}
	q := runWorker(t, n, domain.CampaignEvent{ID: "a"}, domain.CampaignEvent{ID: "a"})

	require.Equal(t, []string{"a"}, n.calls)
	require.Equal(t, []bool{true, true}, q.acks)
}

func TestWorkerForgetsOldDeliveries(t *testing.T) {
	w := NewWorker(&scriptedQueue{}, &flakyNotifier{}, zerolog.Nop())
	w.window = 2
	for _, id := range []string{"a", "b", "c"} {
		_, delivered := w.begin(id)
		require.False(t, delivered)
		w.finish(id, true)
	}

	require.Len(t, w.delivered, 2)
	require.Equal(t, []string{"b", "c"}, w.order)
	_, delivered := w.begin("c")
	require.True(t, delivered)
	_, delivered = w.begin("a")
	require.False(t, delivered)
}
