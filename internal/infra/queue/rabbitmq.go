package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/metrics"
)

// ErrQueueClosed возвращается, если канал доставки RabbitMQ закрыт.
var ErrQueueClosed = errors.New("rabbitmq: delivery channel closed")

// RabbitEventQueue реализует очередь событий через RabbitMQ (durable queue, ручной ack).
type RabbitEventQueue struct {
	conn  *amqp.Connection
	queue string

	mu         sync.Mutex
	ch         *amqp.Channel
	deliveries <-chan amqp.Delivery
}

var _ domain.EventQueue = (*RabbitEventQueue)(nil)

// NewRabbitEventQueue подключается к брокеру и объявляет очередь.
func NewRabbitEventQueue(amqpURL, queue string) (*RabbitEventQueue, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		return nil, errors.New("queue name is empty")
	}
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &RabbitEventQueue{conn: conn, queue: queue, ch: ch}, nil
}

// Enqueue публикует событие в очередь.
func (q *RabbitEventQueue) Enqueue(ctx context.Context, event domain.CampaignEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.CompletedAt,
		Body:         payload,
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	start := time.Now()
	err = q.ch.PublishWithContext(ctx, "", q.queue, false, false, msg)
	metrics.ObserveNetworkRequest("rabbitmq", "publish", q.queue, start, err)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Receive блокирующе читает событие из очереди.
func (q *RabbitEventQueue) Receive(ctx context.Context) (domain.CampaignEvent, domain.AckFunc, error) {
	deliveries, err := q.consume()
	if err != nil {
		return domain.CampaignEvent{}, nil, err
	}
	for {
		select {
		case <-ctx.Done():
			return domain.CampaignEvent{}, nil, ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return domain.CampaignEvent{}, nil, ErrQueueClosed
			}
			var event domain.CampaignEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				// Битое сообщение не переотправляем, иначе оно зациклится.
				_ = d.Nack(false, false)
				return domain.CampaignEvent{}, nil, fmt.Errorf("decode event: %w", err)
			}
			ack := func(success bool) error {
				if success {
					return d.Ack(false)
				}
				return d.Nack(false, true)
			}
			return event, ack, nil
		}
	}
}

func (q *RabbitEventQueue) consume() (<-chan amqp.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.deliveries != nil {
		return q.deliveries, nil
	}
	if err := q.ch.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := q.ch.Consume(q.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}
	q.deliveries = deliveries
	return deliveries, nil
}

// Close закрывает соединение с брокером.
func (q *RabbitEventQueue) Close() error {
	return q.conn.Close()
}
