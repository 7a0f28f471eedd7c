package domain

import (
	"context"
	"time"
)

// CampaignEvent сообщает о завершении исполнения кампании.
type CampaignEvent struct {
	ID          string    `json:"event_id"`
	HistoryID   string    `json:"history_id"`
	CampaignID  string    `json:"campaign_id"`
	Brief       Brief     `json:"brief"`
	Total       int       `json:"total"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	Engagements int       `json:"engagements"`
	Impressions int       `json:"impressions"`
	Report      string    `json:"report"`
	CompletedAt time.Time `json:"completed_at"`
}

// EventQueue описывает очередь событий о завершённых кампаниях.
type EventQueue interface {
	Enqueue(ctx context.Context, event CampaignEvent) error
	Receive(ctx context.Context) (CampaignEvent, AckFunc, error)
}

// AckFunc подтверждает успешную обработку или запрашивает повтор доставки события.
type AckFunc func(success bool) error
