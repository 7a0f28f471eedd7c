package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

type fakeSender struct {
	sent   []tgbotapi.MessageConfig
	failAt int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable")
	}
	f.sent = append(f.sent, msg)
	if f.failAt > 0 && len(f.sent) == f.failAt {
		return tgbotapi.Message{}, errors.New("telegram down")
	}
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func TestNotifyCompletionSendsHTML(t *testing.T) {
	bot := &fakeSender{}
	n := NewNotifier(bot, 42)

	event := domain.CampaignEvent{
		ID:          "ev-1",
		Brief:       domain.Brief{BrandName: "Acme <Labs>", Goal: "Launch", Audience: "Devs"},
		Total:       3,
		Succeeded:   2,
		Failed:      1,
		Report:      "All good",
		CompletedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := n.NotifyCompletion(context.Background(), event); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(bot.sent) != 1 {
		t.Fatalf("ожидали одно сообщение, получили %d", len(bot.sent))
	}
	msg := bot.sent[0]
	if msg.ChatID != 42 || msg.ParseMode != tgbotapi.ModeHTML || !msg.DisableWebPagePreview {
		t.Fatalf("неверные параметры сообщения: %+v", msg)
	}
	if !strings.Contains(msg.Text, "Acme &lt;Labs&gt;") {
		t.Fatalf("бренд должен быть экранирован: %q", msg.Text)
	}
}

func TestSendHTMLSplitsAndStopsOnError(t *testing.T) {
	bot := &fakeSender{failAt: 2}
	n := NewNotifier(bot, 7)
	n.limit = 10

	err := n.SendHTML(context.Background(), "0123456789\nabcdefghij\nxyz")
	if err == nil || !strings.Contains(err.Error(), "send part 2") {
		t.Fatalf("ожидали ошибку второй части, получили %v", err)
	}
	if len(bot.sent) != 2 {
		t.Fatalf("после ошибки отправка должна прекратиться, отправлено %d", len(bot.sent))
	}
}

func TestSendHTMLRespectsContext(t *testing.T) {
	bot := &fakeSender{}
	n := NewNotifier(bot, 7)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := n.SendHTML(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("ожидали context.Canceled, получили %v", err)
	}
	if len(bot.sent) != 0 {
		t.Fatalf("сообщения не должны уходить после отмены")
	}
}
