package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/metrics"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/usecase/report"
)

// sender — часть *tgbotapi.BotAPI, нужная для отправки.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier отправляет сводку по завершённой кампании в чат Telegram.
type Notifier struct {
	bot    sender
	chatID int64
	limit  int
}

var _ domain.CompletionNotifier = (*Notifier)(nil)

// NewNotifier создаёт уведомитель для чата chatID.
func NewNotifier(bot sender, chatID int64) *Notifier {
	return &Notifier{bot: bot, chatID: chatID, limit: MessageLimit}
}

// NotifyCompletion форматирует событие и отправляет его частями.
func (n *Notifier) NotifyCompletion(ctx context.Context, event domain.CampaignEvent) error {
	return n.SendHTML(ctx, report.FormatCompletion(event))
}

// SendHTML отправляет HTML-текст, разбивая его по лимиту Telegram.
func (n *Notifier) SendHTML(ctx context.Context, text string) error {
	target := strconv.FormatInt(n.chatID, 10)
	for i, part := range SplitMessage(text, n.limit) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(n.chatID, part)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true

		start := time.Now()
		_, err := n.bot.Send(msg)
		metrics.ObserveNetworkRequest("telegram_bot", "send_message", target, start, err)
		if err != nil {
			return fmt.Errorf("send part %d: %w", i+1, err)
		}
	}
	return nil
}
