package main

import (
	"context"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/adapters/telegram"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/cache"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/config"
	applog "github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/log"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/metrics"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/queue"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/usecase/notify"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, applog.Component(logger, "metrics"), cfg.MetricsAddr)

	if cfg.Telegram.Token == "" {
		logger.Fatal().Msg("notifier: не указан токен Telegram (TG_BOT_TOKEN)")
	}
	if cfg.Telegram.NotifyChatID == 0 {
		logger.Fatal().Msg("notifier: не указан чат для уведомлений (TG_NOTIFY_CHAT_ID)")
	}
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("notifier: не удалось создать бота")
	}

	var events domain.EventQueue
	switch {
	case cfg.RabbitURL != "":
		q, err := queue.NewRabbitEventQueue(cfg.RabbitURL, cfg.Queues.Events)
		if err != nil {
			logger.Fatal().Err(err).Msg("notifier: не удалось инициализировать очередь RabbitMQ")
		}
		defer q.Close()
		events = q
	case cfg.RedisAddr != "":
		client, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Fatal().Err(err).Msg("notifier: нет подключения к Redis")
		}
		defer client.Close()
		events = queue.NewRedisEventQueue(client, cfg.Queues.Events)
	default:
		logger.Fatal().Msg("notifier: не указана очередь событий (RABBITMQ_URL или REDIS_ADDR)")
	}

	worker := notify.NewWorker(events, telegram.NewNotifier(botAPI, cfg.Telegram.NotifyChatID), applog.Component(logger, "notifier"))
	logger.Info().Str("queue", cfg.Queues.Events).Msg("notifier: старт")
	worker.Run(ctx)
	logger.Info().Msg("notifier: остановка")
}
