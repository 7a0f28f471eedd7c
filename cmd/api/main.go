package main

import (
	"context"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/adapters/analyzer"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/adapters/generator"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/adapters/guard"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/adapters/history"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/adapters/httpapi"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/adapters/logsink"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/adapters/publisher"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/adapters/repo"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/adapters/reporter"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/adapters/rewriter"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/adapters/system"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/cache"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/config"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/db"
	httpinfra "github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/http"
	applog "github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/log"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/metrics"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/openai"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/queue"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/usecase/execution"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/usecase/lifecycle"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, applog.Component(logger, "metrics"), cfg.MetricsAddr)

	clock := system.Clock{Location: cfg.Location()}
	ids := system.UUIDGenerator{}

	logs := logsink.NewMemory(clock, cfg.Limits.LogSinkMax, applog.Component(logger, "log_sink"))
	logs.Append("System initialized", domain.LogInfo)
	logs.Append("Ready to run campaigns", domain.LogInfo)

	var historyRepo domain.HistoryRepo = history.NewMemory(cfg.Limits.HistoryMax)
	if cfg.PGDSN != "" {
		pool, err := db.Connect(ctx, cfg.PGDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: нет подключения к БД")
		}
		defer pool.Close()
		pg := repo.NewPostgres(pool, cfg.Limits.HistoryMax)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("api: не удалось подготовить схему истории")
		}
		historyRepo = pg
		logger.Info().Msg("api: история кампаний хранится в Postgres")
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: нет подключения к Redis")
		}
		defer client.Close()
		redisClient = client
	}

	var rewriteGuard domain.RewriteGuard = guard.NewMemory()
	if redisClient != nil {
		rewriteGuard = cache.NewRedisLock(redisClient, "campaign:lock:", time.Minute)
	}

	events := buildEventQueue(cfg, redisClient, logger)

	var (
		rep domain.Reporter         = reporter.NewSimple(cfg.Execution.ReportDelay)
		rw  domain.Rewriter         = rewriter.NewSimple(cfg.Execution.RewriteDelay)
		an  domain.AudienceAnalyzer = analyzer.NewSimple(cfg.Execution.AnalyzeDelay)
	)
	if cfg.OpenAI.APIKey != "" {
		llm := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Timeout)
		rep = reporter.NewOpenAI(llm, cfg.OpenAI.Model, cfg.OpenAI.Timeout)
		rw = rewriter.NewOpenAI(llm, cfg.OpenAI.Model, cfg.OpenAI.Timeout)
		an = analyzer.NewOpenAI(llm, cfg.OpenAI.Model, cfg.OpenAI.Timeout)
		logger.Info().Str("model", cfg.OpenAI.Model).Msg("api: отчёты и переписывание через OpenAI")
	}

	engine := execution.NewEngine(
		publisher.NewSimulated(cfg.Execution.PublishDelay, publisher.DefaultPolicy()),
		publisher.NewRand(cfg.Execution.MetricsSeed),
		clock,
		ids,
		applog.Component(logger, "executor"),
	)

	ctrl := lifecycle.NewController(lifecycle.Deps{
		Generator:       generator.NewClient(cfg.Generator.BaseURL, cfg.Generator.Timeout),
		Engine:          engine,
		Reporter:        rep,
		Rewriter:        rw,
		Analyzer:        an,
		History:         historyRepo,
		Logs:            logs,
		Guard:           rewriteGuard,
		Events:          events,
		Clock:           clock,
		IDs:             ids,
		GenerateTimeout: cfg.Generator.Timeout,
	}, applog.Component(logger, "lifecycle"))

	healthCtx, healthCancel := context.WithTimeout(ctx, 10*time.Second)
	if _, err := ctrl.CheckHealth(healthCtx); err != nil {
		logger.Warn().Err(err).Msg("api: сервис генерации недоступен")
	}
	healthCancel()

	server := httpinfra.NewServer(applog.Component(logger, "http"))
	httpapi.NewHandler(ctrl, logs, clock, applog.Component(logger, "httpapi")).Register(server.Router)

	go func() {
		if err := server.Start(":" + strconv.Itoa(cfg.Port)); err != nil {
			logger.Error().Err(err).Msg("api: сервер остановлен")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("api: остановка")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: ошибка остановки HTTP сервера")
	}
	if err := ctrl.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: исполнение не завершилось вовремя")
	}
	if closer, ok := events.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

// buildEventQueue выбирает транспорт событий: RabbitMQ, затем Redis; без них события не публикуются.
func buildEventQueue(cfg config.AppConfig, redisClient *redis.Client, logger zerolog.Logger) domain.EventQueue {
	switch {
	case cfg.RabbitURL != "":
		q, err := queue.NewRabbitEventQueue(cfg.RabbitURL, cfg.Queues.Events)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: не удалось инициализировать очередь RabbitMQ")
		}
		return q
	case redisClient != nil:
		return queue.NewRedisEventQueue(redisClient, cfg.Queues.Events)
	default:
		logger.Info().Msg("api: очередь событий не настроена, уведомления отключены")
		return nil
	}
}
