package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

// ErrInvalidTimezone возвращается, если указан некорректный часовой пояс.
var ErrInvalidTimezone = errors.New("invalid timezone")

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	TZ          string `envconfig:"TZ" default:"UTC"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	Generator struct {
		BaseURL string        `envconfig:"GENERATOR_BASE_URL" default:"https://agentic-crm-api.onrender.com"`
		Timeout time.Duration `envconfig:"GENERATOR_TIMEOUT" default:"60s"`
	} `envconfig:""`

	Execution struct {
		PublishDelay time.Duration `envconfig:"PUBLISH_DELAY" default:"2s"`
		RewriteDelay time.Duration `envconfig:"REWRITE_DELAY" default:"2s"`
		ReportDelay  time.Duration `envconfig:"REPORT_DELAY" default:"1500ms"`
		AnalyzeDelay time.Duration `envconfig:"ANALYZE_DELAY" default:"2s"`
		MetricsSeed  uint64        `envconfig:"METRICS_SEED" default:"0"`
	} `envconfig:""`

	Limits struct {
		HistoryMax int `envconfig:"HISTORY_MAX_ENTRIES" default:"100"`
		LogSinkMax int `envconfig:"LOG_SINK_MAX" default:"0"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`
	RabbitURL string `envconfig:"RABBITMQ_URL"`

	Queues struct {
		Events string `envconfig:"EVENTS_QUEUE_KEY" default:"campaign_events"`
	} `envconfig:""`

	OpenAI struct {
		APIKey  string        `envconfig:"OPENAI_API_KEY"`
		BaseURL string        `envconfig:"OPENAI_BASE_URL"`
		Model   string        `envconfig:"OPENAI_MODEL" default:"gpt-4.1-mini"`
		Timeout time.Duration `envconfig:"OPENAI_TIMEOUT" default:"30s"`
	} `envconfig:""`

	Telegram struct {
		Token        string `envconfig:"TG_BOT_TOKEN"`
		NotifyChatID int64  `envconfig:"TG_NOTIFY_CHAT_ID"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Parse читает конфиг из окружения и нормализует часовой пояс.
func Parse() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	tz, err := NormalizeTimezone(cfg.TZ)
	if err != nil {
		return AppConfig{}, fmt.Errorf("TZ=%q: %w", cfg.TZ, err)
	}
	cfg.TZ = tz
	return cfg, nil
}

// Location возвращает часовой пояс для расчёта расписания.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NormalizeTimezone приводит имя зоны к виду IANA ("europe/amsterdam" -> "Europe/Amsterdam").
func NormalizeTimezone(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", ErrInvalidTimezone
	}
	candidate = strings.ReplaceAll(candidate, " ", "_")
	if _, err := time.LoadLocation(candidate); err == nil {
		return candidate, nil
	}

	parts := strings.Split(strings.ToLower(candidate), "/")
	titled := make([]string, len(parts))
	for i, part := range parts {
		titled[i] = titleJoin(part, "_", func(segment string) string {
			return titleJoin(segment, "-", capitalize)
		})
	}
	// Аббревиатуры зон пишутся заглавными: "utc" -> "UTC", "etc/gmt+3" -> "Etc/GMT+3".
	upperTail := append([]string{titled[0]}, parts[1:]...)
	for i := 1; i < len(upperTail); i++ {
		upperTail[i] = strings.ToUpper(upperTail[i])
	}
	variants := []string{
		strings.ToUpper(candidate),
		strings.Join(titled, "/"),
		strings.Join(upperTail, "/"),
	}
	for _, v := range variants {
		if _, err := time.LoadLocation(v); err == nil {
			return v, nil
		}
	}
	return "", ErrInvalidTimezone
}

func titleJoin(s, sep string, fn func(string) string) string {
	pieces := strings.Split(s, sep)
	for i, piece := range pieces {
		pieces[i] = fn(piece)
	}
	return strings.Join(pieces, sep)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
