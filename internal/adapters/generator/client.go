package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/metrics"
)

const maxResponseBytes = 4 << 20

// Client обращается к агентному сервису генерации кампаний.
type Client struct {
	http    *http.Client
	baseURL string
}

var _ domain.PlanGenerator = (*Client)(nil)

// NewClient создаёт клиента. Таймаут ограничивает каждый запрос целиком.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type runRequest struct {
	BrandName string `json:"brand_name"`
	Goal      string `json:"goal"`
	Audience  string `json:"audience"`
}

type runResponse struct {
	Plan    []planItem      `json:"plan"`
	Results json.RawMessage `json:"results,omitempty"`
	Report  string          `json:"report,omitempty"`
}

// planItem принимает оба варианта имён полей, которые отдаёт сервис.
type planItem struct {
	Platform      string `json:"platform"`
	Content       string `json:"content"`
	ImageIdea     string `json:"image_idea"`
	MediaURL      string `json:"mediaUrl"`
	MediaURLSnake string `json:"media_url"`
	ScheduledDate string `json:"scheduledDate"`
	ScheduledTime string `json:"scheduledTime"`
}

func (p planItem) toDomain() domain.ContentItem {
	media := p.MediaURL
	if media == "" {
		media = p.MediaURLSnake
	}
	return domain.ContentItem{
		Platform:      domain.Platform(strings.TrimSpace(p.Platform)),
		Content:       p.Content,
		ImageIdea:     p.ImageIdea,
		MediaURL:      media,
		ScheduledDate: p.ScheduledDate,
		ScheduledTime: p.ScheduledTime,
	}
}

// Generate вызывает POST /campaign/run.
func (c *Client) Generate(ctx context.Context, brief domain.Brief) (domain.GeneratedPlan, error) {
	body, err := json.Marshal(runRequest{BrandName: brief.BrandName, Goal: brief.Goal, Audience: brief.Audience})
	if err != nil {
		return domain.GeneratedPlan{}, fmt.Errorf("generator: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/campaign/run", bytes.NewReader(body))
	if err != nil {
		return domain.GeneratedPlan{}, fmt.Errorf("generator: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var payload runResponse
	start := time.Now()
	err = c.doJSON(req, &payload)
	metrics.ObserveNetworkRequest("generator", "campaign_run", c.baseURL, start, err)
	if err != nil {
		return domain.GeneratedPlan{}, err
	}

	plan := make([]domain.ContentItem, 0, len(payload.Plan))
	for _, item := range payload.Plan {
		plan = append(plan, item.toDomain())
	}
	return domain.GeneratedPlan{Plan: plan, Report: strings.TrimSpace(payload.Report)}, nil
}

// Health вызывает GET /health.
func (c *Client) Health(ctx context.Context) (domain.ServiceHealth, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return domain.ServiceHealth{}, fmt.Errorf("generator: build request: %w", err)
	}
	var health domain.ServiceHealth
	start := time.Now()
	err = c.doJSON(req, &health)
	metrics.ObserveNetworkRequest("generator", "health", c.baseURL, start, err)
	return health, err
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.ExternalServiceError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return &domain.ExternalServiceError{StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return &domain.ExternalServiceError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
