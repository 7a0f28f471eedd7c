package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

func TestGenerateSendsBriefAndParsesPlan(t *testing.T) {
	var got runRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/campaign/run" {
			t.Errorf("неожиданный запрос %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("ожидали JSON, получили %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("тело запроса: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"plan": [
				{"platform": "LinkedIn", "content": "hello", "image_idea": "team photo"},
				{"platform": " YouTube ", "content": "video", "mediaUrl": "https://cdn/x.mp4"}
			],
			"results": [{"platform": "LinkedIn", "status": "success", "id": "x"}],
			"report": "  draft summary  "
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second)
	plan, err := client.Generate(context.Background(), domain.Brief{BrandName: "Acme", Goal: "Launch", Audience: "Devs"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got.BrandName != "Acme" || got.Goal != "Launch" || got.Audience != "Devs" {
		t.Fatalf("бриф передан неверно: %+v", got)
	}
	if len(plan.Plan) != 2 {
		t.Fatalf("ожидали 2 поста, получили %d", len(plan.Plan))
	}
	if plan.Plan[0].ImageIdea != "team photo" {
		t.Fatalf("ожидали image_idea, получили %q", plan.Plan[0].ImageIdea)
	}
	if plan.Plan[1].Platform != domain.PlatformYouTube || plan.Plan[1].MediaURL != "https://cdn/x.mp4" {
		t.Fatalf("второй пост разобран неверно: %+v", plan.Plan[1])
	}
	if plan.Report != "draft summary" {
		t.Fatalf("ожидали обрезанный отчёт, получили %q", plan.Report)
	}
}

func TestGenerateNon2xxIsExternalError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Generate(context.Background(), domain.Brief{BrandName: "a", Goal: "b", Audience: "c"})
	var extErr *domain.ExternalServiceError
	if !errors.As(err, &extErr) {
		t.Fatalf("ожидали ExternalServiceError, получили %v", err)
	}
	if extErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("ожидали код 503, получили %d", extErr.StatusCode)
	}
	if extErr.Error() != "API error: 503" {
		t.Fatalf("неожиданный текст ошибки %q", extErr.Error())
	}
}

func TestGenerateNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Generate(context.Background(), domain.Brief{BrandName: "a", Goal: "b", Audience: "c"})
	var extErr *domain.ExternalServiceError
	if !errors.As(err, &extErr) {
		t.Fatalf("ожидали ExternalServiceError, получили %v", err)
	}
	if extErr.StatusCode != 0 {
		t.Fatalf("ожидали нулевой код для сетевой ошибки, получили %d", extErr.StatusCode)
	}
}

func TestGenerateHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond).Generate(context.Background(), domain.Brief{BrandName: "a", Goal: "b", Audience: "c"})
	if err == nil {
		t.Fatalf("ожидали ошибку по таймауту")
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"status":"healthy","service":"agentic-crm"}`))
	}))
	defer srv.Close()

	health, err := NewClient(srv.URL, time.Second).Health(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if health.Status != "healthy" || health.Service != "agentic-crm" {
		t.Fatalf("неожиданный ответ %+v", health)
	}
}
