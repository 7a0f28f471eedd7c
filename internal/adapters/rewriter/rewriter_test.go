package rewriter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
	openai "github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/openai"
)

func TestSimpleAppendsSuffix(t *testing.T) {
	got, err := NewSimple(0).Rewrite(context.Background(), domain.ContentItem{Content: "Hello"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	want := "Hello\n\n[AI Enhanced] Added engaging call-to-action and optimized hashtags for better reach."
	if got != want {
		t.Fatalf("ожидали %q, получили %q", want, got)
	}
}

func TestSimpleHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSimple(time.Hour).Rewrite(ctx, domain.ContentItem{Content: "x"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("ожидали context.Canceled, получили %v", err)
	}
}

type stubChat struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (s *stubChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.req = req
	return s.resp, s.err
}

func TestOpenAIReturnsCompletionText(t *testing.T) {
	chat := &stubChat{resp: openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatMessage{Content: "  Better post #launch  "}}}}}
	got, err := NewOpenAI(chat, "", 0).Rewrite(context.Background(), domain.ContentItem{Platform: domain.PlatformLinkedIn, Content: "Post"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got != "Better post #launch" {
		t.Fatalf("неожиданный текст %q", got)
	}
	if chat.req.Model != "gpt-4.1-mini" {
		t.Fatalf("ожидали модель по умолчанию, получили %q", chat.req.Model)
	}
	if !strings.Contains(chat.req.Messages[1].Content, "LinkedIn") {
		t.Fatalf("в запросе нет площадки: %q", chat.req.Messages[1].Content)
	}
}

func TestOpenAIEmptyCompletion(t *testing.T) {
	chat := &stubChat{}
	if _, err := NewOpenAI(chat, "m", time.Second).Rewrite(context.Background(), domain.ContentItem{Content: "Post"}); !errors.Is(err, openai.ErrEmptyCompletion) {
		t.Fatalf("ожидали ErrEmptyCompletion, получили %v", err)
	}
}

func TestOpenAIOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("нет заголовка авторизации")
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Rewritten"}}],"usage":{"prompt_tokens":3,"completion_tokens":2}}`))
	}))
	defer srv.Close()

	client := openai.NewClient("key", srv.URL, time.Second)
	got, err := NewOpenAI(client, "m", time.Second).Rewrite(context.Background(), domain.ContentItem{Content: "Post"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got != "Rewritten" {
		t.Fatalf("неожиданный текст %q", got)
	}
}
