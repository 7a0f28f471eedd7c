package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	openai "github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/openai"
)

func TestSimpleReturnsInsights(t *testing.T) {
	got, err := NewSimple(0).Analyze(context.Background(), "Devs")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got != DefaultInsights {
		t.Fatalf("неожиданные рекомендации %q", got)
	}
}

func TestSimpleHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSimple(time.Hour).Analyze(ctx, "Devs"); !errors.Is(err, context.Canceled) {
		t.Fatalf("ожидали context.Canceled, получили %v", err)
	}
}

type stubChat struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
}

func (s *stubChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.req = req
	return s.resp, nil
}

func TestOpenAIPromptContainsAudience(t *testing.T) {
	chat := &stubChat{resp: openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatMessage{Content: "Use LinkedIn"}}}}}
	got, err := NewOpenAI(chat, "", 0).Analyze(context.Background(), "CTOs in fintech")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got != "Use LinkedIn" {
		t.Fatalf("неожиданный ответ %q", got)
	}
	if !strings.Contains(chat.req.Messages[1].Content, "CTOs in fintech") {
		t.Fatalf("в запросе нет аудитории: %q", chat.req.Messages[1].Content)
	}
}
