package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
	openai "github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/openai"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI анализирует аудиторию через Chat Completions.
type OpenAI struct {
	client  chatClient
	model   string
	timeout time.Duration
}

var _ domain.AudienceAnalyzer = (*OpenAI)(nil)

// NewOpenAI создаёт анализатор на LLM.
func NewOpenAI(client chatClient, model string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = "gpt-4.1-mini"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAI{client: client, model: model, timeout: timeout}
}

// Analyze просит модель подобрать площадки, время публикаций и форматы.
func (o *OpenAI) Analyze(ctx context.Context, audience string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	prompt := fmt.Sprintf(`Target audience: %s

In 2-4 sentences estimate engagement potential, recommend platforms among LinkedIn, YouTube and Threads,
best posting times and suitable content types. Plain text, no markdown.`, audience)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.4,
		MaxTokens:   300,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: "You are a social media marketing analyst."},
			{Role: openai.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	return resp.Text()
}
