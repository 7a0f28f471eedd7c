package reporter

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

// OpenAI пишет executive summary через Chat Completions.
type OpenAI struct {
	client  chatClient
	model   string
	timeout time.Duration
}

var _ domain.Reporter = (*OpenAI)(nil)

// NewOpenAI создаёт Reporter на LLM.
func NewOpenAI(client chatClient, model string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = "gpt-4.1-mini"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAI{client: client, model: model, timeout: timeout}
}

// Report просит модель описать итоги. Факты берутся из детерминированного резюме.
func (o *OpenAI) Report(ctx context.Context, c domain.Campaign) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf(`Write a short executive summary in markdown for this social media campaign.
Brand: %s
Goal: %s
Target audience: %s

Execution data:
%s

Use only the numbers above. Finish with two or three recommendations.`,
		c.Brief.BrandName, c.Brief.Goal, c.Brief.Audience, Summarize(c))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.3,
		MaxTokens:   800,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: "You are a marketing analyst. Do not invent metrics."},
			{Role: openai.RoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	return resp.Text()
}
