package rewriter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
	openai "github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/openai"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI переписывает посты через Chat Completions.
type OpenAI struct {
	client  chatClient
	model   string
	timeout time.Duration
}

var _ domain.Rewriter = (*OpenAI)(nil)

// NewOpenAI создаёт переписчик.
func NewOpenAI(client chatClient, model string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = "gpt-4.1-mini"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAI{client: client, model: model, timeout: timeout}
}

// Rewrite возвращает улучшенный текст поста.
func (o *OpenAI) Rewrite(ctx context.Context, item domain.ContentItem) (string, error) {
	text := strings.TrimSpace(item.Content)
	if text == "" {
		return item.Content, nil
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf(`Rewrite this %s post to be more engaging.
Add a clear call-to-action and a few relevant hashtags. Keep the facts and the language of the original.
Return only the post text.

%s`, platformLabel(item.Platform), clipRunes(text, 3000))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.7,
		MaxTokens:   600,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: "You are a social media copywriter."},
			{Role: openai.RoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	rewritten, err := resp.Text()
	if err != nil {
		return "", err
	}
	return rewritten, nil
}

func platformLabel(p domain.Platform) string {
	if strings.TrimSpace(string(p)) == "" {
		return "social media"
	}
	return string(p)
}

func clipRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
