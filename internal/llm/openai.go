package llm

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	go_openai "github.com/sashabaranov/go-openai"
)

// 上游模型呼叫的整體逾時
const requestTimeout = 120 * time.Second

// OpenAIClient 透過 OpenAI 相容的 chat/completions API 進行串流推論
type OpenAIClient struct {
	client *go_openai.Client
	logger zerolog.Logger
}

// NewOpenAIClient 建立指向任意 OpenAI 相容端點的客戶端
func NewOpenAIClient(baseURL, apiKey string, logger zerolog.Logger) *OpenAIClient {
	cfg := go_openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIClient{
		client: go_openai.NewClientWithConfig(cfg),
		logger: logger,
	}
}

func (c *OpenAIClient) StreamCompletion(
	ctx context.Context,
	model string,
	messages []ChatMessage,
	temperature float32,
	onDelta func(delta string) error,
) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req := go_openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(messages),
		Temperature: temperature,
		Stream:      true,
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "failed to create completion stream")
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// context 取消也會從 Recv 浮出，原樣回傳讓呼叫端判斷
			return sb.String(), errors.Wrap(err, "completion stream failed")
		}
		if len(response.Choices) == 0 {
			continue
		}

		delta := response.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		sb.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return sb.String(), err
			}
		}
	}

	content := sb.String()
	if strings.TrimSpace(content) == "" || strings.EqualFold(strings.TrimSpace(content), "null") {
		return "", ErrEmptyCompletion
	}

	c.logger.Debug().
		Str("model", model).
		Int("chars", len(content)).
		Msg("completion stream finished")

	return content, nil
}

// ListModels 取得這個端點提供的模型清單
func (c *OpenAIClient) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch models")
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func toOpenAIMessages(messages []ChatMessage) []go_openai.ChatCompletionMessage {
	out := make([]go_openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, go_openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}
