package llm

import (
	"context"

	"github.com/pkg/errors"
)

// ChatMessage 送往模型的單則訊息，role 只會是 system/user/assistant
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyCompletion 模型回傳了空白或 "null" 的內容
var ErrEmptyCompletion = errors.New("received empty or null response from LLM API")

// Client 對模型供應商的介面
// StreamCompletion 的 onDelta 會在每個增量片段抵達時被呼叫，
// onDelta 回傳錯誤會中斷串流；回傳值是完整累積的最終文字
type Client interface {
	StreamCompletion(ctx context.Context, model string, messages []ChatMessage, temperature float32, onDelta func(delta string) error) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}
