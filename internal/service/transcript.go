package service

import (
	"aichat_web/internal/llm"
	"aichat_web/internal/models"
)

// fallbackSenderName 無法解析發言者身分時使用的名稱
const fallbackSenderName = "User"

// ProjectTranscript 把共用的對話紀錄投影成某位發言者視角的雙角色訊息序列
// 下游模型只懂 assistant/user 兩種角色，多人對話靠在別人的發言前
// 加上名字前綴來模擬：自己說過的話是 assistant，其他人的話都算 user
// history 需已依建立時間排序
func ProjectTranscript(history []models.Message, viewpoint *models.Identity) []llm.ChatMessage {
	projected := make([]llm.ChatMessage, 0, len(history))
	for _, msg := range history {
		if msg.IdentityID == viewpoint.ID {
			projected = append(projected, llm.ChatMessage{
				Role:    llm.RoleAssistant,
				Content: msg.Content,
			})
			continue
		}

		sender := msg.Identity.Name
		if sender == "" {
			sender = fallbackSenderName
		}
		projected = append(projected, llm.ChatMessage{
			Role:    llm.RoleUser,
			Content: sender + ": " + msg.Content,
		})
	}
	return projected
}
