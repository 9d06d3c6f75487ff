package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"aichat_web/internal/llm"
	"aichat_web/internal/models"
)

func makeIdentity(id uint, name string) models.Identity {
	return models.Identity{Model: gorm.Model{ID: id}, Name: name}
}

func makeMessage(identity models.Identity, content string) models.Message {
	return models.Message{
		IdentityID: identity.ID,
		Content:    content,
		Identity:   identity,
	}
}

func TestProjectTranscript(t *testing.T) {
	a := makeIdentity(1, "A")
	b := makeIdentity(2, "B")

	history := []models.Message{
		makeMessage(a, "hi"),
		makeMessage(b, "yo"),
	}

	// A 視角：自己的話是 assistant，別人的話加名字前綴變成 user
	got := ProjectTranscript(history, &a)
	require.Len(t, got, 2)
	assert.Equal(t, llm.ChatMessage{Role: llm.RoleAssistant, Content: "hi"}, got[0])
	assert.Equal(t, llm.ChatMessage{Role: llm.RoleUser, Content: "B: yo"}, got[1])
}

func TestProjectTranscriptViewpointSymmetry(t *testing.T) {
	a := makeIdentity(1, "A")
	b := makeIdentity(2, "B")

	history := []models.Message{
		makeMessage(a, "hi"),
		makeMessage(b, "yo"),
		makeMessage(a, "how are you"),
	}

	fromA := ProjectTranscript(history, &a)
	fromB := ProjectTranscript(history, &b)
	require.Len(t, fromA, len(history))
	require.Len(t, fromB, len(history))

	for i, msg := range history {
		// 兩個視角的 assistant/user 標籤剛好互補
		if msg.IdentityID == a.ID {
			assert.Equal(t, llm.RoleAssistant, fromA[i].Role)
			assert.Equal(t, llm.RoleUser, fromB[i].Role)
		} else {
			assert.Equal(t, llm.RoleUser, fromA[i].Role)
			assert.Equal(t, llm.RoleAssistant, fromB[i].Role)
		}

		// 忽略角色與前綴後，內容依原順序重現
		assert.True(t, strings.HasSuffix(fromA[i].Content, msg.Content))
		assert.True(t, strings.HasSuffix(fromB[i].Content, msg.Content))
	}
}

func TestProjectTranscriptFallbackSenderName(t *testing.T) {
	viewpoint := makeIdentity(1, "A")

	// 發言者身分解析不出來時，前綴退回 "User"
	orphan := models.Message{IdentityID: 99, Content: "who said this"}
	got := ProjectTranscript([]models.Message{orphan}, &viewpoint)

	require.Len(t, got, 1)
	assert.Equal(t, llm.RoleUser, got[0].Role)
	assert.Equal(t, "User: who said this", got[0].Content)
}

func TestProjectTranscriptEmptyHistory(t *testing.T) {
	viewpoint := makeIdentity(1, "A")
	got := ProjectTranscript(nil, &viewpoint)
	assert.Empty(t, got)
}
