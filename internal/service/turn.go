package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"aichat_web/internal/llm"
	"aichat_web/internal/models"
	"aichat_web/internal/repository"
)

// StreamEmitter 回合進行中推送事件給客戶端的單向通道
// 增量輸出是盡力而為：推送失敗不會中斷生成，
// 但最終持久化的內容必須與累積的串流內容完全一致
type StreamEmitter interface {
	EmitDelta(character, delta string) error
	EmitMessage(character, content string) error
	EmitComplete(totalTurns int) error
	EmitError(message string) error
}

// ProviderResolver 依角色設定的供應商名稱取得模型客戶端
type ProviderResolver interface {
	Resolve(name string) (*llm.Provider, error)
}

// TurnEngine 驅動多回合對話的狀態機
// 每個請求各跑一個回合循環，循環內依序執行：
// 選出發言者 → 組 prompt 與視角投影 → 串流生成 → 持久化 → 下一回合
//
// 同一個房間同時跑兩個循環時寫入可能交錯，這裡不做協調
type TurnEngine struct {
	rooms       repository.RoomRepository
	messages    repository.MessageRepository
	providers   ProviderResolver
	wsManager   *WebSocketManager
	maxTurns    int
	temperature float32
	logger      zerolog.Logger
}

func NewTurnEngine(
	rooms repository.RoomRepository,
	messages repository.MessageRepository,
	providers ProviderResolver,
	wsManager *WebSocketManager,
	maxTurns int,
	temperature float32,
	logger zerolog.Logger,
) *TurnEngine {
	return &TurnEngine{
		rooms:       rooms,
		messages:    messages,
		providers:   providers,
		wsManager:   wsManager,
		maxTurns:    maxTurns,
		temperature: temperature,
		logger:      logger,
	}
}

// RunTurn 執行單一回合：由指定的角色發言一次
// 回傳完整的生成內容；房間或發言者不存在時分別回傳
// ErrRoomNotFound 與 ErrSpeakerNotFound，且不寫入任何訊息
func (e *TurnEngine) RunTurn(ctx context.Context, roomID, speakerID uint, onDelta func(delta string) error) (string, error) {
	room, err := e.loadRoom(roomID)
	if err != nil {
		return "", err
	}

	var speaker *models.RoomParticipant
	for i := range room.Participants {
		if room.Participants[i].IdentityID == speakerID {
			speaker = &room.Participants[i]
			break
		}
	}
	if speaker == nil {
		return "", ErrSpeakerNotFound
	}

	return e.generateTurn(ctx, room, speaker, room.Messages, onDelta)
}

// RunCycle 連續執行多個回合，發言者在參與者之間輪替
// turns 會被限制在設定的回合上限內；事件（含錯誤）一律經由 emitter 送出，
// 回傳的錯誤只供呼叫端記錄
func (e *TurnEngine) RunCycle(ctx context.Context, roomID uint, turns int, emitter StreamEmitter) error {
	if turns <= 0 || turns > e.maxTurns {
		turns = e.maxTurns
	}

	room, err := e.loadRoom(roomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			emitter.EmitError("Room not found")
		} else {
			emitter.EmitError("Failed to load room")
		}
		return err
	}

	n := len(room.Participants)
	if n == 0 {
		emitter.EmitError("Room has no participants")
		return ErrNoParticipants
	}

	history := room.Messages
	executed := 0

	for i := 0; i < turns; i++ {
		// 取消是合作式的：只在回合之間檢查，進行中的回合會跑完
		if ctx.Err() != nil {
			e.logger.Info().
				Uint("room_id", roomID).
				Int("executed", executed).
				Msg("turn cycle cancelled by client")
			return nil
		}

		// 以訊息數對參與者數取餘輪替發言者
		speaker := &room.Participants[len(history)%n]

		content, err := e.generateTurn(ctx, room, speaker, history, func(delta string) error {
			// 中途輸出盡力而為，推不出去不影響生成
			_ = emitter.EmitDelta(speaker.Identity.Name, delta)
			return nil
		})
		if err != nil {
			emitter.EmitError("LLM API call failed: " + err.Error())
			return err
		}

		history = append(history, models.Message{
			RoomID:     roomID,
			IdentityID: speaker.IdentityID,
			Content:    content,
			Identity:   speaker.Identity,
		})
		executed++

		if err := emitter.EmitMessage(speaker.Identity.Name, content); err != nil {
			// 客戶端已離開，當作取消處理，不再排程新回合
			e.logger.Info().
				Uint("room_id", roomID).
				Int("executed", executed).
				Msg("stream closed, stopping turn cycle")
			return nil
		}
	}

	emitter.EmitComplete(executed)
	return nil
}

// generateTurn 執行一個回合的生成與持久化
// 生成使用與請求生命週期脫鉤的 context：客戶端中途離開時，
// 進行中的回合仍會完成並寫入
func (e *TurnEngine) generateTurn(
	ctx context.Context,
	room *models.Room,
	speaker *models.RoomParticipant,
	history []models.Message,
	onDelta func(delta string) error,
) (string, error) {
	others := make([]models.Identity, 0, len(room.Participants)-1)
	for _, p := range room.Participants {
		if p.IdentityID != speaker.IdentityID {
			others = append(others, p.Identity)
		}
	}

	systemPrompt := BuildSystemPrompt(room.Scenario, &speaker.Identity, others)

	chatMessages := make([]llm.ChatMessage, 0, len(history)+1)
	chatMessages = append(chatMessages, llm.ChatMessage{Role: llm.RoleSystem, Content: systemPrompt})
	chatMessages = append(chatMessages, ProjectTranscript(history, &speaker.Identity)...)

	provider, err := e.providers.Resolve(speaker.Identity.ModelProvider)
	if err != nil {
		return "", err
	}

	content, err := provider.Client.StreamCompletion(
		context.WithoutCancel(ctx), provider.Model, chatMessages, e.temperature, onDelta)
	if err != nil {
		return "", err
	}

	e.persistAssistantMessage(room.ID, speaker, content)
	return content, nil
}

// persistAssistantMessage 寫入生成結果並推播到房間
// 寫入失敗只記錄，不回滾也不中斷回合進行（盡力而為的持久化策略）
func (e *TurnEngine) persistAssistantMessage(roomID uint, speaker *models.RoomParticipant, content string) {
	message := &models.Message{
		RoomID:     roomID,
		IdentityID: speaker.IdentityID,
		Content:    content,
		IsUser:     false,
	}
	if err := e.messages.Create(message); err != nil {
		e.logger.Error().Err(err).
			Uint("room_id", roomID).
			Uint("identity_id", speaker.IdentityID).
			Msg("failed to persist assistant message")
		return
	}

	e.wsManager.BroadcastJSON(roomID, map[string]interface{}{
		"type":      "message",
		"character": speaker.Identity.Name,
		"content":   content,
		"is_user":   false,
	})
}

func (e *TurnEngine) loadRoom(roomID uint) (*models.Room, error) {
	room, err := e.rooms.FindByIDFull(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, errors.Wrap(err, "failed to load room")
	}
	return room, nil
}
