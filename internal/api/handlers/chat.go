package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"aichat_web/internal/service"
)

// ChatHandler 處理對話生成的串流端點
type ChatHandler struct {
	turnEngine *service.TurnEngine
}

func NewChatHandler(turnEngine *service.TurnEngine) *ChatHandler {
	return &ChatHandler{turnEngine: turnEngine}
}

// sseEmitter 以 Server-Sent Events 格式推送回合事件
// 事件一律是 data: {...}\n\n 的 JSON，送出後立即 flush
type sseEmitter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEEmitter(w http.ResponseWriter, flusher http.Flusher) *sseEmitter {
	return &sseEmitter{w: w, flusher: flusher}
}

func (e *sseEmitter) emit(payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
		return err
	}
	e.flusher.Flush()
	return nil
}

func (e *sseEmitter) EmitDelta(character, delta string) error {
	return e.emit(map[string]interface{}{"character": character, "delta": delta})
}

func (e *sseEmitter) EmitMessage(character, content string) error {
	return e.emit(map[string]interface{}{"character": character, "content": content})
}

func (e *sseEmitter) EmitComplete(totalTurns int) error {
	return e.emit(map[string]interface{}{"complete": true, "total_turns": totalTurns})
}

func (e *sseEmitter) EmitError(message string) error {
	return e.emit(map[string]interface{}{"error": message})
}

// StartStream 啟動多回合對話並以 SSE 串流輸出
// GET /api/rooms/:id/start-stream?turns=N
// 客戶端關閉連線視為取消，進行中的回合仍會完成並寫入
func (h *ChatHandler) StartStream(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的房間ID"})
		return
	}

	turns := 0
	if raw := c.Query("turns"); raw != "" {
		turns, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "無效的回合數"})
			return
		}
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "串流不支援"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	emitter := newSSEEmitter(c.Writer, flusher)
	if err := h.turnEngine.RunCycle(c.Request.Context(), uint(roomID), turns, emitter); err != nil {
		// 錯誤事件已經由 emitter 送出，這裡不再回任何內容
		return
	}
}

// Chat 執行單一回合並以純文字串流輸出
// POST /api/chat，body 為 {room_id, next_speaker_id}
// 房間不存在回 404，發言者不是參與者回 400
func (h *ChatHandler) Chat(c *gin.Context) {
	var input struct {
		RoomID        uint `json:"room_id" binding:"required"`
		NextSpeakerID uint `json:"next_speaker_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flusher, _ := c.Writer.(http.Flusher)
	streaming := false

	_, err := h.turnEngine.RunTurn(c.Request.Context(), input.RoomID, input.NextSpeakerID,
		func(delta string) error {
			if !streaming {
				c.Header("Content-Type", "text/plain; charset=utf-8")
				c.Writer.WriteHeader(http.StatusOK)
				streaming = true
			}
			// 中途輸出盡力而為，寫失敗不中斷生成
			if _, err := c.Writer.WriteString(delta); err == nil && flusher != nil {
				flusher.Flush()
			}
			return nil
		})

	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
	case errors.Is(err, service.ErrSpeakerNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "發言者不在房間中"})
	case err != nil && !streaming:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成失敗"})
	}
	// 已經開始串流後發生的錯誤只能中斷連線，無法再改狀態碼
}
