package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"aichat_web/internal/service"
)

// RoomHandler 處理房間相關的請求
type RoomHandler struct {
	roomService *service.RoomService
}

func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// CreateRoom 處理建立房間的請求
// scenario 是帶 {{char1}}、{{char2}}... 佔位符的情境模板
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Scenario string `json:"scenario" binding:"required"`
		IsPublic bool   `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.roomService.CreateRoom(input.Name, input.Scenario, input.IsPublic)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "建立房間失敗"})
		return
	}

	c.JSON(http.StatusCreated, room)
}

// ListRooms 處理房間列表的請求
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.roomService.ListRooms()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法取得房間列表"})
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// GetRoom 處理取得房間的請求，包含參與者與對話紀錄
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的房間ID"})
		return
	}

	room, err := h.roomService.GetRoom(uint(roomID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
		return
	}

	c.JSON(http.StatusOK, room)
}

// DeleteRoom 處理刪除房間的請求
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的房間ID"})
		return
	}

	err = h.roomService.DeleteRoom(uint(roomID))
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "刪除房間失敗"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "房間已刪除"})
	}
}

// AddParticipant 處理把角色加入房間的請求
func (h *RoomHandler) AddParticipant(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的房間ID"})
		return
	}

	var input struct {
		IdentityID uint `json:"identity_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.roomService.AddParticipant(uint(roomID), input.IdentityID)
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
	case errors.Is(err, service.ErrIdentityNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "角色不存在"})
	case errors.Is(err, service.ErrAlreadyParticipant):
		c.JSON(http.StatusBadRequest, gin.H{"error": "角色已在房間中"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "加入房間失敗"})
	default:
		c.JSON(http.StatusCreated, participant)
	}
}

// GetMessages 處理取得房間對話紀錄的請求
func (h *RoomHandler) GetMessages(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的房間ID"})
		return
	}

	messages, err := h.roomService.GetMessages(uint(roomID))
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法取得對話紀錄"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// PostMessage 處理使用者（人類）發言的請求
func (h *RoomHandler) PostMessage(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的房間ID"})
		return
	}

	var input struct {
		IdentityID uint   `json:"identity_id" binding:"required"`
		Content    string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.roomService.PostUserMessage(uint(roomID), input.IdentityID, input.Content)
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
	case errors.Is(err, service.ErrNotParticipant):
		c.JSON(http.StatusBadRequest, gin.H{"error": "角色不是房間的參與者"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "發言失敗"})
	default:
		c.JSON(http.StatusCreated, message)
	}
}
