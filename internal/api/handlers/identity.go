package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"aichat_web/internal/service"
)

// IdentityHandler 處理角色相關的請求
type IdentityHandler struct {
	identityService *service.IdentityService
}

func NewIdentityHandler(identityService *service.IdentityService) *IdentityHandler {
	return &IdentityHandler{identityService: identityService}
}

// CreateIdentity 處理建立角色的請求
func (h *IdentityHandler) CreateIdentity(c *gin.Context) {
	var input struct {
		Name          string `json:"name" binding:"required"`
		Bio           string `json:"bio" binding:"required"`
		Avatar        string `json:"avatar"`
		ModelProvider string `json:"model_provider"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, err := h.identityService.CreateIdentity(input.Name, input.Bio, input.Avatar, input.ModelProvider)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "建立角色失敗"})
		return
	}

	c.JSON(http.StatusCreated, identity)
}

// ListIdentities 處理角色列表的請求
func (h *IdentityHandler) ListIdentities(c *gin.Context) {
	identities, err := h.identityService.ListIdentities()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法取得角色列表"})
		return
	}

	c.JSON(http.StatusOK, identities)
}

// GetIdentity 處理取得單一角色的請求
func (h *IdentityHandler) GetIdentity(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的角色ID"})
		return
	}

	identity, err := h.identityService.GetIdentity(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "角色不存在"})
		return
	}

	c.JSON(http.StatusOK, identity)
}

// DeleteIdentity 處理刪除角色的請求
func (h *IdentityHandler) DeleteIdentity(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的角色ID"})
		return
	}

	err = h.identityService.DeleteIdentity(uint(id))
	switch {
	case errors.Is(err, service.ErrIdentityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "角色不存在"})
	case errors.Is(err, service.ErrIdentityInUse):
		c.JSON(http.StatusBadRequest, gin.H{"error": "角色已有發言紀錄，無法刪除"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "刪除角色失敗"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "角色已刪除"})
	}
}
