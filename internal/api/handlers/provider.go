package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aichat_web/internal/llm"
)

// ProviderHandler 處理模型供應商相關的查詢
type ProviderHandler struct {
	registry *llm.Registry
}

func NewProviderHandler(registry *llm.Registry) *ProviderHandler {
	return &ProviderHandler{registry: registry}
}

// ListModels 向指定供應商查詢可用的模型清單
// GET /api/models/:provider
func (h *ProviderHandler) ListModels(c *gin.Context) {
	provider, err := h.registry.Resolve(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "供應商尚未設定"})
		return
	}

	models, err := provider.Client.ListModels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法取得模型清單"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"provider": provider.Name, "models": models})
}
