package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aichat_web/internal/api/handlers"
	"aichat_web/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	identityHandler := handlers.NewIdentityHandler(services.Identity)
	roomHandler := handlers.NewRoomHandler(services.Room)
	chatHandler := handlers.NewChatHandler(services.Turn)
	providerHandler := handlers.NewProviderHandler(services.Providers)
	wsHandler := handlers.NewWebSocketHandler(services.WebSocket, services.Room)

	api := r.Group("/api")

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 基本的健康檢查
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// 角色相關
	identities := api.Group("/identities")
	{
		identities.POST("", identityHandler.CreateIdentity)
		identities.GET("", identityHandler.ListIdentities)
		identities.GET("/:id", identityHandler.GetIdentity)
		identities.DELETE("/:id", identityHandler.DeleteIdentity)
	}

	// 房間相關
	rooms := api.Group("/rooms")
	{
		rooms.POST("", roomHandler.CreateRoom)
		rooms.GET("", roomHandler.ListRooms)
		rooms.GET("/:id", roomHandler.GetRoom)
		rooms.DELETE("/:id", roomHandler.DeleteRoom)

		rooms.POST("/:id/participants", roomHandler.AddParticipant)
		rooms.GET("/:id/messages", roomHandler.GetMessages)
		rooms.POST("/:id/messages", roomHandler.PostMessage)

		// 多回合對話的 SSE 串流
		rooms.GET("/:id/start-stream", chatHandler.StartStream)

		// 房間即時推播的 WebSocket 連接點
		rooms.GET("/:id/ws", wsHandler.HandleWebSocket)
	}

	// 單回合對話串流
	api.POST("/chat", chatHandler.Chat)

	// 查詢供應商可用的模型
	api.GET("/models/:provider", providerHandler.ListModels)
}
