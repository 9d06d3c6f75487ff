package service

import (
	"github.com/rs/zerolog"

	"aichat_web/internal/llm"
	"aichat_web/internal/repository"
	"aichat_web/pkg/config"
)

type Services struct {
	Identity  *IdentityService
	Room      *RoomService
	Turn      *TurnEngine
	WebSocket *WebSocketManager
	Providers *llm.Registry
}

func NewServices(repos *repository.Repositories, registry *llm.Registry, cfg *config.Config, logger zerolog.Logger) *Services {
	wsManager := NewWebSocketManager(logger.With().Str("component", "websocket").Logger())

	identityService := NewIdentityService(repos.Identity, cfg.Chat.DefaultProvider)
	roomService := NewRoomService(repos.Room, repos.Identity, repos.Message, wsManager,
		logger.With().Str("component", "room").Logger())
	turnEngine := NewTurnEngine(repos.Room, repos.Message, registry, wsManager,
		cfg.Chat.MaxTurns, cfg.Chat.Temperature,
		logger.With().Str("component", "turn_engine").Logger())

	return &Services{
		Identity:  identityService,
		Room:      roomService,
		Turn:      turnEngine,
		WebSocket: wsManager,
		Providers: registry,
	}
}
