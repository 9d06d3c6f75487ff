package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"aichat_web/internal/api"
	"aichat_web/internal/llm"
	"aichat_web/internal/models"
	"aichat_web/internal/repository"
	"aichat_web/internal/service"
	"aichat_web/internal/storage"
	"aichat_web/pkg/config"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// 載入應用程式配置
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// 初始化資料庫連接
	db, err := storage.NewPostgresDB(cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	// 自動遷移資料庫結構
	if err := db.AutoMigrate(&models.Identity{}, &models.Room{}, &models.RoomParticipant{}, &models.Message{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto migrate database")
	}

	// 初始化 repositories 與模型供應商
	repos := repository.NewRepositories(db)
	registry := llm.NewRegistry(cfg.LLM, cfg.Chat.DefaultProvider,
		logger.With().Str("component", "llm").Logger())

	// 初始化 services
	services := service.NewServices(repos, registry, cfg, logger)

	// 設置 Gin 路由
	r := gin.Default()
	api.SetupRoutes(r, services)

	// 啟動伺服器
	logger.Info().Str("address", cfg.Server.Address).Msg("server starting")
	if err := r.Run(cfg.Server.Address); err != nil {
		logger.Fatal().Err(err).Msg("failed to run server")
	}
}
