package bootstrap

import (
	"context"
	"log"

	"ai-assistant-be/internal/config"
	"ai-assistant-be/internal/controller"
	"ai-assistant-be/internal/docstore"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository/device"
	"ai-assistant-be/internal/repository/implementation"
	"ai-assistant-be/internal/service"
	"ai-assistant-be/internal/websocket"
	"ai-assistant-be/pkg/enrich"
	"ai-assistant-be/pkg/gemini"

	pktNats "ai-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	AuthController controller.IAuthController
	ChatController controller.IChatController
	UserController controller.IUserController

	ChatService service.IChatService

	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Event Bus (in-process document change notifications)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Document store over Postgres JSONB
	store := docstore.NewGormStore(db, pubSub, sysLogger)

	// Repositories
	chatRepo := implementation.NewChatRepository(store)
	userRepo := implementation.NewUserRepository(db)
	devices := device.NewSessionStore(cfg.App.DeviceSessionFile)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// Model pipeline
	geminiClient := gemini.NewClient(cfg.Keys.GoogleGemini)
	pipeline := enrich.NewPipeline(geminiClient, sysLogger)

	// Services
	chatService := service.NewChatService(chatRepo, pipeline, sysLogger, cfg.App.SendTimeout)
	authService := service.NewAuthService(userRepo, devices, natsPub)
	userService := service.NewUserService(userRepo, chatRepo, devices, natsPub)

	// WebSocket Hub fanning out live chat snapshots
	wsHub := websocket.NewHub(chatService, rdb, sysLogger)
	go wsHub.Run()

	return &Container{
		AuthController: controller.NewAuthController(authService),
		ChatController: controller.NewChatController(chatService, wsHub),
		UserController: controller.NewUserController(userService),
		ChatService:    chatService,
		WebSocketHub:   wsHub,
	}
}
