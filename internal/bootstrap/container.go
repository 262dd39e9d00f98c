package bootstrap

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"studenthub-be/internal/config"
	"studenthub-be/internal/controller"
	"studenthub-be/internal/handler"
	"studenthub-be/internal/pkg/logger"
	"studenthub-be/internal/pkg/mailer"
	"studenthub-be/internal/repository/memory"
	"studenthub-be/internal/repository/unitofwork"
	"studenthub-be/internal/service"
	"studenthub-be/internal/websocket"
	"studenthub-be/pkg/livequery"
	"studenthub-be/pkg/llm/factory"
	pktNats "studenthub-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
)

type Container struct {
	// Controllers
	AuthController         controller.IAuthController
	AssistantController    controller.IAssistantController
	LeaveController        controller.ILeaveController
	NotificationController controller.INotificationController
	AdminController        controller.IAdminController

	// WebSockets & Live Queries
	NotificationHandler *handler.NotificationHandler
	WatchHandler        *handler.WatchHandler
	WebSocketHub        *websocket.Hub

	// Shared infrastructure, exposed for shutdown
	LiveBus *livequery.Bus
	NatsPub *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Change bus for live queries
	watermillLogger := watermill.NewStdLogger(false, false)
	liveBus := livequery.NewBus(watermillLogger)

	// 3. LLM Provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.LLMAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Durable event bus (NATS)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// 5. Redis + WebSocket hub
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

	wsLogger := logger.NewIsolatedLogger(cfg.App.NotifLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	profileCache := memory.NewProfileCache()

	// 6. Services
	authService := service.NewAuthService(uowFactory, emailService, natsPub, profileCache)

	assistantService, err := service.NewAssistantService(uowFactory, llmProvider, liveBus)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize assistant service: %v", err)
	}

	leaveService := service.NewLeaveService(uowFactory, liveBus, natsPub, sysLogger)

	notifService := service.NewNotificationService(uowFactory, liveBus, natsSub, wsHub, emailService, wsLogger)
	if err := notifService.Start(context.Background()); err != nil {
		log.Printf("[WARN] Notification service start incomplete: %v", err)
	}

	adminService := service.NewAdminService(uowFactory, wsHub, sysLogger)

	// 7. Handlers & Controllers
	return &Container{
		AuthController:         controller.NewAuthController(authService),
		AssistantController:    controller.NewAssistantController(assistantService),
		LeaveController:        controller.NewLeaveController(leaveService),
		NotificationController: controller.NewNotificationController(notifService),
		AdminController:        controller.NewAdminController(adminService),

		NotificationHandler: handler.NewNotificationHandler(wsHub, wsLogger),
		WatchHandler:        handler.NewWatchHandler(assistantService, leaveService, wsLogger),
		WebSocketHub:        wsHub,

		LiveBus: liveBus,
		NatsPub: natsPub,
	}
}
