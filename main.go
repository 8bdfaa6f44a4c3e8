package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"chat-store/internal/config"
	"chat-store/internal/db"
	"chat-store/internal/feed"
	"chat-store/internal/handlers"
	"chat-store/internal/middleware"
	"chat-store/internal/observ"
	"chat-store/internal/observability"
	"chat-store/internal/presence"
	"chat-store/internal/rabbitmq"
	"chat-store/internal/repositories"
	"chat-store/internal/service"
	"chat-store/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	shutdownTracing, err := observability.InitTracing(context.Background(), "chat-store", cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	database, err := db.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer database.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	defer publisher.Close()
	logger.Info("event publisher ready", zap.String("mode", rabbitmq.PublisherMode(publisher)))

	if amqpPub, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange); err == nil {
		observability.SetPublisher(amqpPub)
		defer amqpPub.Close()
	}

	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	userRepo := repositories.NewUserRepo(database)

	hub := feed.NewHub(logger)
	chatService := service.NewChatService(roomRepo, messageRepo, hub, publisher, logger)
	tracker := presence.NewTracker(redisClient, logger)

	roomHandler := handlers.NewRoomHandler(chatService)
	messageHandler := handlers.NewMessageHandler(chatService)
	userHandler := handlers.NewUserHandler(userRepo)
	presenceHandler := handlers.NewPresenceHandler(tracker)
	roomWS := ws.NewRoomWebSocketHandler(chatService, cfg.JWTSecret, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("chat-store"))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		if err := database.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)

	router.POST("/rooms/start", authMiddleware, roomHandler.StartRoom)
	router.GET("/rooms", authMiddleware, roomHandler.ListRooms)
	router.GET("/rooms/:room_id", authMiddleware, roomHandler.GetRoom)
	router.GET("/rooms/:room_id/messages", authMiddleware, messageHandler.GetMessages)
	router.POST("/rooms/:room_id/messages", authMiddleware, messageHandler.PostMessage)
	router.PATCH("/rooms/:room_id/messages/:message_id", authMiddleware, messageHandler.EditMessage)
	router.DELETE("/rooms/:room_id/messages/:message_id", authMiddleware, messageHandler.DeleteMessage)
	router.POST("/rooms/:room_id/read", authMiddleware, messageHandler.MarkRead)
	router.DELETE("/rooms/:room_id/messages", authMiddleware, messageHandler.ClearHistory)

	router.PUT("/users/me", authMiddleware, userHandler.UpsertProfile)
	router.GET("/users", authMiddleware, userHandler.ListUsers)
	router.GET("/users/:user_id", authMiddleware, userHandler.GetUser)

	router.POST("/presence/heartbeat", authMiddleware, presenceHandler.Heartbeat)
	router.POST("/presence/typing", authMiddleware, presenceHandler.Typing)
	router.GET("/presence/:user_id", authMiddleware, presenceHandler.GetPresence)

	router.GET("/ws/rooms/:room_id", roomWS.Handle)

	logger.Info("chat store listening", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
