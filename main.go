package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"team-chat-service/internal/auth"
	"team-chat-service/internal/config"
	"team-chat-service/internal/db"
	"team-chat-service/internal/handlers"
	"team-chat-service/internal/logger"
	"team-chat-service/internal/middleware"
	"team-chat-service/internal/observability"
	"team-chat-service/internal/presence"
	"team-chat-service/internal/rabbitmq"
	"team-chat-service/internal/repositories"
	"team-chat-service/internal/telemetry"
)

const serviceName = "team-chat-service"

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.LogLevel, cfg.LogFile, cfg.Environment); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		zap.L().Fatal("failed to connect to db", zap.Error(err))
	}

	shutdownTracing, err := observability.InitTracing(context.Background(), cfg.OTLPEndpoint, serviceName)
	if err != nil {
		zap.L().Fatal("failed to init tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AuditExchange)
	defer publisher.Close()
	audit := telemetry.NewAuditEmitter(publisher, cfg.AuditRouting, serviceName, cfg.Environment)

	tracker := presence.NewTracker(cfg.RedisAddr, cfg.RedisPassword)
	hasher := auth.NewBcryptHasher()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.TokenTTLHours)*time.Hour)

	userRepo := repositories.NewUserRepo(database, hasher)
	channelRepo := repositories.NewChannelRepo(database)
	membershipRepo := repositories.NewMembershipRepo(database)
	conversationRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database, membershipRepo)
	attachmentRepo := repositories.NewAttachmentRepo(database)

	userHandler := handlers.NewUserHandler(userRepo, tokens, tracker, audit)
	channelHandler := handlers.NewChannelHandler(channelRepo, membershipRepo, audit)
	conversationHandler := handlers.NewConversationHandler(conversationRepo)
	messageHandler := handlers.NewMessageHandler(messageRepo, audit)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(otelgin.Middleware(serviceName))

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/auth/register", userHandler.Register)
	router.POST("/auth/login", userHandler.Login)
	router.GET("/channels", channelHandler.ListChannels)

	authMiddleware := middleware.AuthMiddleware(tokens)

	router.GET("/users/online", authMiddleware, userHandler.ListOnline)
	router.GET("/users/:user_id", authMiddleware, userHandler.GetUser)
	router.PATCH("/users/:user_id", authMiddleware, userHandler.UpdateProfile)

	router.POST("/channels", authMiddleware, channelHandler.CreateChannel)
	router.GET("/channels/:channel_id", authMiddleware, channelHandler.GetChannel)
	router.PATCH("/channels/:channel_id", authMiddleware, channelHandler.UpdateChannel)
	router.POST("/channels/:channel_id/members", authMiddleware, channelHandler.JoinChannel)
	router.DELETE("/channels/:channel_id/members/me", authMiddleware, channelHandler.LeaveChannel)
	router.GET("/channels/:channel_id/members", authMiddleware, channelHandler.GetChannelMembers)

	router.POST("/conversations", authMiddleware, conversationHandler.CreateConversation)
	router.GET("/conversations", authMiddleware, conversationHandler.ListConversations)

	router.POST("/messages", authMiddleware, messageHandler.CreateMessage)
	router.GET("/messages", authMiddleware, messageHandler.GetMessages)
	router.GET("/messages/search", authMiddleware, messageHandler.SearchMessages)
	router.PATCH("/messages/:message_id", authMiddleware, messageHandler.UpdateMessage)
	router.DELETE("/messages/:message_id", authMiddleware, messageHandler.DeleteMessage)
	router.POST("/messages/:message_id/attachments", authMiddleware, attachmentHandler.CreateAttachment)
	router.GET("/messages/:message_id/attachments", authMiddleware, attachmentHandler.GetAttachments)

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	zap.L().Info("starting server", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		zap.L().Fatal("server error", zap.Error(err))
	}
}
