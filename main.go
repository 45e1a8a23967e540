package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"staybot/config"
	"staybot/database"
	conversationRepo "staybot/database/repository/conversation"
	"staybot/handlers"
	"staybot/middleware"
	"staybot/routes"
	"staybot/services/booking"
	"staybot/services/chat"
	ai "staybot/services/intelligence"
	"staybot/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("main: failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("main: failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monitor := utils.NewHealthMonitor(30*time.Second, logger)

	// Storage backends.
	var (
		mongoClient *mongo.Client
		redisClient *redis.Client
	)
	if cfg.StoreDriver == config.StoreMongo {
		mongoClient, err = database.ConnectMongo(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("main: mongo unavailable", zap.Error(err))
		}
		monitor.Register("mongo", func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) })
		logger.Info("Connected to MongoDB", zap.String("database", cfg.DatabaseName))
	}
	if cfg.StoreDriver == config.StoreRedis || cfg.TurnLock == config.LockRedis {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("main: redis unavailable", zap.Error(err))
		}
		monitor.Register("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
		logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
	}

	var repo conversationRepo.ConversationRepository
	switch cfg.StoreDriver {
	case config.StoreMongo:
		repo, err = conversationRepo.NewMongoConversationRepo(mongoClient.Database(cfg.DatabaseName), logger)
		if err != nil {
			logger.Fatal("main: conversation store", zap.Error(err))
		}
	case config.StoreRedis:
		repo = conversationRepo.NewRedisConversationRepo(redisClient, cfg.ConversationTTL)
	default:
		logger.Warn("Using in-memory conversation store; conversations are lost on restart")
		repo = conversationRepo.NewMemoryConversationRepo()
	}

	// Completion provider.
	var llm ai.Provider
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		gemini, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatal("main: gemini client", zap.Error(err))
		}
		defer gemini.Close()
		llm = gemini
	default:
		llm = ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	}

	hotel := booking.NewClient(cfg.RoomsAPI, cfg.BookingAPI).WithTimeout(30 * time.Second)
	chatService := chat.NewDefaultChatService(repo, llm, hotel, logger)
	switch cfg.TurnLock {
	case config.LockRedis:
		chatService.Locker = chat.NewRedisTurnLocker(redisClient, cfg.TurnLockTTL, logger)
	case config.LockNone:
		chatService.Locker = chat.NoopTurnLocker{}
	}

	monitor.Start(ctx)

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewChatHandler(chatService, logger),
		&handlers.HealthHandler{Monitor: monitor},
	)

	router := gin.New()
	router.Use(utils.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin, logger))
	routes.RegisterRoutes(router, handlerBundle)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: router,
	}

	logger.Info("Starting server",
		zap.String("addr", srv.Addr),
		zap.String("store", cfg.StoreDriver),
		zap.String("provider", cfg.LLMProvider),
		zap.String("turnLock", cfg.TurnLock),
	)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}

	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			logger.Warn("main: mongo disconnect", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("main: redis close", zap.Error(err))
		}
	}

	logger.Info("main: server stopped gracefully")
}
