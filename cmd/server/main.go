package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/opencampus/registrar-backend/internal/db"
	"github.com/opencampus/registrar-backend/internal/handlers"
	"github.com/opencampus/registrar-backend/internal/hierarchy"
	"github.com/opencampus/registrar-backend/internal/middleware"
	"github.com/opencampus/registrar-backend/internal/observability"
	"github.com/opencampus/registrar-backend/internal/pkg/env"
	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/realtime/bus"
	"github.com/opencampus/registrar-backend/internal/repos"
	"github.com/opencampus/registrar-backend/internal/server"
	"github.com/opencampus/registrar-backend/internal/services"
)

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	if shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "registrar-backend",
		Environment: logMode,
	}); shutdown != nil {
		defer func() {
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shCtx)
		}()
	}

	jwtSecretKey := env.Get("JWT_SECRET_KEY", "", log)
	if jwtSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY is required")
	}
	accessTTL := env.GetDuration("ACCESS_TOKEN_TTL", time.Hour, log)
	refreshTTL := env.GetDuration("REFRESH_TOKEN_TTL", 24*time.Hour, log)

	matrix, err := hierarchy.Load(env.Get("HIERARCHY_CONFIG", "", log))
	if err != nil {
		log.Fatal("failed to load hierarchy config", "error", err)
	}

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("postgres auto migration failed", "error", err)
	}
	gdb := postgresService.DB()

	// repos
	attributeRepo := repos.NewAttributeRepo(gdb, log)
	entityRepo := repos.NewEntityRepo(gdb, log)
	valueRepo := repos.NewValueRepo(gdb, log)
	relationRepo := repos.NewRelationRepo(gdb, log)
	userRepo := repos.NewUserRepo(gdb, log)
	messageRepo := repos.NewMessageRepo(gdb, log)
	notificationRepo := repos.NewNotificationRepo(gdb, log)

	// notification bus: falls back to log-only when redis is not configured
	var eventBus bus.Bus
	if os.Getenv("REDIS_ADDR") != "" {
		eventBus, err = bus.NewRedisBus(log)
		if err != nil {
			log.Fatal("redis bus init failed", "error", err)
		}
		defer eventBus.Close()
	} else {
		log.Warn("REDIS_ADDR not set, realtime notification delivery disabled")
		eventBus = bus.NopBus{}
	}

	// services
	registryService := services.NewRegistryService(gdb, log, attributeRepo)
	entityService := services.NewEntityService(gdb, log, entityRepo, matrix)
	valueService := services.NewValueService(gdb, log, entityRepo, valueRepo, registryService)
	relationService := services.NewRelationService(gdb, log, entityRepo, relationRepo)
	directoryService := services.NewDirectoryService(gdb, log, entityService, valueService)
	authService := services.NewAuthService(gdb, log, userRepo, jwtSecretKey, accessTTL, refreshTTL)
	notificationService := services.NewNotificationService(gdb, log, notificationRepo, eventBus)
	messageService := services.NewMessageService(gdb, log, messageRepo, userRepo, notificationService)

	// handlers
	authHandler := handlers.NewAuthHandler(authService)
	attributeHandler := handlers.NewAttributeHandler(registryService)
	entityHandler := handlers.NewEntityHandler(directoryService, entityService, valueService)
	relationHandler := handlers.NewRelationHandler(relationService, directoryService)
	directoryHandler := handlers.NewDirectoryHandler(directoryService)
	messageHandler := handlers.NewMessageHandler(messageService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	router := server.NewRouter(server.RouterConfig{
		AuthHandler:         authHandler,
		AuthMiddleware:      authMiddleware,
		AttributeHandler:    attributeHandler,
		EntityHandler:       entityHandler,
		RelationHandler:     relationHandler,
		DirectoryHandler:    directoryHandler,
		MessageHandler:      messageHandler,
		NotificationHandler: notificationHandler,
	})

	port := env.Get("PORT", "8080", log)
	log.Info("starting registrar backend", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("server exited", "error", err)
	}
}
