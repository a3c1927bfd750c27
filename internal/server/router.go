package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/opencampus/registrar-backend/internal/handlers"
	"github.com/opencampus/registrar-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler         *handlers.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	AttributeHandler    *handlers.AttributeHandler
	EntityHandler       *handlers.EntityHandler
	RelationHandler     *handlers.RelationHandler
	DirectoryHandler    *handlers.DirectoryHandler
	MessageHandler      *handlers.MessageHandler
	NotificationHandler *handlers.NotificationHandler
	AllowOrigins        []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(otelgin.Middleware("registrar-backend"))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// public
	router.GET("/healthcheck", handlers.HealthCheck)
	// register stays reachable without credentials for the bootstrap admin,
	// but a presented token is honored so admins can add further users
	router.POST("/register", cfg.AuthMiddleware.OptionalAuth(), cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	{
		admin := cfg.AuthMiddleware.RequireAdmin()

		api.GET("/attributes", cfg.AttributeHandler.List)
		api.GET("/attributes/:name", cfg.AttributeHandler.Get)
		api.POST("/attributes", admin, cfg.AttributeHandler.Define)
		api.PUT("/attributes/:name", admin, cfg.AttributeHandler.Update)

		api.GET("/entities", cfg.EntityHandler.List)
		api.POST("/entities", admin, cfg.EntityHandler.Create)
		api.GET("/entities/:id", cfg.EntityHandler.Get)
		api.PUT("/entities/:id", admin, cfg.EntityHandler.Update)
		api.PUT("/entities/:id/values", admin, cfg.EntityHandler.UpdateValues)
		api.POST("/entities/:id/deactivate", admin, cfg.EntityHandler.Deactivate)
		api.GET("/entities/:id/related", cfg.RelationHandler.Related)

		api.POST("/relations", admin, cfg.RelationHandler.Link)
		api.DELETE("/relations", admin, cfg.RelationHandler.Unlink)

		api.GET("/students", cfg.DirectoryHandler.Students())
		api.GET("/staff", cfg.DirectoryHandler.Staff())
		api.GET("/parents", cfg.DirectoryHandler.Parents())
		api.GET("/courses", cfg.DirectoryHandler.Courses())
		api.GET("/rooms", cfg.DirectoryHandler.Rooms())
		api.GET("/buildings", cfg.DirectoryHandler.Buildings())

		api.GET("/messages", cfg.MessageHandler.List)
		api.POST("/messages", cfg.MessageHandler.Send)
		api.POST("/messages/:id/read", cfg.MessageHandler.MarkRead)

		api.GET("/notifications", cfg.NotificationHandler.List)
		api.POST("/notifications/:id/read", cfg.NotificationHandler.MarkRead)
	}

	return router
}
