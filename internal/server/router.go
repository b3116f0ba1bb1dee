package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/biasdetektiv/study-backend/internal/handlers"
	"github.com/biasdetektiv/study-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName     string
	AllowedOrigins  string
	StudyHandler    *handlers.StudyHandler
	AnalyzeHandler  *handlers.AnalyzeHandler
	AdminHandler    *handlers.AdminHandler
	AdminMiddleware *middleware.AdminMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
	}
	if cfg.AllowedOrigins == "" || cfg.AllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(cfg.AllowedOrigins, ",")
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/scenarios", cfg.StudyHandler.ListScenarios)
		api.POST("/participants", cfg.StudyHandler.EnsureParticipant)
		api.POST("/sessions", cfg.StudyHandler.StartSession)
		api.POST("/chat", cfg.StudyHandler.Chat)
		api.POST("/runs", cfg.StudyHandler.SubmitRun)
		api.POST("/sessions/:id/complete", cfg.StudyHandler.CompleteSession)
		api.GET("/sessions/:id/results", cfg.StudyHandler.Results)
		api.GET("/leaderboard", cfg.StudyHandler.Leaderboard)
		api.POST("/analyze", cfg.AnalyzeHandler.Analyze)
		api.POST("/admin/login", cfg.AdminHandler.Login)
	}

	admin := router.Group("/api/admin")
	admin.Use(cfg.AdminMiddleware.RequireAdmin())
	{
		admin.GET("/participants", cfg.AdminHandler.ListParticipants)
		admin.GET("/participants/:id/sessions", cfg.AdminHandler.ParticipantSessions)
	}

	return router
}
