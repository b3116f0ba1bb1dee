package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	openaiclient "github.com/biasdetektiv/study-backend/internal/clients/openai"
	"github.com/biasdetektiv/study-backend/internal/db"
	"github.com/biasdetektiv/study-backend/internal/handlers"
	"github.com/biasdetektiv/study-backend/internal/logger"
	"github.com/biasdetektiv/study-backend/internal/middleware"
	"github.com/biasdetektiv/study-backend/internal/observability"
	"github.com/biasdetektiv/study-backend/internal/repos"
	"github.com/biasdetektiv/study-backend/internal/server"
	"github.com/biasdetektiv/study-backend/internal/services"
	"github.com/biasdetektiv/study-backend/internal/utils"
)

const serviceName = "biasstudy-backend"

func main() {
	_ = godotenv.Load(".env")

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitTracing(ctx, log, serviceName)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	// Env
	minUserTurns := utils.GetEnvAsInt("STUDY_MIN_USER_TURNS", 1, log)
	adminPassword := utils.GetEnv("ADMIN_PASSWORD", "admin", log)
	adminPasswordHash := utils.GetEnv("ADMIN_PASSWORD_HASH", "", log)
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	adminTokenTTL := utils.GetEnvAsInt("ADMIN_TOKEN_TTL", 86400, log)
	allowedOrigins := utils.GetEnv("ALLOWED_ORIGINS", "*", log)
	leaderboardLimit := utils.GetEnvAsInt("LEADERBOARD_LIMIT", 10, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	participantRepo := repos.NewParticipantRepo(thePG, log)
	sessionRepo := repos.NewSessionRepo(thePG, log)
	runRepo := repos.NewScenarioRunRepo(thePG, log)
	jobRepo := repos.NewAnalysisJobRepo(thePG, log)

	// Services
	llmClient := openaiclient.New(log)
	conversationService := services.NewConversationService(log, llmClient, minUserTurns)
	analysisService := services.NewAnalysisService(log, llmClient)
	studyService := services.NewStudyService(thePG, log, participantRepo, sessionRepo, runRepo, jobRepo)
	adminService := services.NewAdminService(
		log,
		participantRepo,
		sessionRepo,
		runRepo,
		adminPassword,
		adminPasswordHash,
		jwtSecretKey,
		time.Duration(adminTokenTTL)*time.Second,
	)

	analysisWorker := services.NewAnalysisWorker(thePG, log, jobRepo, runRepo, analysisService)
	analysisWorker.Start(ctx)

	// Handlers
	studyHandler := handlers.NewStudyHandler(log, studyService, conversationService, leaderboardLimit)
	analyzeHandler := handlers.NewAnalyzeHandler(log, analysisService)
	adminHandler := handlers.NewAdminHandler(adminService)
	adminMiddleware := middleware.NewAdminMiddleware(log, adminService)

	router := server.NewRouter(server.RouterConfig{
		ServiceName:     serviceName,
		AllowedOrigins:  allowedOrigins,
		StudyHandler:    studyHandler,
		AnalyzeHandler:  analyzeHandler,
		AdminHandler:    adminHandler,
		AdminMiddleware: adminMiddleware,
	})

	port := utils.GetEnv("PORT", "8080", log)
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
