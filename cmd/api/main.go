package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/SONDER730/competition-platform/api/swagger"
	"github.com/SONDER730/competition-platform/internal/handler"
	"github.com/SONDER730/competition-platform/internal/middleware"
	"github.com/SONDER730/competition-platform/internal/models"
	"github.com/SONDER730/competition-platform/internal/repository"
	"github.com/SONDER730/competition-platform/internal/service"
	"github.com/SONDER730/competition-platform/pkg/cache"
	"github.com/SONDER730/competition-platform/pkg/config"
	"github.com/SONDER730/competition-platform/pkg/database"
	"github.com/SONDER730/competition-platform/pkg/logger"
	corsmiddleware "github.com/SONDER730/competition-platform/pkg/middleware/cors"
	reqidmiddleware "github.com/SONDER730/competition-platform/pkg/middleware/requestid"
	"github.com/SONDER730/competition-platform/pkg/report"
	"github.com/SONDER730/competition-platform/pkg/storage"
)

// @title Competition Platform API
// @version 1.0.0
// @description Student competition application and reimbursement management
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is optional; a missing cache degrades to direct reads.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	store, err := storage.NewLocalStorage(cfg.Storage.BaseDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init storage", "error", err)
	}

	validate := validator.New()

	users := repository.NewUserRepository(db)
	students := repository.NewStudentRepository(db)
	teachers := repository.NewTeacherRepository(db)
	competitions := repository.NewCompetitionRepository(db)
	applications := repository.NewApplicationRepository(db)
	reimbursements := repository.NewReimbursementRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(users, students, teachers, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
	})
	studentSvc := service.NewStudentService(students, validate, logr)
	teacherSvc := service.NewTeacherService(teachers, validate, logr)
	competitionSvc := service.NewCompetitionService(competitions, cacheRepo, validate, logr, cfg.Competitions.CacheTTL)
	applicationSvc := service.NewApplicationService(applications, reimbursements, students, teachers, competitions, store, validate, logr, cfg.Storage.MaxFileSizeBytes)
	renderer := report.NewProcessRenderer(cfg.Reports.FontPath)
	reportSvc := service.NewReportService(applications, reimbursements, students, store, renderer, metricsSvc, logr, cfg.Reports.CacheTTL)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	competitionHandler := handler.NewCompetitionHandler(competitionSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc, reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	studentRoutes := authed.Group("/students")
	studentRoutes.Use(middleware.RequireRoles(models.RoleStudent))
	{
		studentRoutes.GET("/me", studentHandler.GetProfile)
		studentRoutes.PUT("/me", studentHandler.UpdateProfile)
	}

	teacherRoutes := authed.Group("/teachers")
	{
		teacherRoutes.GET("", teacherHandler.List)
		teacherRoutes.GET("/me", middleware.RequireRoles(models.RoleTeacher), teacherHandler.GetProfile)
		teacherRoutes.PUT("/me", middleware.RequireRoles(models.RoleTeacher), teacherHandler.UpdateProfile)
	}

	competitionRoutes := authed.Group("/competitions")
	{
		competitionRoutes.GET("", competitionHandler.List)
		competitionRoutes.GET("/search", competitionHandler.Search)
		competitionRoutes.GET("/:id", competitionHandler.Get)
		competitionRoutes.POST("", middleware.RequireRoles(models.RoleTeacher), competitionHandler.Create)
		competitionRoutes.PUT("/:id", middleware.RequireRoles(models.RoleTeacher), competitionHandler.Update)
		competitionRoutes.DELETE("/:id", middleware.RequireRoles(models.RoleTeacher), competitionHandler.Delete)
	}

	applicationRoutes := authed.Group("/applications")
	{
		applicationRoutes.POST("", middleware.RequireRoles(models.RoleStudent), applicationHandler.Create)
		applicationRoutes.GET("", applicationHandler.List)
		applicationRoutes.GET("/:id", applicationHandler.Get)
		applicationRoutes.POST("/:id/review", middleware.RequireRoles(models.RoleTeacher), applicationHandler.Review)
		applicationRoutes.POST("/:id/cancel", middleware.RequireRoles(models.RoleStudent), applicationHandler.Cancel)
		applicationRoutes.POST("/:id/finish", middleware.RequireRoles(models.RoleStudent), applicationHandler.Finish)
		applicationRoutes.POST("/:id/files", middleware.RequireRoles(models.RoleStudent), applicationHandler.UploadFiles)
		applicationRoutes.POST("/:id/evidence", middleware.RequireRoles(models.RoleStudent), applicationHandler.UploadEvidence)
		applicationRoutes.GET("/:id/files/:type", applicationHandler.DownloadFile)
		applicationRoutes.POST("/:id/reimbursement", middleware.RequireRoles(models.RoleStudent), applicationHandler.SubmitReimbursement)
		applicationRoutes.GET("/:id/reimbursement", applicationHandler.GetReimbursement)
		applicationRoutes.POST("/:id/reimbursement/review", middleware.RequireRoles(models.RoleTeacher), applicationHandler.ReviewReimbursement)
		applicationRoutes.GET("/:id/reimbursement/invoice", applicationHandler.DownloadInvoice)
		applicationRoutes.GET("/:id/report", applicationHandler.ProcessReport)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
	if err := cacheRepo.Close(); err != nil {
		logr.Sugar().Warnw("failed to close redis", "error", err)
	}
}
