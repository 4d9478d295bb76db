package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ortografia-app/ortografia-api/api/swagger"
	"github.com/ortografia-app/ortografia-api/internal/database"
	"github.com/ortografia-app/ortografia-api/internal/handler"
	"github.com/ortografia-app/ortografia-api/internal/middleware"
	"github.com/ortografia-app/ortografia-api/internal/models"
	"github.com/ortografia-app/ortografia-api/internal/repository"
	"github.com/ortografia-app/ortografia-api/internal/service"
	"github.com/ortografia-app/ortografia-api/pkg/cache"
	"github.com/ortografia-app/ortografia-api/pkg/config"
	pgdatabase "github.com/ortografia-app/ortografia-api/pkg/database"
	"github.com/ortografia-app/ortografia-api/pkg/logger"
	corsmiddleware "github.com/ortografia-app/ortografia-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ortografia-app/ortografia-api/pkg/middleware/requestid"
)

// @title Ortografia API
// @version 1.0.0
// @description Backend for the spelling practice platform: classrooms, enrollments, guardians, word bank and progress tracking.
// @BasePath /api
// @schemes http

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

	db, err := pgdatabase.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := database.Migrate(migrateCtx, db); err != nil {
		cancel()
		logr.Sugar().Fatalw("migrations failed", "error", err)
	}
	cancel()

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, true)
		}
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	guardianRepo := repository.NewGuardianRepository(db)
	wordRepo := repository.NewWordRepository(db)
	gameRepo := repository.NewGameRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	classroomService := service.NewClassroomService(classroomRepo, validate, logr, cfg.Classroom.DefaultMaxStudents)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, classroomRepo, userRepo, validate, logr)
	guardianService := service.NewGuardianService(guardianRepo, userRepo, enrollmentRepo, classroomRepo, validate, logr)
	wordService := service.NewWordService(wordRepo, classroomRepo, validate, logr)
	progressService := service.NewProgressService(gameRepo, enrollmentRepo, classroomRepo, guardianRepo, validate, logr)
	dashboardService := service.NewDashboardService(gameRepo, cacheService, cfg.Dashboard.CacheTTL, logr)

	authHandler := handler.NewAuthHandler(authService)
	classroomHandler := handler.NewClassroomHandler(classroomService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	guardianHandler := handler.NewGuardianHandler(guardianService)
	wordHandler := handler.NewWordHandler(wordService)
	progressHandler := handler.NewProgressHandler(progressService, dashboardService)
	metricsHandler := handler.NewMetricsHandler(metricsService, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.JWT(authService), authHandler.Me)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	teacherOnly := middleware.RequireRoles(models.RoleTeacher)
	studentOnly := middleware.RequireRoles(models.RoleStudent)
	guardianOnly := middleware.RequireRoles(models.RoleGuardian)

	classrooms := protected.Group("/classrooms")
	classrooms.GET("/available", classroomHandler.ListAvailable)
	classrooms.POST("", teacherOnly, classroomHandler.Create)
	classrooms.GET("", teacherOnly, classroomHandler.ListMine)
	classrooms.GET("/:classroomId", teacherOnly, classroomHandler.Get)
	classrooms.PATCH("/:classroomId", teacherOnly, classroomHandler.Update)
	classrooms.GET("/:classroomId/students", teacherOnly, classroomHandler.ListStudents)

	enrollments := protected.Group("/enrollments")
	enrollments.POST("", teacherOnly, enrollmentHandler.Enroll)
	enrollments.POST("/self", studentOnly, enrollmentHandler.SelfEnroll)
	enrollments.GET("/status", studentOnly, enrollmentHandler.Status)
	enrollments.GET("/history", studentOnly, enrollmentHandler.History)
	enrollments.POST("/transfer", teacherOnly, enrollmentHandler.Transfer)
	enrollments.DELETE("/students/:studentId", teacherOnly, enrollmentHandler.Unenroll)

	protected.GET("/students/search", teacherOnly, enrollmentHandler.SearchStudent)
	protected.POST("/users/search-parent", teacherOnly, guardianHandler.Search)
	protected.GET("/students/:studentId/guardians", guardianHandler.ListGuardians)

	guardians := protected.Group("/guardians")
	guardians.POST("/children", guardianOnly, guardianHandler.LinkChild)
	guardians.GET("/children", guardianOnly, guardianHandler.ListChildren)
	guardians.PATCH("/links/:id", guardianHandler.UpdateLink)
	guardians.DELETE("/links/:id", guardianHandler.Unlink)

	words := protected.Group("/words")
	words.POST("", teacherOnly, wordHandler.Create)
	words.GET("", teacherOnly, wordHandler.List)
	words.GET("/stats", teacherOnly, wordHandler.Stats)
	words.GET("/game", studentOnly, wordHandler.GameWords)
	words.PATCH("/:id", teacherOnly, wordHandler.Update)
	words.DELETE("/:id", teacherOnly, wordHandler.Deactivate)

	progress := protected.Group("/progress")
	progress.POST("/sessions", studentOnly, progressHandler.RecordSession)
	progress.GET("/me", progressHandler.MyProgress)
	progress.GET("/students/:studentId", progressHandler.StudentProgress)
	progress.GET("/classrooms/:classroomId", teacherOnly, progressHandler.ClassroomProgress)
	progress.GET("/classrooms/:classroomId/export", teacherOnly, progressHandler.ExportClassroomProgress)

	protected.GET("/dashboard", teacherOnly, progressHandler.Dashboard)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
