package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/leslesan/geniuz-api/api/swagger"
	"github.com/leslesan/geniuz-api/internal/handler"
	"github.com/leslesan/geniuz-api/internal/middleware"
	"github.com/leslesan/geniuz-api/internal/repository"
	"github.com/leslesan/geniuz-api/internal/service"
	"github.com/leslesan/geniuz-api/pkg/cache"
	"github.com/leslesan/geniuz-api/pkg/config"
	"github.com/leslesan/geniuz-api/pkg/database"
	"github.com/leslesan/geniuz-api/pkg/logger"
	corsmiddleware "github.com/leslesan/geniuz-api/pkg/middleware/cors"
	reqidmiddleware "github.com/leslesan/geniuz-api/pkg/middleware/requestid"
)

// @title Geniuz API
// @version 1.0.0
// @description Admin analytics and authentication backend for the Geniuz e-learning platform
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Analytics.CacheTTL, logr, true)
		defer cacheRepo.Close()
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:      cfg.JWT.Secret,
		AdminSecret: cfg.JWT.AdminSecret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      "geniuz-api",
	})
	analyticsService := service.NewAnalyticsService(analyticsRepo, cacheService, metricsService, logr, cfg.Analytics.LookbackDays, cfg.Analytics.CacheTTL)
	catalogService := service.NewCatalogService(catalogRepo, validate, cacheService, logr)

	authHandler := handler.NewAuthHandler(authService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, adminRepo)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.JWT(authService), authHandler.Me)

	admin := api.Group("/admin", middleware.AdminJWT(authService))

	analytics := admin.Group("/analytics")
	analytics.GET("/overview", analyticsHandler.Overview)
	analytics.GET("/enrollments/monthly", analyticsHandler.MonthlyEnrollments)
	analytics.GET("/revenue/monthly", analyticsHandler.MonthlyRevenue)
	analytics.GET("/export", analyticsHandler.Export)
	analytics.GET("/system", analyticsHandler.System)

	classes := admin.Group("/classes")
	classes.GET("", catalogHandler.ListClasses)
	classes.POST("", catalogHandler.CreateClass)
	classes.GET("/:id", catalogHandler.GetClass)
	classes.PUT("/:id", catalogHandler.UpdateClass)
	classes.DELETE("/:id", catalogHandler.DeleteClass)

	mentors := admin.Group("/mentors")
	mentors.GET("", catalogHandler.ListMentors)
	mentors.POST("", catalogHandler.CreateMentor)
	mentors.PUT("/:id", catalogHandler.UpdateMentor)
	mentors.DELETE("/:id", catalogHandler.DeleteMentor)

	faculties := admin.Group("/faculties")
	faculties.GET("", catalogHandler.ListFaculties)
	faculties.POST("", catalogHandler.CreateFaculty)
	faculties.PUT("/:id", catalogHandler.UpdateFaculty)
	faculties.DELETE("/:id", catalogHandler.DeleteFaculty)

	materials := admin.Group("/materials")
	materials.GET("", catalogHandler.ListMaterials)
	materials.POST("", catalogHandler.CreateMaterial)
	materials.PUT("/:id", catalogHandler.UpdateMaterial)
	materials.DELETE("/:id", catalogHandler.DeleteMaterial)

	assignments := admin.Group("/assignments")
	assignments.GET("", catalogHandler.ListAssignments)
	assignments.POST("", catalogHandler.CreateAssignment)
	assignments.PUT("/:id", catalogHandler.UpdateAssignment)
	assignments.DELETE("/:id", catalogHandler.DeleteAssignment)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
