package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/elimu-sms/elimu-api/api/swagger"
	"github.com/elimu-sms/elimu-api/internal/handler"
	"github.com/elimu-sms/elimu-api/internal/middleware"
	"github.com/elimu-sms/elimu-api/internal/repository"
	"github.com/elimu-sms/elimu-api/internal/service"
	"github.com/elimu-sms/elimu-api/pkg/cache"
	"github.com/elimu-sms/elimu-api/pkg/config"
	"github.com/elimu-sms/elimu-api/pkg/database"
	"github.com/elimu-sms/elimu-api/pkg/export"
	"github.com/elimu-sms/elimu-api/pkg/logger"
	corsmiddleware "github.com/elimu-sms/elimu-api/pkg/middleware/cors"
	reqidmiddleware "github.com/elimu-sms/elimu-api/pkg/middleware/requestid"
)

// @title Elimu SMS API
// @version 0.1.0
// @description Grade processing and report aggregation for Kenyan schools
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var cacheRepo *repository.CacheRepository
	if cfg.Reports.CacheTTL > 0 {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}

	validate := validator.New()

	assessmentRepo := repository.NewAssessmentRepository(db)
	resultRepo := repository.NewResultRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	classRepo := repository.NewClassRepository(db)
	termRepo := repository.NewTermRepository(db)

	metricsSvc := service.NewMetricsService()
	resultSvc := service.NewResultService(assessmentRepo, resultRepo, studentRepo, cacheRepo, validate, logr)
	reportSvc := service.NewReportService(enrollmentRepo, termRepo, classRepo, resultRepo, cacheRepo, metricsSvc, logr, service.ReportServiceConfig{
		DefaultMaxMarks: cfg.Reports.DefaultMaxMarks,
		TopPerformers:   cfg.Reports.TopPerformers,
		CacheTTL:        cfg.Reports.CacheTTL,
	})
	exportSvc := service.NewExportService(export.NewCSVExporter(), export.NewPDFExporter())

	resultHandler := handler.NewResultHandler(resultSvc, metricsSvc, cfg.Uploads)
	reportHandler := handler.NewReportHandler(reportSvc, exportSvc, metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group(cfg.APIPrefix)
	v1.Use(middleware.Tenant())
	{
		results := v1.Group("/results")
		{
			results.POST("", resultHandler.Submit)
			results.POST("/bulk", resultHandler.Bulk)
			results.POST("/upload", resultHandler.Upload)
			results.PATCH("/:id", resultHandler.Update)
			results.DELETE("/:id", resultHandler.Delete)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/report-card/:studentId", reportHandler.StudentReportCard)
			reports.GET("/class-performance/:classId", reportHandler.ClassPerformance)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
