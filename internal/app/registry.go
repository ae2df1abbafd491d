package app

import (
	"database/sql"
	"os"

	"crewtask/internal/auth"
	"crewtask/internal/business"
	"crewtask/internal/messaging/kafka"
	"crewtask/internal/performance"
	"crewtask/internal/storage"
	"crewtask/internal/task"
	"crewtask/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	userRepo := user.NewRepository(gormDB)
	businessRepo := business.NewRepository(gormDB)
	taskRepo := task.NewRepository(gormDB)
	performanceRepo := performance.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Object storage ---
	objectStore := storage.NewHTTPStore(
		os.Getenv("STORAGE_BASE_URL"),
		os.Getenv("STORAGE_SERVICE_TOKEN"),
		logger,
	)
	uploader := storage.NewVerificationUploader(objectStore)

	// --- Services ---
	userService := user.NewService(userRepo, rdb, logger)
	businessService := business.NewService(businessRepo, logger)
	taskService := task.NewService(db, taskRepo, outboxRepo, logger)
	performanceService := performance.NewService(performanceRepo, logger)
	authService := auth.NewService(db, authRepo, userService, businessService, logger)

	// --- Handlers ---
	userHandler := user.NewHandler(userService, logger)
	businessHandler := business.NewHandler(businessService, logger)
	taskHandler := task.NewHandler(taskService, uploader, rdb, logger)
	performanceHandler := performance.NewHandler(performanceService, logger)
	authHandler := auth.NewHandler(authService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		user.RegisterRoutes(api, userHandler, logger)
		business.RegisterRoutes(api, businessHandler, logger)
		task.RegisterRoutes(api, taskHandler, rdb, logger)
		performance.RegisterRoutes(api, performanceHandler, logger)
	}

	return nil
}
