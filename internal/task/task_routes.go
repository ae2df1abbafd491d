package task

import (
	"crewtask/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client, logger *zap.Logger) {
	tasks := r.Group("/tasks")
	tasks.Use(middleware.AuthMiddleware())
	tasks.Use(middleware.ContextLogger(logger))
	{
		tasks.POST("",
			middleware.RateLimitByUser(1, 3),
			middleware.RequireManager(),
			middleware.Idempotency(rdb),
			handler.Create,
		)

		tasks.GET("",
			middleware.RateLimitByUser(3, 10),
			handler.List,
		)

		tasks.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			handler.Get,
		)

		tasks.POST("/:id/verification-photo",
			middleware.RateLimitByUser(0.5, 2),
			handler.UploadVerificationPhoto,
		)

		tasks.POST("/assignments/:id/complete",
			middleware.RateLimitByUser(1, 3),
			handler.CompleteAssignment,
		)
	}
}
