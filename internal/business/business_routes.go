package business

import (
	"crewtask/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, logger *zap.Logger) {
	biz := r.Group("/businesses")
	biz.Use(middleware.AuthMiddleware())
	biz.Use(middleware.ContextLogger(logger))
	{
		biz.GET("",
			middleware.RateLimitByUser(2, 10),
			handler.List,
		)

		biz.POST("",
			middleware.RateLimitByUser(0.5, 1),
			middleware.RequireAdmin(),
			handler.Create,
		)

		biz.GET("/:id",
			middleware.RateLimitByUser(2, 10),
			handler.Get,
		)

		biz.PUT("/:id",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RequireManager(),
			handler.Update,
		)
	}
}
