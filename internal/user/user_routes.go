package user

import (
	"crewtask/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, logger *zap.Logger) {
	workers := r.Group("/workers")
	workers.Use(middleware.AuthMiddleware())
	workers.Use(middleware.ContextLogger(logger))
	{
		workers.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RequireManager(),
			handler.ListWorkers,
		)

		workers.PATCH("/:id/role",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RequireAdmin(),
			handler.UpdateRole,
		)
	}

	me := r.Group("/me")
	me.Use(middleware.AuthMiddleware())
	me.Use(middleware.ContextLogger(logger))
	{
		me.GET("", middleware.RateLimitByUser(2, 5), handler.Me)
	}
}
