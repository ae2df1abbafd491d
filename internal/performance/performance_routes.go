package performance

import (
	"crewtask/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, logger *zap.Logger) {
	perf := r.Group("/performance")
	perf.Use(middleware.AuthMiddleware())
	perf.Use(middleware.ContextLogger(logger))
	{
		perf.GET("/stats",
			middleware.RateLimitByUser(2, 5),
			handler.GetStats,
		)

		perf.GET("/snapshots",
			middleware.RateLimitByUser(2, 5),
			handler.ListSnapshots,
		)
	}
}
