package middleware

import (
	"crewtask/internal/domain"
	"crewtask/internal/shared/apperror"
	"crewtask/internal/shared/response"

	"github.com/gin-gonic/gin"
)

func forbid(c *gin.Context) {
	e := apperror.ErrForbidden
	response.Error(c, e.HTTPStatus, e.Code, e.Message, nil)
	c.Abort()
}

// RequireManager admits managers and admins. Worker visibility is handled at
// the service layer, not here.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := domain.ParseRole(c.GetString("role"))
		if err != nil || !role.HasManagerCapability() {
			forbid(c)
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := domain.ParseRole(c.GetString("role"))
		if err != nil || !role.IsAdmin() {
			forbid(c)
			return
		}
		c.Next()
	}
}
