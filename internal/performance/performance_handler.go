package performance

import (
	"net/http"

	"crewtask/internal/shared/apperror"
	"crewtask/internal/shared/contextutil"
	"crewtask/internal/shared/response"
	"crewtask/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("performance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("performance.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperror.AppError); ok {
		response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, nil)
		return
	}
	response.Error(c, http.StatusInternalServerError,
		apperror.CodeInternalError, "Internal server error", nil)
}

func (h *Handler) GetStats(c *gin.Context) {
	actor := user.IdentityFrom(c)
	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.service.GetStats(ctx, actor)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) ListSnapshots(c *gin.Context) {
	actor := user.IdentityFrom(c)
	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.service.ListSnapshots(ctx, actor)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}
