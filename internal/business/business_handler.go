package business

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
	l := zap.L().Named("business.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("business.handler")
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

func (h *Handler) List(c *gin.Context) {
	actor := user.IdentityFrom(c)
	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.service.List(ctx, actor)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) Create(c *gin.Context) {
	actor := user.IdentityFrom(c)

	var req CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperror.MapValidationError(err))
		return
	}

	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.service.Create(ctx, actor, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, res, nil)
}

func (h *Handler) Get(c *gin.Context) {
	actor := user.IdentityFrom(c)
	id := c.Param("id")

	// Non-admins may only fetch the business they belong to.
	if !actor.Role.IsAdmin() && actor.BusinessID != id {
		h.writeError(c, apperror.ErrForbidden)
		return
	}

	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) Update(c *gin.Context) {
	actor := user.IdentityFrom(c)
	id := c.Param("id")

	var req UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperror.MapValidationError(err))
		return
	}

	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.service.Update(ctx, actor, id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}
