package user

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"crewtask/internal/domain"
	"crewtask/internal/shared/apperror"
	"crewtask/internal/shared/contextutil"
	"crewtask/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc    Service
	logger *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("user.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.handler")
	}
	return &Handler{svc: service, logger: l}
}

func writeError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperror.AppError); ok {
		response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, nil)
		return
	}

	response.Error(c, http.StatusInternalServerError,
		apperror.CodeInternalError, "Internal server error", nil)
}

// IdentityFrom rebuilds the session identity placed on the request by the
// auth middleware.
func IdentityFrom(c *gin.Context) Identity {
	role, _ := domain.ParseRole(c.GetString("role"))
	return Identity{
		UserID:     c.GetString("user_id"),
		AuthID:     c.GetString("auth_id"),
		BusinessID: c.GetString("business_id"),
		Role:       role,
		IsManager:  role.HasManagerCapability(),
	}
}

func (h *Handler) ListWorkers(c *gin.Context) {
	actor := IdentityFrom(c)
	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	h.logger.Debug("http list workers", zap.String("business_id", actor.BusinessID))

	resp, err := h.svc.ListWorkers(ctx, actor.BusinessID)
	if err != nil {
		writeError(c, err)
		return
	}

	q := strings.TrimSpace(strings.ToLower(c.Query("q")))
	if q != "" {
		filtered := make([]WorkerResponse, 0, len(resp))
		for _, w := range resp {
			name := strings.ToLower(w.FirstName + " " + w.LastName)
			if strings.Contains(name, q) || strings.Contains(strings.ToLower(w.Email), q) {
				filtered = append(filtered, w)
			}
		}
		resp = filtered
	}

	role := strings.TrimSpace(strings.ToLower(c.Query("role")))
	if role != "" {
		filtered := make([]WorkerResponse, 0, len(resp))
		for _, w := range resp {
			if w.Role == role {
				filtered = append(filtered, w)
			}
		}
		resp = filtered
	}

	sortDir := strings.ToLower(strings.TrimSpace(c.DefaultQuery("sort_dir", "asc")))
	if sortDir != "desc" {
		sortDir = "asc"
	}
	sort.Slice(resp, func(i, j int) bool {
		less := strings.ToLower(resp[i].FirstName) < strings.ToLower(resp[j].FirstName)
		if sortDir == "desc" {
			return !less
		}
		return less
	})

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 {
		pageSize = 20
	}

	total := int64(len(resp))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(resp) {
		start = len(resp)
	}
	if end > len(resp) {
		end = len(resp)
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) UpdateRole(c *gin.Context) {
	actor := IdentityFrom(c)
	targetID := c.Param("id")

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperror.MapValidationError(err))
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeError(c, apperror.InvalidField("Role"))
		return
	}

	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.svc.UpdateRole(ctx, actor, targetID, role)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) Me(c *gin.Context) {
	actor := IdentityFrom(c)
	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	// Re-resolve instead of echoing token claims so a freshly changed role
	// is visible without waiting for token refresh.
	id, err := h.svc.Resolve(ctx, actor.AuthID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, id, nil)
}
