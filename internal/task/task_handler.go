package task

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"crewtask/internal/shared/apperror"
	"crewtask/internal/shared/contextutil"
	"crewtask/internal/shared/response"
	taskerrors "crewtask/internal/task/errors"
	"crewtask/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 5 MB is plenty for a phone camera shot after client-side compression.
const maxVerificationPhotoSize = 5 << 20

type PhotoUploader interface {
	Upload(ctx context.Context, taskID string, data []byte, contentType string) (string, error)
}

type Handler struct {
	service  Service
	uploader PhotoUploader
	rdb      *redis.Client
	logger   *zap.Logger
}

func NewHandler(service Service, uploader PhotoUploader, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("task.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("task.handler")
	}
	return &Handler{service: service, uploader: uploader, rdb: rdb, logger: l}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperror.AppError); ok {
		response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, nil)
		return
	}
	response.Error(c, http.StatusInternalServerError,
		apperror.CodeInternalError, "Internal server error", nil)
}

func (h *Handler) Create(c *gin.Context) {
	lockKey, _ := c.Get("idempotency_lock_key")
	cacheKey, _ := c.Get("idempotency_cache_key")

	if h.rdb != nil {
		if lk, ok := lockKey.(string); ok && lk != "" {
			defer h.rdb.Del(c.Request.Context(), lk)
		}
	}

	actor := user.IdentityFrom(c)

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperror.MapValidationError(err))
		return
	}

	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	resp, err := h.service.Create(ctx, actor, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if h.rdb != nil {
		if ck, ok := cacheKey.(string); ok && ck != "" {
			if payload, marshalErr := json.Marshal(resp); marshalErr == nil {
				_ = h.rdb.Set(c.Request.Context(), ck, payload, 24*time.Hour).Err()
			}
		}
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	actor := user.IdentityFrom(c)
	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	resp, err := h.service.ListVisible(ctx, actor)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Get(c *gin.Context) {
	actor := user.IdentityFrom(c)
	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	resp, err := h.service.GetByID(ctx, actor, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) CompleteAssignment(c *gin.Context) {
	actor := user.IdentityFrom(c)

	var req CompleteAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		h.writeError(c, apperror.MapValidationError(err))
		return
	}

	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	resp, err := h.service.CompleteAssignment(ctx, actor, c.Param("id"), req.VerificationPhotoURL)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// UploadVerificationPhoto stores the photo and returns its public URL. The
// client feeds that URL into the assignment completion call.
func (h *Handler) UploadVerificationPhoto(c *gin.Context) {
	actor := user.IdentityFrom(c)
	taskID := c.Param("id")

	if _, err := uuid.Parse(taskID); err != nil {
		h.writeError(c, taskerrors.ErrInvalidTaskID)
		return
	}

	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	// Uploading for a task outside the caller's business is rejected the
	// same way any other lookup would be.
	if _, err := h.service.GetByID(ctx, actor, taskID); err != nil {
		h.writeError(c, err)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		h.writeError(c, apperror.RequiredField("photo"))
		return
	}
	if fileHeader.Size > maxVerificationPhotoSize {
		h.writeError(c, apperror.InvalidField("photo"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxVerificationPhotoSize))
	if err != nil {
		h.writeError(c, err)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.uploader.Upload(ctx, taskID, data, contentType)
	if err != nil {
		h.logger.Error("verification photo upload failed",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"url": url}, nil)
}
