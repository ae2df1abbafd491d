package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crewtask/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestIdempotency(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.New().String()
	idempKey := uuid.New().String()
	cacheKey := "idemp:/tasks:" + userID + ":" + idempKey
	lockKey := cacheKey + ":lock"

	newRoute := func(w *httptest.ResponseRecorder, rdb *redis.Client, called *bool) *gin.Engine {
		_, r := gin.CreateTestContext(w)
		r.Use(func(c *gin.Context) {
			c.Set("user_id", userID)
			c.Next()
		})
		r.Use(middleware.Idempotency(rdb))
		r.POST("/tasks", func(c *gin.Context) {
			*called = true
			c.JSON(http.StatusCreated, gin.H{"id": "t-1"})
		})
		return r
	}

	t.Run("First Call Passes Through", func(t *testing.T) {
		rdb, rmock := redismock.NewClientMock()
		rmock.ExpectGet(cacheKey).RedisNil()
		rmock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)

		called := false
		w := httptest.NewRecorder()
		r := newRoute(w, rdb, &called)

		req, _ := http.NewRequest(http.MethodPost, "/tasks", nil)
		req.Header.Set("Idempotency-Key", idempKey)
		r.ServeHTTP(w, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("Replays Cached Response", func(t *testing.T) {
		rdb, rmock := redismock.NewClientMock()
		rmock.ExpectGet(cacheKey).SetVal(`{"id":"t-1"}`)

		called := false
		w := httptest.NewRecorder()
		r := newRoute(w, rdb, &called)

		req, _ := http.NewRequest(http.MethodPost, "/tasks", nil)
		req.Header.Set("Idempotency-Key", idempKey)
		r.ServeHTTP(w, req)

		assert.False(t, called, "handler must not run again for a replayed key")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"t-1"`)
		assert.Contains(t, w.Body.String(), "success")
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("Duplicate In Flight Conflicts", func(t *testing.T) {
		rdb, rmock := redismock.NewClientMock()
		rmock.ExpectGet(cacheKey).RedisNil()
		rmock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(false)

		called := false
		w := httptest.NewRecorder()
		r := newRoute(w, rdb, &called)

		req, _ := http.NewRequest(http.MethodPost, "/tasks", nil)
		req.Header.Set("Idempotency-Key", idempKey)
		r.ServeHTTP(w, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "PROCESSING")
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("Missing Key Skips Redis", func(t *testing.T) {
		rdb, rmock := redismock.NewClientMock()

		called := false
		w := httptest.NewRecorder()
		r := newRoute(w, rdb, &called)

		req, _ := http.NewRequest(http.MethodPost, "/tasks", nil)
		r.ServeHTTP(w, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})
}
