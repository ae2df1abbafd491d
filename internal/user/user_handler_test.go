package user_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crewtask/internal/user"
	userMock "crewtask/internal/user/mock"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type workerListEnvelope struct {
	Ok   bool                  `json:"ok"`
	Data []user.WorkerResponse `json:"data"`
	Meta map[string]any        `json:"meta"`
}

func TestHandler_ListWorkers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := userMock.NewMockService(ctrl)
	handler := user.NewHandler(mockService)

	businessID := uuid.New().String()
	workers := []user.WorkerResponse{
		{ID: uuid.New().String(), FirstName: "Ana", LastName: "Reyes", Email: "ana@shop.test", Role: "worker"},
		{ID: uuid.New().String(), FirstName: "Ben", LastName: "Cruz", Email: "ben@shop.test", Role: "worker"},
		{ID: uuid.New().String(), FirstName: "Cara", LastName: "Lim", Email: "cara@shop.test", Role: "manager"},
	}

	serve := func(query string) workerListEnvelope {
		mockService.EXPECT().ListWorkers(gomock.Any(), businessID).
			Return(append([]user.WorkerResponse(nil), workers...), nil)

		w := httptest.NewRecorder()
		_, r := gin.CreateTestContext(w)
		r.Use(func(c *gin.Context) {
			c.Set("auth_id", uuid.New().String())
			c.Set("user_id", uuid.New().String())
			c.Set("business_id", businessID)
			c.Set("role", "manager")
			c.Next()
		})
		r.GET("/users/workers", handler.ListWorkers)

		req, _ := http.NewRequest(http.MethodGet, "/users/workers"+query, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var res workerListEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.True(t, res.Ok)
		return res
	}

	t.Run("Ascending By Default", func(t *testing.T) {
		res := serve("")
		assert.Len(t, res.Data, 3)
		assert.Equal(t, "Ana", res.Data[0].FirstName)
		assert.Equal(t, "Cara", res.Data[2].FirstName)
	})

	t.Run("Filters By Name Or Email", func(t *testing.T) {
		res := serve("?q=ben")
		assert.Len(t, res.Data, 1)
		assert.Equal(t, "Ben", res.Data[0].FirstName)
	})

	t.Run("Filters By Role", func(t *testing.T) {
		res := serve("?role=manager")
		assert.Len(t, res.Data, 1)
		assert.Equal(t, "Cara", res.Data[0].FirstName)
	})

	t.Run("Sorts Descending", func(t *testing.T) {
		res := serve("?sort_dir=desc")
		assert.Len(t, res.Data, 3)
		assert.Equal(t, "Cara", res.Data[0].FirstName)
		assert.Equal(t, "Ana", res.Data[2].FirstName)
	})

	t.Run("Page Beyond End Is Empty", func(t *testing.T) {
		res := serve("?page=5&page_size=2")
		assert.Empty(t, res.Data)
		assert.Equal(t, float64(3), res.Meta["total"])
		assert.Equal(t, float64(2), res.Meta["totalPages"])
		assert.Equal(t, float64(5), res.Meta["page"])
	})

	t.Run("Clamps Bad Paging Input", func(t *testing.T) {
		res := serve("?page=0&page_size=-3")
		assert.Len(t, res.Data, 3)
		assert.Equal(t, float64(1), res.Meta["page"])
		assert.Equal(t, float64(20), res.Meta["pageSize"])
	})
}
