package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"crewtask/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStore_Upload_Binary(t *testing.T) {
	payload := []byte("jpeg-bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/object/task-verifications/some/key", r.URL.Path)
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("X-Upload-Encoding"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, payload, body)

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, "svc-token")

	err := store.Upload(context.Background(), "task-verifications", "some/key", payload, "image/jpeg")
	assert.NoError(t, err)
}

func TestHTTPStore_Upload_FallsBackToBase64(t *testing.T) {
	payload := []byte("jpeg-bytes")
	var attempts []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Upload-Encoding") != "base64" {
			attempts = append(attempts, "binary")
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		attempts = append(attempts, "base64")

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		decoded, err := base64.StdEncoding.DecodeString(body["data"])
		assert.NoError(t, err)
		assert.Equal(t, payload, decoded)
		assert.Equal(t, "image/jpeg", body["content_type"])

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, "svc-token")

	err := store.Upload(context.Background(), "task-verifications", "some/key", payload, "image/jpeg")
	assert.NoError(t, err)
	assert.Equal(t, []string{"binary", "base64"}, attempts, "binary is tried first, base64 second")
}

func TestHTTPStore_Upload_AllStrategiesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "disk full")
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, "svc-token")

	err := store.Upload(context.Background(), "task-verifications", "some/key", []byte("x"), "image/png")
	assert.Error(t, err)

	appErr, ok := err.(*apperror.AppError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, appErr.HTTPStatus)
	// The surfaced error reflects the last strategy in the chain.
	assert.Contains(t, appErr.Message, "base64")
}

func TestHTTPStore_PublicURL(t *testing.T) {
	store := NewHTTPStore("https://storage.internal", "svc-token")

	got := store.PublicURL("task-verifications", "task_verification/abc/123")
	assert.Equal(t, "https://storage.internal/object/public/task-verifications/task_verification/abc/123", got)
}

func TestVerificationUploader_Upload(t *testing.T) {
	taskID := uuid.New().String()

	var gotBucket, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/object/"), "/", 2)
		gotBucket, gotKey = parts[0], parts[1]
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	uploader := NewVerificationUploader(NewHTTPStore(srv.URL, "svc-token"))

	url, err := uploader.Upload(context.Background(), taskID, []byte("jpeg-bytes"), "image/jpeg")
	assert.NoError(t, err)

	assert.Equal(t, VerificationBucket, gotBucket)
	assert.True(t, strings.HasPrefix(gotKey, "task_verification/"+taskID+"/"))
	assert.Equal(t, srv.URL+"/object/public/"+VerificationBucket+"/"+gotKey, url)
}
