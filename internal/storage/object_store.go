package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	storageerrors "crewtask/internal/storage/errors"

	"go.uber.org/zap"
)

//go:generate mockgen -source=object_store.go -destination=mock/object_store_mock.go -package=mock
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error
	PublicURL(bucket, key string) string
}

// uploadStrategy is one attempt in the fallback chain. Each strategy either
// succeeds or reports why, and the chain moves on.
type uploadStrategy struct {
	name string
	run  func(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// HTTPStore talks to the object-storage service's REST surface. Large raw
// uploads occasionally die in flaky networks, so a base64 JSON body is kept
// as a second attempt.
type HTTPStore struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

func NewHTTPStore(baseURL, token string, logger ...*zap.Logger) *HTTPStore {
	l := zap.L().Named("storage.http")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("storage.http")
	}
	return &HTTPStore{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  l,
	}
}

func (s *HTTPStore) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	strategies := []uploadStrategy{
		{name: "binary", run: s.uploadBinary},
		{name: "base64", run: s.uploadBase64},
	}

	var lastErr error
	for _, strat := range strategies {
		err := strat.run(ctx, bucket, key, data, contentType)
		if err == nil {
			if lastErr != nil {
				s.logger.Info("upload recovered by fallback",
					zap.String("strategy", strat.name),
					zap.String("key", key),
				)
			}
			return nil
		}

		s.logger.Warn("upload strategy failed",
			zap.String("strategy", strat.name),
			zap.String("key", key),
			zap.Error(err),
		)
		lastErr = storageerrors.UploadFailed(strat.name, err)
	}

	return lastErr
}

func (s *HTTPStore) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, bucket, key)
}

func (s *HTTPStore) uploadBinary(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/object/%s/%s", s.baseURL, bucket, key),
		bytes.NewReader(data),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", contentType)

	return s.do(req)
}

func (s *HTTPStore) uploadBase64(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	body, err := json.Marshal(map[string]string{
		"data":         base64.StdEncoding.EncodeToString(data),
		"content_type": contentType,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/object/%s/%s", s.baseURL, bucket, key),
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Upload-Encoding", "base64")

	return s.do(req)
}

func (s *HTTPStore) do(req *http.Request) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("storage service returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
