package storage

import (
	"context"
	"fmt"
	"time"
)

const VerificationBucket = "task-verifications"

// VerificationUploader namespaces verification photos per task and hands
// back the public URL that completion records carry.
type VerificationUploader struct {
	store  ObjectStore
	bucket string
}

func NewVerificationUploader(store ObjectStore) *VerificationUploader {
	return &VerificationUploader{store: store, bucket: VerificationBucket}
}

func (u *VerificationUploader) Upload(ctx context.Context, taskID string, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("task_verification/%s/%d", taskID, time.Now().UnixMilli())

	if err := u.store.Upload(ctx, u.bucket, key, data, contentType); err != nil {
		return "", err
	}

	return u.store.PublicURL(u.bucket, key), nil
}
