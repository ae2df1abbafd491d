package storageerrors

import (
	"fmt"
	"net/http"

	"crewtask/internal/shared/apperror"
)

// UploadFailed names the strategy that exhausted the chain so callers can
// tell a transport failure from an encoding one.
func UploadFailed(stage string, err error) *apperror.AppError {
	return apperror.Wrap(
		err,
		apperror.CodeUploadFailed,
		fmt.Sprintf("Upload failed at %s stage", stage),
		http.StatusBadGateway,
	)
}
