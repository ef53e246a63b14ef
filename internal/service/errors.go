package service

import (
	"context"
	"errors"

	"github.com/mparedes/cuestionario-api/internal/retry"
	"github.com/mparedes/cuestionario-api/internal/schema"
)

var (
	ErrTokenNotFound        = errors.New("token not found")
	ErrTokenNotActive       = errors.New("token is not active")
	ErrCuestionarioNotFound = errors.New("cuestionario not found")
	ErrResponseNotFound     = errors.New("response not found")
)

// InvalidCuestionarioError carries the full field-scoped error list from the
// schema validator so the caller can render every problem at once.
type InvalidCuestionarioError struct {
	Errors []schema.ValidationError
}

func (e *InvalidCuestionarioError) Error() string {
	return schema.FormatErrors(e.Errors)
}

// storeCall wraps a backing-store operation with the shared retry policy.
// Services never implement their own retry loops; this is the single
// consistent backoff path.
func storeCall(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, retry.StoreOptions(), func(context.Context) error {
		return fn()
	})
}
