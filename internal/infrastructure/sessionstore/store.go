package sessionstore

import (
	"context"
	"errors"

	"github.com/huggypanda/backend/internal/shared/types"
)

// ErrUnavailable wraps failures to reach the backing store
var ErrUnavailable = errors.New("session store unavailable")

// Store mints and checks session tokens
type Store interface {
	Create(ctx context.Context) (string, error)
	Validate(ctx context.Context, token string) (types.Validity, error)
	Close() error
}
