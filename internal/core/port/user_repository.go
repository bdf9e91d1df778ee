package port

import (
	"context"

	"github.com/mercatto/storefront-iam/internal/core/domain"
)

// UserRepository exposes read-only lookup of stored users.
type UserRepository interface {
	GetByName(ctx context.Context, name string) (*domain.User, error)
}
