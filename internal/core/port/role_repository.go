package port

import (
	"context"

	"github.com/mercatto/storefront-iam/internal/core/domain"
)

// RoleRepository exposes role lookups.
type RoleRepository interface {
	// ListByUser returns the roles attached to a user; a user may map to one
	// or more roles.
	ListByUser(ctx context.Context, userID int64) ([]domain.Role, error)
}
