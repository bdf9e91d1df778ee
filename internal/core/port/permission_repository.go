package port

import (
	"context"

	"github.com/mercatto/storefront-iam/internal/core/domain"
)

// PermissionRepository exposes the role->permission grant relation.
type PermissionRepository interface {
	// ListByRole returns the permissions granted to a role through the
	// role_permissions junction. Unknown roles yield an empty slice, not an
	// error.
	ListByRole(ctx context.Context, roleID int64) ([]domain.Permission, error)
}
