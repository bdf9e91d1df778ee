package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/mercatto/storefront-iam/internal/core/domain"
	"github.com/mercatto/storefront-iam/internal/core/port"
)

// PermissionRepository implements port.PermissionRepository over PostgreSQL.
// The query returns DISTINCT rows; a permission reachable through several
// grant rows appears once.
type PermissionRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPermissionRepository constructs a permission repository instance.
func NewPermissionRepository(exec pgExecutor) *PermissionRepository {
	return &PermissionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListByRole returns permissions granted to a role via role_permissions.
// An unknown role yields an empty slice, never an error.
func (r *PermissionRepository) ListByRole(ctx context.Context, roleID int64) ([]domain.Permission, error) {
	stmt, args, err := r.builder.Select("DISTINCT p.id", "p.code").
		From("auth.permissions p").
		Join("auth.role_permissions rp ON rp.permission_id = p.id").
		Where(squirrel.Eq{"rp.role_id": roleID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permissions by role sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query permissions by role: %w", err)
	}
	defer rows.Close()

	var permissions []domain.Permission
	for rows.Next() {
		var permission domain.Permission
		if err := rows.Scan(&permission.ID, &permission.Code); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		permissions = append(permissions, permission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return permissions, nil
}

var _ port.PermissionRepository = (*PermissionRepository)(nil)
