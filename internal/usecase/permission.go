package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/mercatto/storefront-iam/internal/core/port"
)

// PermissionService resolves permission codes from the role->permission grant
// relation. It never walks the graph itself; the repository returns resolved
// sets and the service only deduplicates.
type PermissionService struct {
	permissions port.PermissionRepository
}

// NewPermissionService constructs a PermissionService instance.
func NewPermissionService(permissions port.PermissionRepository) *PermissionService {
	return &PermissionService{permissions: permissions}
}

// ResolveRolePermissions returns the full set of permission codes granted to
// the role. Callers must not depend on iteration order. An unknown or empty
// role resolves to an empty set; that is a valid, safe outcome rather than an
// error.
func (s *PermissionService) ResolveRolePermissions(ctx context.Context, roleID int64) ([]string, error) {
	granted, err := s.permissions.ListByRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("list permissions for role %d: %w", roleID, err)
	}

	seen := make(map[string]struct{}, len(granted))
	codes := make([]string, 0, len(granted))
	for _, permission := range granted {
		code := strings.TrimSpace(permission.Code)
		if code == "" {
			continue
		}
		if _, exists := seen[code]; exists {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	return codes, nil
}
