package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mercatto/storefront-iam/internal/core/domain"
	"github.com/mercatto/storefront-iam/internal/core/port"
	"github.com/mercatto/storefront-iam/internal/infra/config"
	"github.com/mercatto/storefront-iam/internal/repository"
)

// ErrPrincipalNotFound indicates the identity does not exist and is not the
// configured guest identity. Callers must reject the attempt, never proceed
// with an empty principal.
var ErrPrincipalNotFound = errors.New("principal not found")

// PrincipalService materializes principals from either the configured guest
// identity or a stored user record. Every load is a pure function of its
// input, the read-only configuration, and the current storage snapshot.
type PrincipalService struct {
	cfg         *config.AppConfig
	users       port.UserRepository
	roles       port.RoleRepository
	permissions *PermissionService
	log         *zap.Logger
}

// NewPrincipalService constructs a PrincipalService instance.
func NewPrincipalService(
	cfg *config.AppConfig,
	users port.UserRepository,
	roles port.RoleRepository,
	permissions *PermissionService,
	log *zap.Logger,
) *PrincipalService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PrincipalService{
		cfg:         cfg,
		users:       users,
		roles:       roles,
		permissions: permissions,
		log:         log,
	}
}

// LoadPrincipal resolves the identity name to a fully-populated principal.
//
// The guest identity is matched exactly and case-sensitively, has no backing
// user row, and resolves its authorities from the configured guest role. All
// other names go through user storage; absent users yield
// ErrPrincipalNotFound.
func (s *PrincipalService) LoadPrincipal(ctx context.Context, name string) (*domain.Principal, error) {
	if s.cfg.Security.GuestEnabled && name == s.cfg.Security.GuestUsername {
		return s.loadGuest(ctx, name)
	}

	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	roles, err := s.roles.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list roles for user: %w", err)
	}

	// Authority set is the union across all of the user's roles.
	seen := make(map[string]struct{})
	var authorities []string
	for _, role := range roles {
		codes, err := s.permissions.ResolveRolePermissions(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		for _, code := range codes {
			if _, exists := seen[code]; exists {
				continue
			}
			seen[code] = struct{}{}
			authorities = append(authorities, code)
		}
	}

	// Status flags are not modelled in storage yet; stored users are always
	// enabled and unlocked. See DESIGN.md before hardening lockout semantics.
	return &domain.Principal{
		Name:                  user.Name,
		PasswordHash:          user.PasswordHash,
		Enabled:               true,
		AccountNonLocked:      true,
		AccountNonExpired:     true,
		CredentialsNonExpired: true,
		Authorities:           authorities,
		Source:                domain.PrincipalSourceStored,
	}, nil
}

func (s *PrincipalService) loadGuest(ctx context.Context, name string) (*domain.Principal, error) {
	authorities, err := s.permissions.ResolveRolePermissions(ctx, s.cfg.Security.GuestRoleID)
	if err != nil {
		return nil, fmt.Errorf("resolve guest authorities: %w", err)
	}

	s.log.Debug("materialized guest principal",
		zap.Int64("guest_role_id", s.cfg.Security.GuestRoleID),
		zap.Int("authorities", len(authorities)),
	)

	return &domain.Principal{
		Name:                  name,
		PasswordHash:          "",
		Enabled:               true,
		AccountNonLocked:      true,
		AccountNonExpired:     true,
		CredentialsNonExpired: true,
		Authorities:           authorities,
		Source:                domain.PrincipalSourceGuest,
	}, nil
}
