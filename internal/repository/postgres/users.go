package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/mercatto/storefront-iam/internal/core/domain"
	"github.com/mercatto/storefront-iam/internal/core/port"
	"github.com/mercatto/storefront-iam/internal/repository"
)

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByName retrieves a user by its unique identity name.
func (r *UserRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "password_hash", "registered_at").
		From("auth.users").
		Where(squirrel.Eq{"name": name}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by name sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var user domain.User
	if err := row.Scan(&user.ID, &user.Name, &user.PasswordHash, &user.RegisteredAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user by name: %w", err)
	}

	return &user, nil
}

var _ port.UserRepository = (*UserRepository)(nil)
