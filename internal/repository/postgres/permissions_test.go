package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"
)

func newPermissionRepoWithMock(t *testing.T) (*PermissionRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewPermissionRepository(mock), mock
}

func TestPermissionRepository_ListByRole(t *testing.T) {
	repo, mock := newPermissionRepoWithMock(t)

	mock.ExpectQuery(`SELECT DISTINCT p\.id, p\.code FROM auth\.permissions p JOIN auth\.role_permissions rp`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "code"}).
			AddRow(int64(1), "browse").
			AddRow(int64(2), "checkout"))

	permissions, err := repo.ListByRole(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListByRole returned error: %v", err)
	}

	if len(permissions) != 2 {
		t.Fatalf("expected 2 permissions, got %d", len(permissions))
	}
	if permissions[0].Code != "browse" || permissions[1].Code != "checkout" {
		t.Fatalf("unexpected permissions: %+v", permissions)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPermissionRepository_ListByRole_UnknownRole(t *testing.T) {
	repo, mock := newPermissionRepoWithMock(t)

	mock.ExpectQuery(`SELECT DISTINCT p\.id, p\.code FROM auth\.permissions p`).
		WithArgs(int64(999)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "code"}))

	permissions, err := repo.ListByRole(context.Background(), 999)
	if err != nil {
		t.Fatalf("expected no error for unknown role, got %v", err)
	}
	if len(permissions) != 0 {
		t.Fatalf("expected empty result, got %+v", permissions)
	}
}

func TestPermissionRepository_ListByRole_QueryError(t *testing.T) {
	repo, mock := newPermissionRepoWithMock(t)

	mock.ExpectQuery(`SELECT DISTINCT p\.id, p\.code FROM auth\.permissions p`).
		WithArgs(int64(7)).
		WillReturnError(errors.New("connection reset"))

	if _, err := repo.ListByRole(context.Background(), 7); err == nil {
		t.Fatalf("expected error to propagate")
	}
}
