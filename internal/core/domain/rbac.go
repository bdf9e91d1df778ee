package domain

// Role is a named bundle of permissions assignable to users.
type Role struct {
	ID   int64
	Name string
}

// Permission defines a protected action. Its Code is used verbatim as an
// authority string inside tokens.
type Permission struct {
	ID   int64
	Code string
}

// RolePermission is a junction fact granting one permission to one role.
type RolePermission struct {
	RoleID       int64
	PermissionID int64
}

// UserRole assigns a role to a user.
type UserRole struct {
	UserID int64
	RoleID int64
}
