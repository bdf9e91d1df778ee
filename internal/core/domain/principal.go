package domain

// PrincipalSource tags where a principal was materialized from.
type PrincipalSource string

const (
	// PrincipalSourceGuest marks a virtual principal with no backing user row.
	PrincipalSourceGuest PrincipalSource = "guest"
	// PrincipalSourceStored marks a principal resolved from a stored user record.
	PrincipalSourceStored PrincipalSource = "stored"
)

// Principal is a resolved identity plus its authority set. It lives for the
// scope of a single login attempt or request and is never persisted.
type Principal struct {
	Name                  string
	PasswordHash          string
	Enabled               bool
	AccountNonLocked      bool
	AccountNonExpired     bool
	CredentialsNonExpired bool
	Authorities           []string
	Source                PrincipalSource
}

// IsGuest reports whether the principal was materialized from the guest branch.
func (p Principal) IsGuest() bool {
	return p.Source == PrincipalSourceGuest
}

// CanAuthenticate reports whether all four account status flags allow a login.
// Each flag is an independent denial reason; all must hold.
func (p Principal) CanAuthenticate() bool {
	return p.Enabled && p.AccountNonLocked && p.AccountNonExpired && p.CredentialsNonExpired
}

// HasAuthority reports whether the principal holds the given permission code.
func (p Principal) HasAuthority(code string) bool {
	for _, authority := range p.Authorities {
		if authority == code {
			return true
		}
	}
	return false
}

// AuthenticatedContext is the per-request reconstruction of a principal's
// subject and authorities, derived solely from a validated token. An empty
// Subject denotes an anonymous request.
type AuthenticatedContext struct {
	Subject     string
	Authorities []string
}

// IsAnonymous reports whether the context carries no authenticated subject.
func (c AuthenticatedContext) IsAnonymous() bool {
	return c.Subject == ""
}

// HasAuthority reports whether the context carries the given permission code.
func (c AuthenticatedContext) HasAuthority(code string) bool {
	for _, authority := range c.Authorities {
		if authority == code {
			return true
		}
	}
	return false
}
