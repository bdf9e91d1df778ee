package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mercatto/storefront-iam/internal/core/domain"
	"github.com/mercatto/storefront-iam/internal/infra/logger"
	"github.com/mercatto/storefront-iam/internal/infra/security"
)

var (
	// ErrInvalidCredentials covers both unknown identities and wrong
	// passwords. The two cases must stay indistinguishable in anything a
	// client can observe; internal logs keep them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled indicates a status flag denied the login.
	ErrAccountDisabled = errors.New("account disabled")
)

// AuthService verifies credentials and issues access tokens. It holds no
// mutable state; concurrent logins and validations need no locking.
type AuthService struct {
	principals *PrincipalService
	tokens     *security.TokenService
	log        *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(principals *PrincipalService, tokens *security.TokenService, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		principals: principals,
		tokens:     tokens,
		log:        log,
	}
}

// LoginResult carries the issued token and the principal it was issued for.
// The principal's password hash is cleared before it leaves this package.
type LoginResult struct {
	AccessToken string
	ExpiresIn   int
	Principal   domain.Principal
}

// Login validates credentials for the named identity and issues a signed
// token embedding the principal's authority snapshot.
//
// The guest identity is granted a token without credential verification;
// every other principal's password is checked in constant time against its
// stored hash.
func (s *AuthService) Login(ctx context.Context, name, password string) (*LoginResult, error) {
	if name == "" {
		return nil, fmt.Errorf("identity name is required")
	}

	principal, err := s.principals.LoadPrincipal(ctx, name)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			s.log.Info("login rejected",
				zap.String("identity", logger.MaskIdentity(name)),
				zap.String("reason", "unknown-identity"),
			)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}

	if !principal.IsGuest() {
		ok, err := security.VerifyPassword(password, principal.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("verify password: %w", err)
		}
		if !ok {
			s.log.Info("login rejected",
				zap.String("identity", logger.MaskIdentity(name)),
				zap.String("reason", "bad-credential"),
			)
			return nil, ErrInvalidCredentials
		}
	}

	if !principal.CanAuthenticate() {
		s.log.Info("login rejected",
			zap.String("identity", logger.MaskIdentity(name)),
			zap.String("reason", "account-disabled"),
		)
		return nil, ErrAccountDisabled
	}

	token, err := s.tokens.Issue(principal.Name, principal.Authorities)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info("login succeeded",
		zap.String("identity", logger.MaskIdentity(name)),
		zap.Bool("guest", principal.IsGuest()),
		zap.Int("authorities", len(principal.Authorities)),
	)

	sanitized := *principal
	sanitized.PasswordHash = ""

	return &LoginResult{
		AccessToken: token,
		ExpiresIn:   int(s.tokens.Lifetime().Seconds()),
		Principal:   sanitized,
	}, nil
}

// ValidateToken verifies a raw token and reconstructs the authenticated
// context from its claims alone, without touching storage.
func (s *AuthService) ValidateToken(raw string) (*domain.AuthenticatedContext, error) {
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}

	return &domain.AuthenticatedContext{
		Subject:     claims.Subject,
		Authorities: claims.Authorities,
	}, nil
}
