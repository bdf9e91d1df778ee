package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
)

var (
	// ErrInvalidToken indicates the token is malformed or its signature does not verify.
	ErrInvalidToken = errors.New("token: invalid")
	// ErrExpiredToken indicates the token's validity window has elapsed.
	ErrExpiredToken = errors.New("token: expired")
)

// AccessTokenClaims carries the identity and authority snapshot embedded at
// issuance time. Authorities are never re-derived from storage after the
// token is signed; permission changes take effect on re-authentication.
type AccessTokenClaims struct {
	Authorities []string `json:"authorities,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256-signed access tokens. Issuer and
// validator only need to agree on the shared secret, so the two halves may
// live in different processes.
type TokenService struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService constructs a TokenService with the supplied signing secret
// and token lifetime.
func NewTokenService(secret string, issuer string, lifetime time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("token: signing secret is required")
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("token: lifetime must be positive")
	}

	return &TokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		lifetime: lifetime,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Lifetime returns the configured validity window for issued tokens.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// WithClock overrides the time source. Intended for tests that need to
// observe expiration without sleeping.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	if now != nil {
		s.now = now
	}
	return s
}

// Issue signs a token whose subject is the identity name and whose claims
// snapshot the supplied authority set.
func (s *TokenService) Issue(subject string, authorities []string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", fmt.Errorf("token: subject is required")
	}

	issuedAt := s.now()
	claims := AccessTokenClaims{
		Authorities: normalizeAuthorities(authorities),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.lifetime)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}

	return signed, nil
}

// Validate verifies the signature and expiration of a raw token and returns
// its claims. This is a pure in-memory check; no storage is consulted.
func (s *TokenService) Validate(raw string) (*AccessTokenClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &AccessTokenClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func normalizeAuthorities(input []string) []string {
	if len(input) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, code := range input {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, exists := seen[code]; exists {
			continue
		}
		seen[code] = struct{}{}
		result = append(result, code)
	}

	if len(result) == 0 {
		return nil
	}

	return result
}
