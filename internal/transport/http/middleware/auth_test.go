package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mercatto/storefront-iam/internal/core/domain"
	"github.com/mercatto/storefront-iam/internal/infra/config"
	"github.com/mercatto/storefront-iam/internal/infra/security"
	"github.com/mercatto/storefront-iam/internal/repository"
	"github.com/mercatto/storefront-iam/internal/usecase"
)

type emptyUserRepo struct{}

func (emptyUserRepo) GetByName(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

type emptyRoleRepo struct{}

func (emptyRoleRepo) ListByUser(context.Context, int64) ([]domain.Role, error) {
	return nil, nil
}

type staticPermRepo struct {
	grants map[int64][]domain.Permission
}

func (r staticPermRepo) ListByRole(_ context.Context, roleID int64) ([]domain.Permission, error) {
	return r.grants[roleID], nil
}

func newGuestAuthService(t *testing.T) (*usecase.AuthService, *security.TokenService) {
	t.Helper()

	cfg := &config.AppConfig{
		App: config.AppSettings{Name: "storefront-iam-test", Env: "test"},
		Security: config.SecuritySettings{
			GuestEnabled:       true,
			GuestUsername:      "visitor",
			GuestRoleID:        7,
			JWTExpirationHours: 1,
			SigningSecret:      "0123456789abcdef0123456789abcdef",
		},
	}
	if err := cfg.Security.Validate(); err != nil {
		t.Fatalf("validate security config: %v", err)
	}

	tokens, err := security.NewTokenService(cfg.Security.SigningSecret, cfg.App.Name, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	perms := staticPermRepo{grants: map[int64][]domain.Permission{
		7: {{ID: 1, Code: "browse"}},
	}}
	principals := usecase.NewPrincipalService(cfg, emptyUserRepo{}, emptyRoleRepo{}, usecase.NewPermissionService(perms), nil)
	return usecase.NewAuthService(principals, tokens, nil), tokens
}

func guestToken(t *testing.T, auth *usecase.AuthService) string {
	t.Helper()
	result, err := auth.Login(context.Background(), "visitor", "ignored")
	if err != nil {
		t.Fatalf("guest login: %v", err)
	}
	return result.AccessToken
}

func newFilterEngine(auth *usecase.AuthService) (*gin.Engine, *domain.AuthenticatedContext) {
	gin.SetMode(gin.TestMode)
	observed := &domain.AuthenticatedContext{}

	r := gin.New()
	r.Use(TokenFilter(auth, nil))
	r.GET("/probe", func(c *gin.Context) {
		*observed = GetAuthContext(c)
		c.Status(http.StatusOK)
	})
	return r, observed
}

func decodeError(t *testing.T, body []byte) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func TestTokenFilter_NoHeaderProceedsAnonymously(t *testing.T) {
	auth, _ := newGuestAuthService(t)
	engine, observed := newFilterEngine(auth)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous request, got %d", rec.Code)
	}
	if !observed.IsAnonymous() {
		t.Fatalf("expected anonymous context, got %+v", observed)
	}
}

func TestTokenFilter_ValidTokenPopulatesContext(t *testing.T) {
	auth, _ := newGuestAuthService(t)
	engine, observed := newFilterEngine(auth)
	token := guestToken(t, auth)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if observed.Subject != "visitor" {
		t.Fatalf("expected subject visitor, got %q", observed.Subject)
	}
	if !observed.HasAuthority("browse") {
		t.Fatalf("expected browse authority, got %v", observed.Authorities)
	}
}

func TestTokenFilter_RejectionsAreUniform(t *testing.T) {
	auth, tokens := newGuestAuthService(t)
	engine, _ := newFilterEngine(auth)

	issuedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	current := issuedAt
	tokens.WithClock(func() time.Time { return current })
	expiring := guestToken(t, auth)
	current = issuedAt.Add(2 * time.Hour)

	cases := map[string]string{
		"malformed header": "Bearer",
		"wrong scheme":     "Basic dXNlcjpwdw==",
		"garbage token":    "Bearer not.a.token",
		"expired token":    "Bearer " + expiring,
	}

	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
		if resp := decodeError(t, rec.Body.Bytes()); resp.Error != "unauthenticated" {
			t.Fatalf("%s: expected uniform body, got %q", name, resp.Error)
		}
	}
}

func TestRequireAuthenticated_RejectsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth, _ := newGuestAuthService(t)

	r := gin.New()
	r.Use(TokenFilter(auth, nil))
	r.GET("/private", RequireAuthenticated(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous request, got %d", rec.Code)
	}
}

func TestRequireAuthority_Distinguishes401From403(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth, _ := newGuestAuthService(t)
	token := guestToken(t, auth)

	r := gin.New()
	r.Use(TokenFilter(auth, nil))
	r.GET("/browse", RequireAuthority("browse"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/refund", RequireAuthority("refund"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/browse", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/browse", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("granted authority: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/refund", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("missing authority: expected 403, got %d", rec.Code)
	}
}
