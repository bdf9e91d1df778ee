package config

import (
	"strings"
	"testing"
	"time"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func validSecurity() SecuritySettings {
	return SecuritySettings{
		GuestEnabled:       true,
		GuestUsername:      "guest",
		GuestRoleID:        7,
		JWTExpirationHours: 1,
		SigningSecret:      validSecret,
	}
}

func TestSecurityValidate_AcceptsValidSettings(t *testing.T) {
	s := validSecurity()
	if err := s.Validate(); err != nil {
		t.Fatalf("expected valid settings to pass, got %v", err)
	}
	if s.PhoneRegexp() == nil {
		t.Fatalf("expected compiled phone pattern after Validate")
	}
	if got := s.TokenLifetime(); got != time.Hour {
		t.Fatalf("expected 1h lifetime, got %v", got)
	}
}

func TestSecurityValidate_RejectsMissingSecret(t *testing.T) {
	s := validSecurity()
	s.SigningSecret = "   "
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for blank signing secret")
	}
}

func TestSecurityValidate_RejectsShortSecret(t *testing.T) {
	s := validSecurity()
	s.SigningSecret = "too-short"
	err := s.Validate()
	if err == nil {
		t.Fatalf("expected error for short signing secret")
	}
	if !strings.Contains(err.Error(), "32") {
		t.Fatalf("expected minimum length in error, got %v", err)
	}
}

func TestSecurityValidate_RejectsNonPositiveLifetime(t *testing.T) {
	for _, hours := range []int{0, -1} {
		s := validSecurity()
		s.JWTExpirationHours = hours
		if err := s.Validate(); err == nil {
			t.Fatalf("expected error for %d expiration hours", hours)
		}
	}
}

func TestSecurityValidate_RejectsGuestWithoutUsername(t *testing.T) {
	s := validSecurity()
	s.GuestUsername = " "
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error when guest is enabled without a username")
	}
}

func TestSecurityValidate_GuestDisabledAllowsEmptyUsername(t *testing.T) {
	s := validSecurity()
	s.GuestEnabled = false
	s.GuestUsername = ""
	if err := s.Validate(); err != nil {
		t.Fatalf("disabled guest must not require a username, got %v", err)
	}
}

func TestSecurityValidate_RejectsMalformedPhonePattern(t *testing.T) {
	s := validSecurity()
	s.PhonePattern = "([unclosed"
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for malformed phone pattern")
	}
}

func TestSecurityValidate_DefaultPhonePattern(t *testing.T) {
	s := validSecurity()
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	re := s.PhoneRegexp()
	for _, ok := range []string{"+15551234567", "5551234"} {
		if !re.MatchString(ok) {
			t.Fatalf("expected %q to match default pattern", ok)
		}
	}
	for _, bad := range []string{"123", "not-a-phone", "+1 555 123"} {
		if re.MatchString(bad) {
			t.Fatalf("expected %q to be rejected by default pattern", bad)
		}
	}
}

func TestLoad_DefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_SECURITY_SIGNING_SECRET", validSecret)
	t.Setenv("STOREFRONT_SECURITY_GUEST_ENABLED", "true")
	t.Setenv("STOREFRONT_SECURITY_GUEST_USERNAME", "visitor")
	t.Setenv("STOREFRONT_SECURITY_GUEST_ROLE_ID", "7")
	t.Setenv("STOREFRONT_APP_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "storefront-iam" {
		t.Fatalf("expected default app name, got %q", cfg.App.Name)
	}
	if cfg.App.Port != 9090 {
		t.Fatalf("expected port override 9090, got %d", cfg.App.Port)
	}
	if !cfg.Security.GuestEnabled || cfg.Security.GuestUsername != "visitor" || cfg.Security.GuestRoleID != 7 {
		t.Fatalf("expected guest overrides applied, got %+v", cfg.Security)
	}
	if cfg.Security.JWTExpirationHours != 1 {
		t.Fatalf("expected default 1h expiration, got %d", cfg.Security.JWTExpirationHours)
	}
	if cfg.Postgres.Port != 5432 {
		t.Fatalf("expected default postgres port, got %d", cfg.Postgres.Port)
	}
}

func TestLoad_FailsWithoutSigningSecret(t *testing.T) {
	t.Setenv("STOREFRONT_SECURITY_SIGNING_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected Load to fail without a signing secret")
	}
}
