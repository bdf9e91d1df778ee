package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// minSigningSecretBytes is the smallest secret accepted for HS256 signing.
const minSigningSecretBytes = 32

// AppConfig is the process-wide configuration value set. It is constructed
// once at startup and handed by reference to every component; nothing may
// mutate it afterwards.
type AppConfig struct {
	App      AppSettings      `mapstructure:"app"`
	Postgres PostgresSettings `mapstructure:"postgres"`
	Security SecuritySettings `mapstructure:"security"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// SecuritySettings holds the tunables consumed by the authentication core:
// the guest identity, token lifetime, signing material, and the identifier
// shape constraints applied before a name ever reaches the principal loader.
type SecuritySettings struct {
	GuestEnabled       bool   `mapstructure:"guest_enabled"`
	GuestUsername      string `mapstructure:"guest_username"`
	GuestRoleID        int64  `mapstructure:"guest_role_id"`
	JWTExpirationHours int    `mapstructure:"jwt_expiration_hours"`
	SigningSecret      string `mapstructure:"signing_secret"`
	PhonePattern       string `mapstructure:"phone_pattern"`

	phoneRegexp *regexp.Regexp
}

// TokenLifetime returns the configured token validity window.
func (s SecuritySettings) TokenLifetime() time.Duration {
	return time.Duration(s.JWTExpirationHours) * time.Hour
}

// PhoneRegexp returns the compiled identifier pattern. It is non-nil after a
// successful Validate.
func (s SecuritySettings) PhoneRegexp() *regexp.Regexp {
	return s.phoneRegexp
}

// Load reads configuration from the environment with defaults applied.
// The security section is validated here; a malformed section prevents the
// process from serving traffic at all.
func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("STOREFRONT")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"security.guest_enabled",
		"security.guest_username",
		"security.guest_role_id",
		"security.jwt_expiration_hours",
		"security.signing_secret",
		"security.phone_pattern",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Security.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the security section and compiles the identifier pattern.
// Errors here are fatal at startup, never per-request.
func (s *SecuritySettings) Validate() error {
	if strings.TrimSpace(s.SigningSecret) == "" {
		return fmt.Errorf("config: signing secret is required")
	}
	if len(s.SigningSecret) < minSigningSecretBytes {
		return fmt.Errorf("config: signing secret must be at least %d bytes", minSigningSecretBytes)
	}
	if s.JWTExpirationHours <= 0 {
		return fmt.Errorf("config: jwt expiration hours must be positive, got %d", s.JWTExpirationHours)
	}
	if s.GuestEnabled && strings.TrimSpace(s.GuestUsername) == "" {
		return fmt.Errorf("config: guest username is required when the guest identity is enabled")
	}

	pattern := s.PhonePattern
	if pattern == "" {
		pattern = defaultPhonePattern
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("config: invalid phone pattern %q: %w", pattern, err)
	}
	s.phoneRegexp = compiled

	return nil
}

const defaultPhonePattern = `^\+?\d{7,15}$`

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "storefront-iam")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "storefront")
	v.SetDefault("postgres.password", "storefront_password")
	v.SetDefault("postgres.database", "storefront")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("security.guest_enabled", false)
	v.SetDefault("security.guest_username", "guest")
	v.SetDefault("security.guest_role_id", 0)
	v.SetDefault("security.jwt_expiration_hours", 1)
	v.SetDefault("security.signing_secret", "")
	v.SetDefault("security.phone_pattern", defaultPhonePattern)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "STOREFRONT_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
