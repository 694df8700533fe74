package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "change-me-in-production"

// Config holds the runtime settings of the server.
type Config struct {
	Port        string
	Env         string
	FrontendURL string
	LogLevel    string

	DataDir      string
	PublicDir    string
	AuditLogFile string

	StorageDriver string // json, sqlite or postgres
	DatabaseDSN   string

	JWTSecret string
	TokenTTL  time.Duration

	CSRFEnabled bool
	CSRFTTL     time.Duration

	AdminEmails    []string
	TrustedProxies []string // peers allowed to set X-Forwarded-For
	RabbitMQURL    string
}

// Load reads configuration from defaults, an optional config file and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom reads configuration through v, so callers and tests can preset values.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_PORT", ":3000")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("NODE_ENV", "production")
	v.SetDefault("FRONTEND_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("PUBLIC_DIR", "public")
	v.SetDefault("AUDIT_LOG_FILE", filepath.Join("logs", "security.log"))
	v.SetDefault("STORAGE_DRIVER", "json")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("CSRF_ENABLED", true)
	v.SetDefault("CSRF_TTL", "2h")
	v.SetDefault("ADMIN_EMAILS", "")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	env := v.GetString("APP_ENV")
	if env == "" {
		env = v.GetString("NODE_ENV")
	}

	cfg := &Config{
		Port:           v.GetString("APP_PORT"),
		Env:            strings.ToLower(env),
		FrontendURL:    v.GetString("FRONTEND_URL"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		DataDir:        v.GetString("DATA_DIR"),
		PublicDir:      v.GetString("PUBLIC_DIR"),
		AuditLogFile:   v.GetString("AUDIT_LOG_FILE"),
		StorageDriver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		TokenTTL:       v.GetDuration("TOKEN_TTL"),
		CSRFEnabled:    v.GetBool("CSRF_ENABLED"),
		CSRFTTL:        v.GetDuration("CSRF_TTL"),
		AdminEmails:    splitList(v.GetString("ADMIN_EMAILS")),
		TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would make the server unsafe or unusable.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "json":
	case "sqlite", "postgres":
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for storage driver %q", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.CSRFTTL <= 0 {
		return errors.New("CSRF_TTL must be positive")
	}
	for _, proxy := range c.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("TRUSTED_PROXIES: %q is not an IP or CIDR", proxy)
			}
		}
	}
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment reports whether verbose error details may be exposed.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// MembersFile is the JSON member store path.
func (c *Config) MembersFile() string { return filepath.Join(c.DataDir, "members.json") }

// MessagesFile is the JSON message store path.
func (c *Config) MessagesFile() string { return filepath.Join(c.DataDir, "messages.json") }

// ProjectsFile is the JSON project store path.
func (c *Config) ProjectsFile() string { return filepath.Join(c.DataDir, "projects.json") }

// AllowedOrigins lists origins granted CORS access.
func (c *Config) AllowedOrigins() []string {
	origins := []string{}
	if c.FrontendURL != "" {
		origins = append(origins, c.FrontendURL)
	}
	return append(origins, "http://localhost:5173")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
