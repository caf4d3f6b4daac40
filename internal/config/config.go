package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	AuthSigningKey string   `mapstructure:"AUTH_SIGNING_KEY"`
	AuthIssuer     string   `mapstructure:"AUTH_ISSUER"`
	AuthAudience   string   `mapstructure:"AUTH_AUDIENCE"`
	SessionTTLMin  int      `mapstructure:"SESSION_TTL_MINUTES"`
	SessionBackend string   `mapstructure:"SESSION_BACKEND"`
	BcryptCost     int      `mapstructure:"BCRYPT_COST"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
	DefaultLanding string   `mapstructure:"DEFAULT_LANDING_PATH"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "3001")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("AUTH_ISSUER", "whitecross")
	v.SetDefault("AUTH_AUDIENCE", "whitecross-web")
	v.SetDefault("SESSION_TTL_MINUTES", 60)
	v.SetDefault("SESSION_BACKEND", "postgres")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("DEFAULT_LANDING_PATH", "/dashboard")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTH_SIGNING_KEY")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("SESSION_TTL_MINUTES")
	v.BindEnv("SESSION_BACKEND")
	v.BindEnv("BCRYPT_COST")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("DEFAULT_LANDING_PATH")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() && cfg.AuthSigningKey == "" {
		log.Println("WARNING: AUTH_SIGNING_KEY not set; using an insecure development key.")
		log.Println("WARNING: Set AUTH_SIGNING_KEY before running outside development.")
		cfg.AuthSigningKey = devSigningKey
	}

	return cfg, nil
}

// devSigningKey is only ever used when ENV=development and no key is configured.
const devSigningKey = "whitecross-dev-signing-key-do-not-use"

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SessionTTL returns the configured session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

// Validate checks that the configuration is safe to run. Outside development
// a real signing key is required so that session tokens cannot be forged.
func (c *Config) Validate() error {
	if !c.IsDev() {
		if c.AuthSigningKey == "" || c.AuthSigningKey == devSigningKey {
			return fmt.Errorf("AUTH_SIGNING_KEY must be set when ENV=%q", c.Env)
		}
		if len(c.AuthSigningKey) < 32 {
			return fmt.Errorf("AUTH_SIGNING_KEY must be at least 32 bytes, got %d", len(c.AuthSigningKey))
		}
	}

	switch c.SessionBackend {
	case "postgres", "memory":
	default:
		return fmt.Errorf("SESSION_BACKEND must be \"postgres\" or \"memory\", got %q", c.SessionBackend)
	}

	if c.SessionTTLMin <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive, got %d", c.SessionTTLMin)
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}

	if !strings.HasPrefix(c.DefaultLanding, "/") {
		return fmt.Errorf("DEFAULT_LANDING_PATH must be an absolute in-app path, got %q", c.DefaultLanding)
	}

	return nil
}
