package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuracion del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`

	JWTSecret     string `env:"JWT_SECRET"`
	JWTTTLMinutes int    `env:"JWT_TTL_MINUTES" envDefault:"15"`

	SessionLoginTTLHours          int `env:"SESSION_LOGIN_TTL_HOURS" envDefault:"720"`
	SessionRefreshTTLHours        int `env:"SESSION_REFRESH_TTL_HOURS" envDefault:"168"`
	SessionCacheTTLSeconds        int `env:"SESSION_CACHE_TTL_SECONDS" envDefault:"60"`
	SessionJanitorIntervalMinutes int `env:"SESSION_JANITOR_INTERVAL_MINUTES" envDefault:"30"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	LoginRateLimit         int `env:"LOGIN_RATE_LIMIT" envDefault:"5"`
	LoginRateWindowMinutes int `env:"LOGIN_RATE_WINDOW_MINUTES" envDefault:"10"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"Scholarship Finder"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	DemoLoginEnabled bool   `env:"DEMO_LOGIN_ENABLED" envDefault:"true"`
	DemoEmail        string `env:"DEMO_EMAIL" envDefault:"demo@example.com"`
	DemoPassword     string `env:"DEMO_PASSWORD" envDefault:"password"`

	SeedFile string `env:"SEED_FILE" envDefault:"seeds/seed.yaml"`

	// Prefijos que el gate trata como protegidos o solo admin.
	ProtectedPrefixes []string `env:"GATE_PROTECTED_PREFIXES" envSeparator:"," envDefault:"/api/auth/me,/api/auth/profile,/api/auth/token,/api/applications,/api/favorites,/dashboard,/profile,/applications,/favorites"`
	AdminPrefixes     []string `env:"GATE_ADMIN_PREFIXES" envSeparator:"," envDefault:"/api/admin,/admin"`
}

// LoadConfig carga la configuracion desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction indica si las cookies deben marcarse Secure.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) LoginSessionTTL() time.Duration {
	return hoursOr(c.SessionLoginTTLHours, 30*24)
}

func (c *Config) RefreshSessionTTL() time.Duration {
	return hoursOr(c.SessionRefreshTTLHours, 7*24)
}

func (c *Config) SessionCacheTTL() time.Duration {
	if c.SessionCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.SessionCacheTTLSeconds) * time.Second
}

func (c *Config) JanitorInterval() time.Duration {
	if c.SessionJanitorIntervalMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.SessionJanitorIntervalMinutes) * time.Minute
}

func (c *Config) LoginRateWindow() time.Duration {
	if c.LoginRateWindowMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.LoginRateWindowMinutes) * time.Minute
}

func (c *Config) JWTTTL() time.Duration {
	if c.JWTTTLMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func hoursOr(hours, fallback int) time.Duration {
	if hours <= 0 {
		hours = fallback
	}
	return time.Duration(hours) * time.Hour
}
