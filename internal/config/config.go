package config

import (
	"strings"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort       string   `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL    string   `env:"DATABASE_URL,required"`
	DBAutoMigrate  bool     `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	SessionSecret  string   `env:"SESSION_SECRET,required,notEmpty"`
	AppEnv         string   `env:"APP_ENV" envDefault:"development"`
	AppName        string   `env:"APP_NAME" envDefault:"users-auth"`
	AppVersion     string   `env:"APP_VERSION" envDefault:"1.0.0"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	RedisAddr      string   `env:"REDIS_ADDR"`
	RedisPassword  string   `env:"REDIS_PASSWORD"`
	RedisDB        int      `env:"REDIS_DB" envDefault:"0"`

	LoginRateWindowMinutes int `env:"LOGIN_RATE_WINDOW_MINUTES" envDefault:"15"`
	LoginRateMax           int `env:"LOGIN_RATE_MAX" envDefault:"10"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	origins := cfg.AllowedOrigins[:0]
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.AllowedOrigins = origins
	return &cfg, nil
}

// IsProduction indica si las cookies deben marcarse como secure.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}
