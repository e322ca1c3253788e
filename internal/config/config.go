package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"go-payway/internal/shared/connection"
)

type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	Port    string `env:"PORT" envDefault:"3000"`
	WebRoot string `env:"WEB_ROOT" envDefault:"wwwroot"`

	MaxImageBytes int64 `env:"MAX_IMAGE_BYTES" envDefault:"5242880"`

	JWTSecret      string        `env:"JWT_SECRET,required,notEmpty"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"24h"`

	DB DBConfig `envPrefix:"DB_"`

	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	KafkaBroker string `env:"KAFKA_BROKER"`

	AntiForgeryTTL   time.Duration `env:"ANTIFORGERY_TTL" envDefault:"2h"`
	EmployeeCacheTTL time.Duration `env:"EMPLOYEE_CACHE_TTL" envDefault:"10m"`

	Admin AdminConfig `envPrefix:"ADMIN_"`
}

type DBConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"payway"`
	Port     string `env:"PORT" envDefault:"5432"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// AdminConfig seeds the first Admin account. Seeding is skipped when Email is empty.
type AdminConfig struct {
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"Administrator"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c Config) Postgres() connection.PostgresConfig {
	return connection.PostgresConfig{
		Host:     c.DB.Host,
		User:     c.DB.User,
		Password: c.DB.Password,
		Name:     c.DB.Name,
		Port:     c.DB.Port,
		SSLMode:  c.DB.SSLMode,
	}
}

func (c Config) validate() error {
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("config: MAX_IMAGE_BYTES must be positive")
	}
	if c.AntiForgeryTTL <= 0 {
		return fmt.Errorf("config: ANTIFORGERY_TTL must be positive")
	}
	if c.Admin.Email != "" && len(c.Admin.Password) < 8 {
		return fmt.Errorf("config: ADMIN_PASSWORD must be at least 8 characters")
	}
	return nil
}
