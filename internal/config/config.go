package config

import (
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port           int    `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"` // development | production
	WorkerPoolSize int    `mapstructure:"WORKER_POOL_SIZE"`

	// Database (MySQL DSN, go-sql-driver format)
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// SUNAT e-invoicing API
	SunatAPIURL string `mapstructure:"SUNAT_API_URL"`
	SunatToken  string `mapstructure:"SUNAT_API_TOKEN"`
	// SunatEnv: "beta" | "produccion". Beta enforces a much longer
	// inter-request cooldown because the test environment locks the
	// account out after bursts.
	SunatEnv string `mapstructure:"SUNAT_ENV"`

	// SMTP — operator alerts on fiscal rejections
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	AlertEmail   string `mapstructure:"ALERT_EMAIL"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("WORKER_POOL_SIZE", 5)
	viper.SetDefault("JWT_EXPIRATION_HOURS", 8)
	viper.SetDefault("DATABASE_URL", "andespos:andespos@tcp(localhost:3306)/andespos?parseTime=true&charset=utf8mb4")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("SUNAT_API_URL", "https://facturacion.apisperu.com/api/v1")
	viper.SetDefault("SUNAT_ENV", "beta")
	viper.SetDefault("SMTP_PORT", 587)

	// Optional .env file for local development — does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
