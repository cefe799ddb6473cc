package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the configuration for the Talescapes server.
type Config struct {
	// Server settings
	Port         string   `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel     string   `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding  string   `envconfig:"LOG_ENCODING" default:"json"`
	CORSOrigins  []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	GinDebugMode bool     `envconfig:"GIN_DEBUG_MODE" default:"false"`

	// PostgreSQL settings
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	// Secret field WITHOUT an envconfig tag, loaded separately
	DBPassword string

	// Redis settings (reading-session snapshots)
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	SessionTTL    time.Duration `envconfig:"READING_SESSION_TTL" default:"720h"`

	// RabbitMQ settings (story lifecycle events)
	RabbitMQURL      string `envconfig:"RABBITMQ_URL" required:"true"`
	StoryEventsQueue string `envconfig:"STORY_EVENTS_QUEUE" default:"story_events"`

	// JWT settings (author identity, verified by middleware)
	// Secret field WITHOUT an envconfig tag, loaded separately
	JWTSecret string
}

// GetDSN returns the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig loads the configuration from environment variables and secrets.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var loadErr error
	cfg.DBPassword, loadErr = readSecret("db_password", "DB_PASSWORD")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.JWTSecret, loadErr = readSecret("jwt_secret", "JWT_SECRET")
	if loadErr != nil {
		return nil, loadErr
	}

	return &cfg, nil
}

// readSecret reads a secret from the Docker Secrets path, falling back to an
// environment variable for local development.
func readSecret(secretName, envName string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err == nil {
		secret := strings.TrimSpace(string(secretBytes))
		if secret == "" {
			return "", fmt.Errorf("secret file %s is empty", filePath)
		}
		return secret, nil
	}

	if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("secret %s not found: no file %s and %s is unset", secretName, filePath, envName)
}
