package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Queue      QueueConfig
	API        APIConfig
	Dispatcher DispatcherConfig
	Scheduler  SchedulerConfig
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// QueueConfig holds queue configuration (Redis)
type QueueConfig struct {
	RedisURL  string
	QueueName string
}

// APIConfig holds API server configuration
type APIConfig struct {
	Port int
}

// DispatcherConfig holds campaign dispatch configuration
type DispatcherConfig struct {
	// MaxInFlight is the concurrency ceiling on gateway sends across the
	// whole process. WhatsApp sessions are effectively single-connection,
	// so this stays small.
	MaxInFlight int
	// DefaultSendDelay is the fallback inter-send interval when no operator
	// override is stored in the settings store.
	DefaultSendDelay time.Duration
	// SendTimeout bounds each gateway call; a timeout counts as failed.
	SendTimeout time.Duration
}

// SchedulerConfig holds the scheduled-campaign poller configuration
type SchedulerConfig struct {
	PollInterval time.Duration
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	apiPort, err := strconv.Atoi(getEnv("API_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_PORT: %w", err)
	}

	maxInFlight, err := strconv.Atoi(getEnv("DISPATCH_MAX_IN_FLIGHT", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPATCH_MAX_IN_FLIGHT: %w", err)
	}

	sendDelayMS, err := strconv.Atoi(getEnv("BOT_SEND_DELAY_MS", "3000"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOT_SEND_DELAY_MS: %w", err)
	}

	sendTimeout, err := time.ParseDuration(getEnv("DISPATCH_SEND_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPATCH_SEND_TIMEOUT: %w", err)
	}

	pollInterval, err := time.ParseDuration(getEnv("SCHEDULER_POLL_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_POLL_INTERVAL: %w", err)
	}

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "wacrm"),
			Password: getEnv("DB_PASSWORD", "wacrm"),
			DBName:   getEnv("DB_NAME", "wacrm"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Queue: QueueConfig{
			RedisURL:  getEnv("REDIS_URL", "redis://localhost:6379/0"),
			QueueName: getEnv("QUEUE_NAME", "campaign_launches"),
		},
		API: APIConfig{
			Port: apiPort,
		},
		Dispatcher: DispatcherConfig{
			MaxInFlight:      maxInFlight,
			DefaultSendDelay: time.Duration(sendDelayMS) * time.Millisecond,
			SendTimeout:      sendTimeout,
		},
		Scheduler: SchedulerConfig{
			PollInterval: pollInterval,
		},
	}, nil
}

// DSN returns the database connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
