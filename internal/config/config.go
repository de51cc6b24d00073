package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the auth service reads from the environment.
// A .env file in the working directory is honoured for local development.
type Config struct {
	// HTTP / gRPC
	Port     string
	GRPCPort string

	// Token signing
	SecretKey                string
	Algorithm                string
	AccessTokenExpireMinutes int

	// Stores
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	// RabbitMQ
	RabbitMQHost string
	RabbitMQPort string
	RabbitMQUser string
	RabbitMQPass string

	// Sibling services
	BillingAPIURL string

	DevelopmentMode bool
}

// Load reads configuration from .env (if present) and the environment.
// SECRET_KEY and DATABASE_URL are mandatory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8000"),
		GRPCPort:      getEnv("GRPC_PORT", "50051"),
		SecretKey:     os.Getenv("SECRET_KEY"),
		Algorithm:     getEnv("ALGORITHM", "HS256"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RabbitMQHost:  getEnv("RABBITMQ_HOST", "localhost"),
		RabbitMQPort:  getEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:  getEnv("RABBITMQ_USER", "user"),
		RabbitMQPass:  getEnv("RABBITMQ_PASS", "password"),
		BillingAPIURL: os.Getenv("BILLING_API_URL"),
	}

	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY environment variable is not set")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	expire := getEnv("ACCESS_TOKEN_EXPIRE_MINUTES", "300")
	minutes, err := strconv.Atoi(expire)
	if err != nil || minutes <= 0 {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_EXPIRE_MINUTES: %q", expire)
	}
	cfg.AccessTokenExpireMinutes = minutes

	cfg.DevelopmentMode = getEnv("DEVELOPMENT_MODE", "False") == "True"

	switch cfg.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return nil, fmt.Errorf("unsupported ALGORITHM: %q", cfg.Algorithm)
	}

	return cfg, nil
}

// AMQPURL assembles the broker URL from the RABBITMQ_* variables.
func (c *Config) AMQPURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.RabbitMQUser, c.RabbitMQPass, c.RabbitMQHost, c.RabbitMQPort)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
