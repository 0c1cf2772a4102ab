package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DB holds the relational database connection settings.
type DB struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// S3 holds the object store settings. Endpoint, AccessKey and SecretKey are
// only needed when pointing at a non-AWS endpoint (e.g. minio in dev).
type S3 struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type Config struct {
	Env  string
	DB   DB
	S3   S3
	Host string
	Port string
}

// Load resolves the full configuration from the environment. A profile is
// selected by APP_ENV (development or production); the development profile
// carries local defaults so the app runs against a stock local postgres.
func Load() (*Config, error) {
	// .env is optional, real deployments inject the environment directly
	_ = godotenv.Load()

	env := getenv("APP_ENV", "development")

	cfg := &Config{
		Env:  env,
		Host: os.Getenv("APP_HOST"),
		Port: getenv("APP_PORT", "8080"),
		S3: S3{
			Bucket:    os.Getenv("S3_BUCKET_NAME"),
			Region:    getenv("AWS_REGION", "us-east-1"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
	}

	switch env {
	case "production":
		cfg.DB = DB{
			Host:     os.Getenv("DB_HOST"),
			Port:     getenv("DB_PORT", "5432"),
			User:     getenv("DB_USER", "csye6225"),
			Password: getenv("DB_PASSWORD", "csye6225"),
			Name:     getenv("DB_NAME", "csye6225"),
			SSLMode:  getenv("DB_SSLMODE", "require"),
		}
		if cfg.DB.Host == "" {
			return nil, fmt.Errorf("config: DB_HOST is required in production")
		}
	case "development":
		cfg.DB = DB{
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "5432"),
			User:     getenv("DB_USER", "postgres"),
			Password: getenv("DB_PASSWORD", "postgres"),
			Name:     getenv("DB_NAME", "postgres"),
			SSLMode:  getenv("DB_SSLMODE", "disable"),
		}
	default:
		return nil, fmt.Errorf("config: unknown APP_ENV %q", env)
	}

	if cfg.S3.Bucket == "" {
		return nil, fmt.Errorf("config: S3_BUCKET_NAME is required")
	}

	return cfg, nil
}

// DSN builds the postgres connection string for gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
