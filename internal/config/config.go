package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Database Configuration
	Database DatabaseConfig `json:"database"`

	// MongoDB holds the engagement event log; disabled unless MONGO_ENABLED=true
	MongoDB MongoDBConfig `json:"mongodb"`

	Auth AuthConfig `json:"auth"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`

	Embed EmbedConfig `json:"embed"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	HealthPort   string `json:"health_port"` // gRPC health service
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	Environment  string `json:"environment"` // development, staging, production
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
	AutoMigrate  bool   `json:"auto_migrate"`
	LogQueries   bool   `json:"log_queries"`
}

type MongoDBConfig struct {
	Host       string `json:"host"`
	Port       string `json:"port"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Database   string `json:"database"`
	Collection string `json:"collection"`
	Enabled    bool   `json:"enabled"`
}

type AuthConfig struct {
	JWTSecret string        `json:"-"`
	TokenTTL  time.Duration `json:"token_ttl"`
	Issuer    string        `json:"issuer"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, console
}

// EmbedConfig tunes the client-side embed adapters.
type EmbedConfig struct {
	ReadyTimeout time.Duration `json:"ready_timeout"`
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("HTTP_PORT", "8080"),
			Host:         getEnv("HTTP_HOST", "0.0.0.0"),
			HealthPort:   getEnv("HEALTH_GRPC_PORT", "7002"),
			ReadTimeout:  getEnvInt("HTTP_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("HTTP_WRITE_TIMEOUT", 15),
			Environment:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("MYSQL_HOST", "localhost"),
			Port:         getEnv("MYSQL_PORT", "3306"),
			Username:     getEnv("MYSQL_USERNAME", "personafeed"),
			Password:     getEnv("MYSQL_PASSWORD", "personafeed"),
			DatabaseName: getEnv("MYSQL_DATABASE", "personafeed"),
			MaxOpenConns: getEnvInt("MYSQL_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("MYSQL_MAX_IDLE_CONNS", 5),
			AutoMigrate:  getEnvBool("MYSQL_AUTO_MIGRATE", true),
			LogQueries:   getEnvBool("MYSQL_LOG_QUERIES", false),
		},
		MongoDB: MongoDBConfig{
			Host:       getEnv("MONGO_HOST", "localhost"),
			Port:       getEnv("MONGO_PORT", "27017"),
			Username:   getEnv("MONGO_USERNAME", ""),
			Password:   getEnv("MONGO_PASSWORD", ""),
			Database:   getEnv("MONGO_DATABASE", "personafeed"),
			Collection: getEnv("MONGO_ENGAGEMENT_COLLECTION", "engagement_events"),
			Enabled:    getEnvBool("MONGO_ENABLED", false),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvDuration("JWT_TTL", 24*time.Hour),
			Issuer:    getEnv("JWT_ISSUER", "personafeed"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Embed: EmbedConfig{
			ReadyTimeout: getEnvDuration("EMBED_READY_TIMEOUT", 5*time.Second),
		},
	}
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func (cfg *Config) GetMongoURI() string {
	m := cfg.MongoDB
	if m.Username == "" {
		return fmt.Sprintf("mongodb://%s:%s/%s", m.Host, m.Port, m.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin", m.Username, m.Password, m.Host, m.Port, m.Database)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
