package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Discount DiscountConfig
	Spin     SpinConfig
	Mailjet  MailjetConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
	SeedData    bool
}

type ServerConfig struct {
	Port string
}

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type StorageConfig struct {
	Driver       string
	SnapshotPath string
	KeepVersions int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
	TTL       time.Duration
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// Enabled reports whether session tokens are tracked in Redis.
func (r RedisConfig) Enabled() bool {
	return r.RedisHost != ""
}

type MailjetConfig struct {
	MailjetBaseUrl           string
	MailjetBasicAuthUsername string
	MailjetBasicAuthPassword string
	MailjetSenderEmail       string
	MailjetSenderName        string
}

// Enabled reports whether order status emails are sent.
func (m MailjetConfig) Enabled() bool {
	return m.MailjetBasicAuthUsername != "" && m.MailjetBasicAuthPassword != ""
}

type DiscountConfig struct {
	CodeTTL time.Duration
}

type SpinConfig struct {
	Window      time.Duration
	MaxAttempts int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	keep, err := strconv.Atoi(getEnv("SNAPSHOT_KEEP_VERSIONS", "5"))
	if err != nil {
		return nil, errors.New("invalid snapshot keep versions")
	}

	maxSpins, err := strconv.Atoi(getEnv("SPIN_MAX_ATTEMPTS", "3"))
	if err != nil || maxSpins < 1 {
		return nil, errors.New("invalid spin max attempts")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Marketplace API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			SeedData:    getEnv("APP_SEED_DATA", "true") == "true",
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Storage: StorageConfig{
			Driver:       getEnv("STORAGE_DRIVER", StorageFile),
			SnapshotPath: getEnv("SNAPSHOT_PATH", "data/marketplace.json"),
			KeepVersions: keep,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "marketplace"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
			TTL:       getDuration("JWT_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", ""),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Discount: DiscountConfig{
			CodeTTL: getDuration("DISCOUNT_CODE_TTL", 7*24*time.Hour),
		},
		Spin: SpinConfig{
			Window:      getDuration("SPIN_WINDOW", 5*time.Minute),
			MaxAttempts: maxSpins,
		},
		Mailjet: MailjetConfig{
			MailjetBaseUrl:           getEnv("MAILJET_BASE_URL", "https://api.mailjet.com"),
			MailjetBasicAuthUsername: getEnv("MAILJET_BASIC_AUTH_USERNAME", ""),
			MailjetBasicAuthPassword: getEnv("MAILJET_BASIC_AUTH_PASSWORD", ""),
			MailjetSenderEmail:       getEnv("MAILJET_SENDER_EMAIL", "no-reply@marketplace.local"),
			MailjetSenderName:        getEnv("MAILJET_SENDER_NAME", "Marketplace"),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	switch cfg.Storage.Driver {
	case StorageFile:
	case StoragePostgres:
		if cfg.Database.Password == "" {
			return nil, errors.New("missing database password")
		}
	default:
		return nil, errors.New("unknown storage driver")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}
