package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures every tunable of the API process. Values come from the
// environment (optionally seeded from a .env file) with defaults that let the
// binary start locally with only a database.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	AllowOrigins    []string
	LogLevel        string
	RunMigrations   bool

	Database DatabaseConfig

	JWTSecret              string
	JWTTTL                 time.Duration
	FirebaseServiceAccount string
	AdminEmails            []string

	RedisURL            string
	KafkaBrokers        []string
	KafkaTopic          string
	EventPublishTimeout time.Duration

	StripeSecretKey string
	Currency        string

	Storage StorageConfig
	SMTP    SMTPConfig
	SMS     SMSConfig
}

type DatabaseConfig struct {
	DSN          string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxIdleConns int
	MaxOpenConns int
}

type StorageConfig struct {
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
	Bucket       string
	UploadDir    string
	BaseURL      string
}

type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
}

// SMSConfig holds Africa's Talking credentials.
type SMSConfig struct {
	Username string
	APIKey   string
	Endpoint string
}

func defaultConfig() Config {
	return Config{
		HTTPAddr:        ":8080",
		ShutdownTimeout: 15 * time.Second,
		AllowOrigins:    []string{"*"},
		LogLevel:        "info",
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         "5432",
			SSLMode:      "disable",
			MaxIdleConns: 10,
			MaxOpenConns: 100,
		},
		JWTTTL:              7 * 24 * time.Hour,
		KafkaTopic:          "parcel-events",
		EventPublishTimeout: 10 * time.Second,
		Currency:            "usd",
		Storage: StorageConfig{
			UploadDir: "./uploads",
			BaseURL:   "http://localhost:8080",
		},
		SMS: SMSConfig{
			Endpoint: "https://api.africastalking.com/version1/messaging",
		},
	}
}

// Load reads envFile when it exists, then the environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() (Config, error) {
	cfg := defaultConfig()
	var errs []error

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.HTTPAddr = ":" + port
	}
	setStringFromEnv(&cfg.HTTPAddr, "HTTP_ADDR")
	setDurationFromEnv(&cfg.ShutdownTimeout, "HTTP_SHUTDOWN_TIMEOUT", &errs)
	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		cfg.AllowOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	cfg.RunMigrations = strings.EqualFold(os.Getenv("MIGRATE"), "true")

	cfg.Database.DSN = os.Getenv("DATABASE_URL")
	setStringFromEnv(&cfg.Database.Host, "DB_HOST")
	setStringFromEnv(&cfg.Database.Port, "DB_PORT")
	setStringFromEnv(&cfg.Database.User, "DB_USER")
	cfg.Database.Password = os.Getenv("DB_PASSWORD")
	setStringFromEnv(&cfg.Database.Name, "DB_NAME")
	setStringFromEnv(&cfg.Database.SSLMode, "DB_SSLMODE")
	setIntFromEnv(&cfg.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS", &errs)
	setIntFromEnv(&cfg.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS", &errs)

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	setDurationFromEnv(&cfg.JWTTTL, "JWT_TTL", &errs)
	cfg.FirebaseServiceAccount = strings.TrimSpace(os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"))
	if v := os.Getenv("ADMIN_EMAILS"); v != "" {
		cfg.AdminEmails = splitAndTrim(strings.ToLower(v))
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = splitAndTrim(v)
	}
	setStringFromEnv(&cfg.KafkaTopic, "KAFKA_TOPIC")
	setDurationFromEnv(&cfg.EventPublishTimeout, "EVENT_PUBLISH_TIMEOUT", &errs)

	cfg.StripeSecretKey = os.Getenv("STRIPE_SECRET_KEY")
	if v := os.Getenv("PAYMENT_CURRENCY"); v != "" {
		cfg.Currency = strings.ToLower(strings.TrimSpace(v))
	}

	cfg.Storage.AWSRegion = os.Getenv("AWS_REGION")
	cfg.Storage.AWSAccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Storage.AWSSecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	cfg.Storage.Bucket = os.Getenv("AWS_S3_BUCKET")
	setStringFromEnv(&cfg.Storage.UploadDir, "UPLOAD_DIR")
	setStringFromEnv(&cfg.Storage.BaseURL, "BASE_URL")

	cfg.SMTP = SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		From:     os.Getenv("EMAIL_FROM"),
		Password: os.Getenv("EMAIL_PASSWORD"),
	}

	cfg.SMS.Username = os.Getenv("AT_USERNAME")
	cfg.SMS.APIKey = os.Getenv("AT_API_KEY")
	setStringFromEnv(&cfg.SMS.Endpoint, "AT_ENDPOINT")

	if cfg.JWTSecret == "" && cfg.FirebaseServiceAccount == "" {
		errs = append(errs, fmt.Errorf("one of JWT_SECRET or FIREBASE_SERVICE_ACCOUNT_PATH must be set"))
	}
	if cfg.Database.MaxOpenConns <= 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_OPEN_CONNS must be > 0"))
	}

	return cfg, errors.Join(errs...)
}

// S3Enabled reports whether uploads go to S3 instead of local disk.
func (s StorageConfig) S3Enabled() bool {
	return s.AWSRegion != "" && s.AWSAccessKey != "" && s.AWSSecretKey != "" && s.Bucket != ""
}

// Enabled reports whether outgoing email is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Port != "" && s.From != "" && s.Password != ""
}

// Enabled reports whether SMS notifications can be sent.
func (s SMSConfig) Enabled() bool {
	return s.Username != "" && s.APIKey != ""
}

func setDurationFromEnv(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setIntFromEnv(target *int, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = i
	}
}

func setStringFromEnv(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
