package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/joho/godotenv"
)

type Config struct {
	Env                string
	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	MaxRequestBodySize int64
	AllowedOrigins     []string

	MongoURI            string
	MongoDatabase       string
	MongoMaxPoolSize    int
	MongoMinPoolSize    int
	MongoConnectTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret      string
	AccessTokenTTL time.Duration
	CSRFTokenTTL   time.Duration

	AdminEmail    string
	AdminPassword string

	FrontendURL string
	Currency    string
	DeliveryFee domain.Money

	StripeSecretKey string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	KafkaBrokers []string
	KafkaTopic   string

	LogLevel  string
	LogFormat string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on process environment")
	}

	var errs []error
	cfg := &Config{
		Env:                getEnv("ENV", "development"),
		HTTPPort:           getEnv("HTTP_PORT", "4000"),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second, &errs),
		ShutdownTimeout:    getDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
		ReadTimeout:        getDuration("HTTP_READ_TIMEOUT", 10*time.Second, &errs),
		WriteTimeout:       getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second, &errs),
		MaxRequestBodySize: int64(getInt("MAX_REQUEST_BODY_BYTES", 10<<20, &errs)), // multipart product images
		AllowedOrigins:     getList("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:5174"}),

		MongoURI:            getEnv("MONGODB_URI", ""),
		MongoDatabase:       getEnv("MONGODB_DATABASE", "e-commerce"),
		MongoMaxPoolSize:    getInt("MONGODB_MAX_POOL_SIZE", 100, &errs),
		MongoMinPoolSize:    getInt("MONGODB_MIN_POOL_SIZE", 10, &errs),
		MongoConnectTimeout: getDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second, &errs),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0, &errs),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		AccessTokenTTL: getDuration("ACCESS_TOKEN_TTL", 7*24*time.Hour, &errs),
		CSRFTokenTTL:   getDuration("CSRF_TOKEN_TTL", 2*time.Hour, &errs),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		Currency:    strings.ToLower(getEnv("CURRENCY", "usd")),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),

		CloudinaryCloudName: getEnv("CLOUDINARY_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_SECRET_KEY", ""),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getInt("SMTP_PORT", 587, &errs),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "postmessage"),

		KafkaBrokers: getList("KAFKA_BROKERS", nil),
		KafkaTopic:   getEnv("KAFKA_ORDERS_TOPIC", "orders.events"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	fee, err := domain.ParseMoney(getEnv("DELIVERY_FEE", "10"))
	if err != nil {
		errs = append(errs, fmt.Errorf("DELIVERY_FEE: %w", err))
	}
	cfg.DeliveryFee = fee

	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUser
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGODB_URI is required"))
	}
	if c.MongoMaxPoolSize < 1 || c.MongoMinPoolSize < 0 || c.MongoMinPoolSize > c.MongoMaxPoolSize {
		errs = append(errs, errors.New("MONGODB_MIN_POOL_SIZE must be between 0 and MONGODB_MAX_POOL_SIZE"))
	}
	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}
	if c.DeliveryFee < 0 {
		errs = append(errs, errors.New("DELIVERY_FEE must not be negative"))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func getList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
