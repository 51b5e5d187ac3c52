package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	Providers ProviderConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	ScheduleZone    string
}

type DatabaseConfig struct {
	// Path is a filesystem path or a file: URL.
	Path        string
	AutoMigrate bool
}

type RedisConfig struct {
	// Addr empty means counters and locks stay in-process.
	Addr string
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	OrderCreated string
	OrderStatus  string
}

type AuthConfig struct {
	AdminLogin        string
	AdminPasswordSalt string
	AdminPasswordHash string
	SessionSecret     string
	SessionTTL        time.Duration
	ClientJWTSecret   string
	ClientTokenTTL    time.Duration
}

type ProviderConfig struct {
	PosterBaseURL   string
	PaymentBaseURL  string
	TelegramBaseURL string
}

type RateLimitConfig struct {
	Backend string
	Window  time.Duration
	Public  int
	Login   int
	Signup  int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            normalizePort(getEnv("PORT", "3000")),
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
			CORSOrigins:     getEnvList("CORS_ORIGINS", []string{"*"}),
			ScheduleZone:    getEnv("SCHEDULE_TIMEZONE", "Asia/Tashkent"),
		},
		Database: DatabaseConfig{
			Path:        getEnv("DATABASE_URL", "data.sqlite"),
			AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", ""),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Topics: TopicConfig{
				OrderCreated: getEnv("KAFKA_TOPIC_ORDER_CREATED", "restaurant.orders.created"),
				OrderStatus:  getEnv("KAFKA_TOPIC_ORDER_STATUS", "restaurant.orders.status"),
			},
		},
		Auth: AuthConfig{
			AdminLogin:        strings.TrimSpace(os.Getenv("ADMIN_LOGIN")),
			AdminPasswordSalt: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_SALT")),
			AdminPasswordHash: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH")),
			SessionSecret:     os.Getenv("ADMIN_SESSION_SECRET"),
			SessionTTL:        getEnvDuration("ADMIN_SESSION_TTL", 8*time.Hour),
			ClientJWTSecret:   os.Getenv("CLIENT_JWT_SECRET"),
			ClientTokenTTL:    getEnvDuration("CLIENT_TOKEN_TTL", 30*24*time.Hour),
		},
		Providers: ProviderConfig{
			PosterBaseURL:   strings.TrimRight(getEnv("POSTER_BASE_URL", "https://joinposter.com/api"), "/"),
			PaymentBaseURL:  strings.TrimSpace(os.Getenv("PAYMENT_BASE_URL")),
			TelegramBaseURL: strings.TrimRight(getEnv("TELEGRAM_BASE_URL", "https://api.telegram.org"), "/"),
		},
		RateLimit: RateLimitConfig{
			Backend: getEnv("RATE_LIMIT_BACKEND", "memory"),
			Window:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
			Public:  getEnvInt("RATE_LIMIT_PUBLIC", 120),
			Login:   getEnvInt("RATE_LIMIT_LOGIN", 20),
			Signup:  getEnvInt("RATE_LIMIT_REGISTER", 10),
		},
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}
}

// Validate reports settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.SessionSecret == "" {
		errs = append(errs, errors.New("ADMIN_SESSION_SECRET is required"))
	}
	if c.Auth.ClientJWTSecret == "" {
		errs = append(errs, errors.New("CLIENT_JWT_SECRET is required"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.RateLimit.Backend == "redis" && c.Redis.Addr == "" {
		errs = append(errs, errors.New("RATE_LIMIT_BACKEND=redis needs REDIS_ADDR"))
	}
	return errors.Join(errs...)
}

func normalizePort(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
