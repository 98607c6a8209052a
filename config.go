package mailgate

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultVerifyURL is Google's reCAPTCHA verification endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// SMTPSettings holds one complete set of SMTP connection settings.
// The global defaults live in AppConfig; per-site overrides are merged
// on top of them before a send.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

type AppConfig struct {
	Mode               string
	ApiPort            string
	SitesFile          string
	TemplatesDir       string
	CaptchaVerifyURL   string
	RateLimitPerMinute int
	SmtpConfig         SMTPSettings
	RedisConfig        struct {
		Host     string
		Port     string
		Password string
		DB       int
	}
}

// RateLimitEnabled reports whether the Redis-backed rate limiter should
// be installed. It is an opt-in feature keyed off REDIS_HOST.
func (c AppConfig) RateLimitEnabled() bool {
	return c.RedisConfig.Host != "" && c.RateLimitPerMinute > 0
}

func InitConfig(envfile string) AppConfig {
	err := godotenv.Load(envfile)
	if err != nil {
		log.Fatal(fmt.Sprintf("Error loading %s file: %s", envfile, err))
	}
	config := AppConfig{
		Mode:               getEnvOrPanic("RUN_MODE"),
		ApiPort:            getEnvOrPanic("API_PORT"),
		SitesFile:          getEnvOrPanic("SITES_FILE"),
		TemplatesDir:       GetEnv("TEMPLATES_DIR", "/usr/share/mailgate"),
		CaptchaVerifyURL:   GetEnv("CAPTCHA_VERIFY_URL", DefaultVerifyURL),
		RateLimitPerMinute: getIntEnvOrDefault("RATE_LIMIT_PER_MINUTE", 0),
		SmtpConfig: SMTPSettings{
			Host:     getEnvOrPanic("SMTP_HOST"),
			Port:     getIntEnvOrPanic("SMTP_PORT"),
			Username: getEnvOrPanic("SMTP_USERNAME"),
			Password: getEnvOrPanic("SMTP_PASSWORD"),
			From:     getEnvOrPanic("SMTP_FROM"),
			UseTLS:   getBoolEnvOrDefault("SMTP_TLS", true),
		},
		RedisConfig: struct {
			Host     string
			Port     string
			Password string
			DB       int
		}{
			Host:     GetEnv("REDIS_HOST", ""),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnvOrDefault("REDIS_DB", 0),
		},
	}

	return config
}

func getEnvOrPanic(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("%s must be set", key)
	}
	return value
}

func GetEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnvOrPanic(key string) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		log.Fatalf("%s must be an integer", key)
	}
	return value
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func getBoolEnvOrDefault(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func NewLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
		NoColor:    false,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("  %s  ", i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s=", i)
		},
		FormatFieldValue: func(i interface{}) string {
			return fmt.Sprintf("%s", i)
		},
	}

	return zerolog.New(output).With().Timestamp().Caller().Logger()
}

// ConnectToRedis dials the configured Redis instance. Only called when
// the rate limiter is enabled.
func ConnectToRedis(cfg AppConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisConfig.Host, cfg.RedisConfig.Port),
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
