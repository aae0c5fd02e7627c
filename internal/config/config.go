package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devJWTSecret = "dev-secret-change-me"

// Config is read from the environment (and an optional .env file).
type Config struct {
	AppPort    string `mapstructure:"APP_PORT"`
	AppEnv     string `mapstructure:"APP_ENV"`
	BaseURL    string `mapstructure:"BASE_URL"`
	CORSOrigin string `mapstructure:"CORS_ORIGIN"`

	DBDSN          string `mapstructure:"DB_DSN"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int    `mapstructure:"DB_MAX_IDLE_CONNS"`

	UploadDir   string `mapstructure:"UPLOAD_DIR"`
	MaxUploadMB int    `mapstructure:"MAX_UPLOAD_MB"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTTTLHours int    `mapstructure:"JWT_TTL_HOURS"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	ChatSessionTTLMinutes int `mapstructure:"CHAT_SESSION_TTL_MINUTES"`
	RateLimitPerMinute    int `mapstructure:"RATE_LIMIT_PER_MINUTE"`

	SMTPHost      string `mapstructure:"SMTP_HOST"`
	SMTPPort      string `mapstructure:"SMTP_PORT"`
	SMTPUsername  string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword  string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom      string `mapstructure:"SMTP_FROM"`
	NotifyEmailTo string `mapstructure:"NOTIFY_EMAIL_TO"`

	WhatsAppAPIURL  string `mapstructure:"WHATSAPP_API_URL"`
	WhatsAppToken   string `mapstructure:"WHATSAPP_TOKEN"`
	WhatsAppPhoneID string `mapstructure:"WHATSAPP_PHONE_ID"`
	WhatsAppTo      string `mapstructure:"WHATSAPP_TO"`

	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	OTelEndpoint string `mapstructure:"OTEL_EXPORTER_ENDPOINT"`
	ServiceName  string `mapstructure:"SERVICE_NAME"`
}

var defaults = map[string]any{
	"APP_PORT":                 "8080",
	"APP_ENV":                  "development",
	"BASE_URL":                 "http://localhost:8080",
	"CORS_ORIGIN":              "http://localhost:5173",
	"DB_DSN":                   "",
	"DB_HOST":                  "127.0.0.1",
	"DB_PORT":                  "3306",
	"DB_USER":                  "root",
	"DB_PASSWORD":              "",
	"DB_NAME":                  "calibration_catalog",
	"DB_MAX_OPEN_CONNS":        25,
	"DB_MAX_IDLE_CONNS":        25,
	"UPLOAD_DIR":               "./uploads",
	"MAX_UPLOAD_MB":            20,
	"JWT_SECRET":               "",
	"JWT_TTL_HOURS":            72,
	"REDIS_ADDR":               "",
	"REDIS_PASSWORD":           "",
	"REDIS_DB":                 0,
	"CHAT_SESSION_TTL_MINUTES": 30,
	"RATE_LIMIT_PER_MINUTE":    10,
	"SMTP_HOST":                "",
	"SMTP_PORT":                "587",
	"SMTP_USERNAME":            "",
	"SMTP_PASSWORD":            "",
	"SMTP_FROM":                "no-reply@localhost",
	"NOTIFY_EMAIL_TO":          "",
	"WHATSAPP_API_URL":         "",
	"WHATSAPP_TOKEN":           "",
	"WHATSAPP_PHONE_ID":        "",
	"WHATSAPP_TO":              "",
	"GEMINI_API_KEY":           "",
	"GEMINI_MODEL":             "gemini-1.5-flash",
	"OTEL_EXPORTER_ENDPOINT":   "",
	"SERVICE_NAME":             "calibration-catalog",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET must be set in production")
		}
		log.Println("WARNING: JWT_SECRET is not set; using an insecure development secret.")
		c.JWTSecret = devJWTSecret
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// DSN returns DB_DSN, or builds a MySQL DSN from the DB_* parts.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	mc := mysql.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPassword
	mc.Net = "tcp"
	mc.Addr = c.DBHost + ":" + c.DBPort
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func (c *Config) ChatSessionTTL() time.Duration {
	return time.Duration(c.ChatSessionTTLMinutes) * time.Minute
}

// NotifyRecipients splits NOTIFY_EMAIL_TO on commas.
func (c *Config) NotifyRecipients() []string {
	var out []string
	for _, r := range strings.Split(c.NotifyEmailTo, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
