package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config содержит настройки приложения
type Config struct {
	DBHost      string        // Хост базы данных
	DBPort      string        // Порт базы данных
	DBUser      string        // Пользователь базы данных
	DBPassword  string        // Пароль базы данных
	DBName      string        // Имя базы данных
	JWTSecret   string        // Секрет для JWT
	TokenExpiry time.Duration // Время жизни токена
	HTTPAddr    string        // Адрес HTTP сервера

	ExplainAPIURL  string        // OpenAI-совместимый endpoint для объяснений
	ExplainAPIKey  string
	ExplainModel   string
	ExplainTimeout time.Duration

	RedisAddr    string // Пусто - курсы валют кэшируются в памяти
	FXRatesURL   string
	BaseCurrency string

	SweepSchedule string // cron-выражение проверки счетов
	AlertsEnabled bool

	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPass           string
	EmailSenderEnabled bool
	InsecureSkipVerify bool

	RateLimitRPS   float64
	RateLimitBurst int

	AnomalyWindow int // Число предыдущих счетов для проверки
}

// LoadConfig загружает конфигурацию из .env файла
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Файл .env не найден")
	}

	config := &Config{
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "billing"),
		JWTSecret:   getEnv("JWT_SECRET", "default-secret-key"),
		TokenExpiry: getDuration("TOKEN_EXPIRY", 24*time.Hour),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),

		ExplainAPIURL:  os.Getenv("EXPLAIN_API_URL"),
		ExplainAPIKey:  os.Getenv("EXPLAIN_API_KEY"),
		ExplainModel:   getEnv("EXPLAIN_MODEL", "gpt-4o-mini"),
		ExplainTimeout: getDuration("EXPLAIN_TIMEOUT", 10*time.Second),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		FXRatesURL:   getEnv("FX_RATES_URL", "https://www.tcmb.gov.tr/kurlar/today.xml"),
		BaseCurrency: getEnv("BASE_CURRENCY", "TRY"),

		SweepSchedule: getEnv("SWEEP_SCHEDULE", "0 6 * * *"),
		AlertsEnabled: getBool("ALERTS_ENABLED", false),

		SMTPHost:           getEnv("SMTP_HOST", "smtp.example.com"),
		SMTPUser:           os.Getenv("SMTP_USER"),
		SMTPPass:           os.Getenv("SMTP_PASS"),
		EmailSenderEnabled: getBool("EMAIL_SENDER_ENABLED", false),
		InsecureSkipVerify: getBool("INSECURE_SKIP_VERIFY", false),
	}

	var err error
	if config.SMTPPort, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if config.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}
	if config.AnomalyWindow, err = getInt("ANOMALY_WINDOW", 3); err != nil {
		return nil, err
	}
	if config.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	return config, nil
}

// DSN - строка подключения к PostgreSQL
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return d
}
