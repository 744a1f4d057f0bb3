package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int

	// BaseURL is the externally reachable address of this service, used
	// when building password-reset links.
	BaseURL string

	// SessionSecret signs the session cookie.
	SessionSecret string

	// ResetTokenSecret signs password-reset tokens. It is configured
	// explicitly so outstanding tokens survive process restarts.
	ResetTokenSecret string
	ResetTokenTTL    time.Duration

	WeatherAPIKey string

	Database DatabaseConfig
	SMTP     SMTPConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "weatherbook"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "weatherbook_db"),
		UseSSL:   getEnv("DB_USE_SSL", "false") == "true",
	}

	smtpConfig := SMTPConfig{
		Host:     getEnv("SMTP_HOST", "localhost"),
		Port:     getEnvInt("SMTP_PORT", 465),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@weatherbook.local"),
	}

	return Config{
		ServerPort:       getEnvInt("SERVER_PORT", 8080),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		SessionSecret:    getEnv("SESSION_SECRET", ""),
		ResetTokenSecret: getEnv("RESET_TOKEN_SECRET", ""),
		ResetTokenTTL:    time.Duration(getEnvInt("RESET_TOKEN_TTL_SECONDS", 1800)) * time.Second,
		WeatherAPIKey:    getEnv("OPENWEATHER_API_KEY", ""),
		Database:         dbConfig,
		SMTP:             smtpConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}
