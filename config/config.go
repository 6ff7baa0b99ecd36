package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort            string
	TelegramBotToken      string
	SpreadsheetID         string
	GoogleCredentialsFile string
	CheckAnswersSecret    string
	AdminToken            string
	CacheTTLSeconds       string
	AnswerCheckInterval   string
	SheetsTimeout         string
	SheetsMinInterval     string
	ConversationTTL       string
	LogLevel              string
	LogFormat             string
	DatasetsFile          string
}

// SimplifiedCacheConfig holds the cache defaults applied to every dataset
// that does not override them in the datasets file
type SimplifiedCacheConfig struct {
	DefaultTTL time.Duration `json:"default_ttl"`
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() *SimplifiedCacheConfig {
	return &SimplifiedCacheConfig{
		DefaultTTL: 900 * time.Second,
	}
}

// GetCacheTTL returns the cache TTL from environment or default
func (c *Config) GetCacheTTL() time.Duration {
	fallback := DefaultCacheConfig().DefaultTTL
	if c.CacheTTLSeconds == "" {
		return fallback
	}

	seconds, err := strconv.Atoi(c.CacheTTLSeconds)
	if err != nil || seconds <= 0 {
		logrus.Warnf("Invalid CACHE_TTL_SECONDS value: %s, using default %v", c.CacheTTLSeconds, fallback)
		return fallback
	}

	return time.Duration(seconds) * time.Second
}

// GetAnswerCheckInterval returns how often the answer delivery job runs.
// Zero disables the in-process schedule; the trigger endpoint still works.
func (c *Config) GetAnswerCheckInterval() time.Duration {
	return parseDuration("ANSWER_CHECK_INTERVAL", c.AnswerCheckInterval, 0)
}

// GetSheetsTimeout returns the per-request timeout for spreadsheet calls
func (c *Config) GetSheetsTimeout() time.Duration {
	return parseDuration("SHEETS_TIMEOUT", c.SheetsTimeout, 30*time.Second)
}

// GetSheetsMinInterval returns the minimum spacing between spreadsheet calls
func (c *Config) GetSheetsMinInterval() time.Duration {
	return parseDuration("SHEETS_MIN_REQUEST_INTERVAL", c.SheetsMinInterval, 200*time.Millisecond)
}

// GetConversationTTL returns how long an /ask prompt waits for its question
func (c *Config) GetConversationTTL() time.Duration {
	return parseDuration("CONVERSATION_TTL", c.ConversationTTL, 30*time.Minute)
}

func parseDuration(name, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		logrus.Warnf("Invalid %s value: %s, using default %v", name, value, fallback)
		return fallback
	}
	return d
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		TelegramBotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		SpreadsheetID:         getEnv("SPREADSHEET_ID", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		CheckAnswersSecret:    getEnv("CHECK_ANSWERS_SECRET", ""),
		AdminToken:            getEnv("ADMIN_TOKEN", ""),
		CacheTTLSeconds:       getEnv("CACHE_TTL_SECONDS", "900"),
		AnswerCheckInterval:   getEnv("ANSWER_CHECK_INTERVAL", "0"),
		SheetsTimeout:         getEnv("SHEETS_TIMEOUT", "30s"),
		SheetsMinInterval:     getEnv("SHEETS_MIN_REQUEST_INTERVAL", "200ms"),
		ConversationTTL:       getEnv("CONVERSATION_TTL", "30m"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "text"),
		DatasetsFile:          getEnv("DATASETS_FILE", "datasets.yaml"),
	}
}

// ConfigureLogging applies the configured level and format to the
// standard logrus logger
func ConfigureLogging(c *Config) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("Invalid LOG_LEVEL value: %s, using info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
