package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration. Leave REDIS_ADDR empty to run with the
	// in-memory session store.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Calendar backend: "mongo" or "mock".
	CalendarBackend string `mapstructure:"CALENDAR_BACKEND"`
	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	DatabaseName    string `mapstructure:"DATABASE_NAME"`

	// Extraction backend. Empty key selects the rule-based extractor.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// Scheduling defaults.
	Timezone           string `mapstructure:"TIMEZONE"`
	WorkdayStartHour   int    `mapstructure:"WORKDAY_START_HOUR"`
	WorkdayEndHour     int    `mapstructure:"WORKDAY_END_HOUR"`
	DefaultDurationMin int    `mapstructure:"DEFAULT_DURATION_MIN"`
	SlotDisplayLimit   int    `mapstructure:"SLOT_DISPLAY_LIMIT"`
	SlotScanLimit      int    `mapstructure:"SLOT_SCAN_LIMIT"`
	SearchWindowDays   int    `mapstructure:"SEARCH_WINDOW_DAYS"`
	SessionTTLHours    int    `mapstructure:"SESSION_TTL_HOURS"`
	MaxTurnHistory     int    `mapstructure:"MAX_TURN_HISTORY"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("CALENDAR_BACKEND", "mock")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "schedulo")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("TIMEZONE", "America/New_York")
	viper.SetDefault("WORKDAY_START_HOUR", 9)
	viper.SetDefault("WORKDAY_END_HOUR", 18)
	viper.SetDefault("DEFAULT_DURATION_MIN", 60)
	viper.SetDefault("SLOT_DISPLAY_LIMIT", 3)
	viper.SetDefault("SLOT_SCAN_LIMIT", 10)
	viper.SetDefault("SEARCH_WINDOW_DAYS", 7)
	viper.SetDefault("SESSION_TTL_HOURS", 24)
	viper.SetDefault("MAX_TURN_HISTORY", 20)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
