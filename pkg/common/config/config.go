package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// External health-information platform
	PlatformBaseURL      string
	PlatformUsername     string
	PlatformPassword     string
	PlatformTokenURL     string
	PlatformClientID     string
	PlatformClientSecret string
	PlatformTimeout      time.Duration

	// Surveillance scope
	OrgUnitID      string
	CaseProgramID  string
	LabStageID     string
	AlertProgramID string

	// Redis (option-set cache document)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Postgres (audit log)
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Kafka (vocabulary change events)
	KafkaBrokers []string
	KafkaTopic   string

	// Auth for the admin surface
	AdminAPIToken string

	// Misc
	MetadataPath     string
	GeocoderAPIKey   string
	DetailFetchLimit int
	RateLimitRPS     int
	RateLimitBurst   int
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1*1024*1024)),

		PlatformBaseURL:      getEnv("PLATFORM_BASE_URL", "http://localhost:8090/api"),
		PlatformUsername:     getEnv("PLATFORM_USERNAME", ""),
		PlatformPassword:     getEnv("PLATFORM_PASSWORD", ""),
		PlatformTokenURL:     getEnv("PLATFORM_TOKEN_URL", ""),
		PlatformClientID:     getEnv("PLATFORM_CLIENT_ID", ""),
		PlatformClientSecret: getEnv("PLATFORM_CLIENT_SECRET", ""),
		PlatformTimeout:      getDuration("PLATFORM_TIMEOUT", 15*time.Second),

		OrgUnitID:      getEnv("ORG_UNIT_ID", ""),
		CaseProgramID:  getEnv("CASE_PROGRAM_ID", ""),
		LabStageID:     getEnv("LAB_STAGE_ID", ""),
		AlertProgramID: getEnv("ALERT_PROGRAM_ID", ""),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "surveillance"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "surveillance123"),
		PostgresDB:       getEnv("POSTGRES_DB", "surveillance"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		KafkaBrokers: getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "surveillance.vocabulary"),

		AdminAPIToken: getEnv("ADMIN_API_TOKEN", ""),

		MetadataPath:     getEnv("METADATA_PATH", ""),
		GeocoderAPIKey:   getEnv("GEOCODER_API_KEY", ""),
		DetailFetchLimit: getIntEnv("DETAIL_FETCH_LIMIT", 8),
		RateLimitRPS:     getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst:   getIntEnv("RATE_LIMIT_BURST", 100),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
