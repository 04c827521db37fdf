package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	MinIO      MinIOConfig
	JWT        JWTConfig
	SLA        SLAConfig
	MasterData MasterDataConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

type JWTConfig struct {
	Secret     string
	ExpireHour int
}

// SLAConfig is the deadline contract per priority. The hour thresholds are
// deployment configuration, not code; defaults mirror the municipal
// department table.
type SLAConfig struct {
	CriticalHours int
	HighHours     int
	MediumHours   int
	LowHours      int
	// WarningHours is the window before the deadline in which a complaint is
	// reported AT_RISK.
	WarningHours int
	// MonitorIntervalMinutes is the background breach-sweep cadence.
	MonitorIntervalMinutes int
}

// MasterDataConfig points at the municipal master-data registry.
type MasterDataConfig struct {
	BaseURL         string
	TimeoutSeconds  int
	CacheTTLMinutes int
}

func Load() *Config {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("PORT", getEnv("SERVER_PORT", "8080")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "civictrack"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("MINIO_BUCKET", "complaint-evidence"),
			UseSSL:          getEnvBool("MINIO_USE_SSL", false),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHour: getEnvInt("JWT_EXPIRE_HOUR", 24),
		},
		SLA: SLAConfig{
			CriticalHours:          getEnvInt("SLA_HOURS_CRITICAL", 12),
			HighHours:              getEnvInt("SLA_HOURS_HIGH", 24),
			MediumHours:            getEnvInt("SLA_HOURS_MEDIUM", 48),
			LowHours:               getEnvInt("SLA_HOURS_LOW", 72),
			WarningHours:           getEnvInt("SLA_WARNING_HOURS", 6),
			MonitorIntervalMinutes: getEnvInt("SLA_MONITOR_INTERVAL_MINUTES", 5),
		},
		MasterData: MasterDataConfig{
			BaseURL:         getEnv("MASTERDATA_BASE_URL", "http://localhost:9090"),
			TimeoutSeconds:  getEnvInt("MASTERDATA_TIMEOUT_SECONDS", 10),
			CacheTTLMinutes: getEnvInt("MASTERDATA_CACHE_TTL_MINUTES", 60),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
