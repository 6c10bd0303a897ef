package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort string

	// StorageBackend selects "postgres" or "memory".
	StorageBackend string
	// SnapshotPath persists the memory backend as JSON; empty disables it.
	SnapshotPath string

	DB DBConfig

	Kafka KafkaConfig

	// DirectEscrowEnabled turns on the two-stage fast path for plain escrow
	// purchases; swap orders always take the full hub pipeline.
	DirectEscrowEnabled bool

	Notify NotifyConfig

	AdminUsername string
	AdminPassword string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type KafkaConfig struct {
	Brokers      []string
	NotifyTopic  string
	GatewayTopic string
	GatewayGroup string
}

type NotifyConfig struct {
	Workers      int
	BatchSize    int
	FlushTimeout time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:       getEnv("HTTP_PORT", "9000"),
		StorageBackend: getEnv("STORAGE_BACKEND", "memory"),
		SnapshotPath:   getEnv("SNAPSHOT_PATH", ""),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Name:     getEnv("POSTGRES_DB", "orderflow"),
		},
		Kafka: KafkaConfig{
			Brokers:      strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			NotifyTopic:  getEnv("KAFKA_NOTIFY_TOPIC", "order_status_changes"),
			GatewayTopic: getEnv("KAFKA_GATEWAY_TOPIC", "escrow_events"),
			GatewayGroup: getEnv("KAFKA_GATEWAY_GROUP", "orderflow-gateway"),
		},
		DirectEscrowEnabled: getEnvBool("DIRECT_ESCROW_ENABLED", true),
		Notify: NotifyConfig{
			Workers:      getEnvInt("NOTIFY_WORKERS", 2),
			BatchSize:    getEnvInt("NOTIFY_BATCH_SIZE", 5),
			FlushTimeout: getEnvDuration("NOTIFY_FLUSH_TIMEOUT", 500*time.Millisecond),
		},
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
