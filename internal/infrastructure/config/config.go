package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	pkgpostgres "github.com/bibbank/card-lifecycle/pkg/postgres"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	HTTPPort    int
	GRPCPort    int
	StoreDriver string
	DB          DBConfig
	Kafka       KafkaConfig
	Lifecycle   LifecycleConfig
	Jobs        JobsConfig
	Telemetry   TelemetryConfig
	GRPC        GRPCConfig
	LogLevel    string
	LogFormat   string
}

// DBConfig holds PostgreSQL connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// KafkaConfig holds Kafka connection parameters.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// LifecycleConfig bounds the lifecycle engine.
type LifecycleConfig struct {
	StoreTimeout       time.Duration
	PublishTimeout     time.Duration
	MaxConflictRetries int
	DefaultCreditLimit decimal.Decimal
}

// JobsConfig schedules the background jobs.
type JobsConfig struct {
	SweepSchedule       string
	SweepConcurrency    int
	OutboxRelaySchedule string
	OutboxBatchSize     int
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

// GRPCConfig holds optional gRPC server settings.
type GRPCConfig struct {
	TLSCertFile string
	TLSKeyFile  string
	Reflection  bool
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		HTTPPort:    getEnvInt("HTTP_PORT", 8089),
		GRPCPort:    getEnvInt("GRPC_PORT", 9089),
		StoreDriver: getEnv("STORE_DRIVER", StoreDriverPostgres),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "cards"),
			Password: getEnv("DB_PASSWORD", "cards_dev_password"),
			Name:     getEnv("DB_NAME", "cards"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 20)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_TOPIC", "card-service-topic"),
		},
		Lifecycle: LifecycleConfig{
			StoreTimeout:       getEnvDuration("STORE_TIMEOUT", 5*time.Second),
			PublishTimeout:     getEnvDuration("PUBLISH_TIMEOUT", 5*time.Second),
			MaxConflictRetries: getEnvInt("MAX_CONFLICT_RETRIES", 3),
			DefaultCreditLimit: getEnvDecimal("DEFAULT_CREDIT_LIMIT", decimal.NewFromInt(25000)),
		},
		Jobs: JobsConfig{
			SweepSchedule:       getEnv("SWEEP_SCHEDULE", "@every 10m"),
			SweepConcurrency:    getEnvInt("SWEEP_CONCURRENCY", 4),
			OutboxRelaySchedule: getEnv("OUTBOX_RELAY_SCHEDULE", "@every 1m"),
			OutboxBatchSize:     getEnvInt("OUTBOX_BATCH_SIZE", 100),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName:  "card-lifecycle",
		},
		GRPC: GRPCConfig{
			TLSCertFile: getEnv("GRPC_TLS_CERT_FILE", ""),
			TLSKeyFile:  getEnv("GRPC_TLS_KEY_FILE", ""),
			Reflection:  getEnvBool("GRPC_REFLECTION", false),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("GRPC_PORT %d out of range", c.GRPCPort))
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT %d out of range", c.HTTPPort))
	}
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DB.Host == "" || c.DB.Name == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for the postgres store"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.StoreDriver))
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required"))
	}
	if c.Kafka.Topic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is required"))
	}
	if c.Lifecycle.StoreTimeout <= 0 || c.Lifecycle.PublishTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT and PUBLISH_TIMEOUT must be positive"))
	}
	if c.Lifecycle.MaxConflictRetries < 1 {
		errs = append(errs, errors.New("MAX_CONFLICT_RETRIES must be at least 1"))
	}
	if !c.Lifecycle.DefaultCreditLimit.IsPositive() {
		errs = append(errs, errors.New("DEFAULT_CREDIT_LIMIT must be positive"))
	}
	if _, err := cron.ParseStandard(c.Jobs.SweepSchedule); err != nil {
		errs = append(errs, fmt.Errorf("SWEEP_SCHEDULE: %w", err))
	}
	if _, err := cron.ParseStandard(c.Jobs.OutboxRelaySchedule); err != nil {
		errs = append(errs, fmt.Errorf("OUTBOX_RELAY_SCHEDULE: %w", err))
	}
	if c.Jobs.SweepConcurrency < 1 {
		errs = append(errs, errors.New("SWEEP_CONCURRENCY must be at least 1"))
	}
	if c.Jobs.OutboxBatchSize < 1 {
		errs = append(errs, errors.New("OUTBOX_BATCH_SIZE must be at least 1"))
	}
	if (c.GRPC.TLSCertFile == "") != (c.GRPC.TLSKeyFile == "") {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}

	return errors.Join(errs...)
}

// Postgres converts the DB settings into a pool configuration.
func (c Config) Postgres() pkgpostgres.Config {
	return pkgpostgres.Config{
		Host:     c.DB.Host,
		Port:     c.DB.Port,
		User:     c.DB.User,
		Password: c.DB.Password,
		Database: c.DB.Name,
		SSLMode:  c.DB.SSLMode,
		MaxConns: c.DB.MaxConns,
		MinConns: c.DB.MinConns,
	}
}

// GRPCAddr returns the full gRPC listen address.
func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

// HTTPAddr returns the full HTTP listen address.
func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvDecimal(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if val := os.Getenv(key); val != "" {
		if d, err := decimal.NewFromString(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
