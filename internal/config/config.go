package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	HoldStoreRedis  = "redis"
	HoldStoreMongo  = "mongo"
	HoldStoreMemory = "memory"

	JournalSQLite   = "sqlite"
	JournalPostgres = "postgres"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	HTTP     HTTPConfig
	GRPC     GRPCConfig
	Backend  BackendConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Hold     HoldConfig
	Kafka    KafkaConfig
	Journal  JournalConfig
	Printer  PrinterConfig
	Terminal TerminalConfig
}

type HTTPConfig struct {
	Port               string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
}

type GRPCConfig struct {
	Port          string
	ProbeInterval time.Duration
}

// BackendConfig points at the remote commerce backend.
type BackendConfig struct {
	BaseURL          string
	Token            string
	Timeout          time.Duration
	BreakerFailures  int
	BreakerOpenDelay time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// ProductTTL is the base lifetime of cached catalog entries.
	ProductTTL time.Duration
}

type MongoConfig struct {
	URI      string
	Database string
}

// HoldConfig selects the held-transaction backend and its key namespace.
type HoldConfig struct {
	Store     string
	Namespace string
}

type KafkaConfig struct {
	Brokers      []string
	SalesTopic   string
	VoidsTopic   string
	WriteTimeout time.Duration
}

// Enabled reports whether events should be forwarded to Kafka.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type JournalConfig struct {
	Driver string
	DSN    string
}

type PrinterConfig struct {
	AgentURL string
	Timeout  time.Duration
}

// TerminalConfig holds the defaults a terminal boots with.
type TerminalConfig struct {
	SaleType    string
	OutletID    string
	ShiftID     string
	NoticeLimit int
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Port:               getEnv("HTTP_PORT", "8080"),
			RequestTimeout:     getDuration("HTTP_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout:    getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
			MaxRequestBodySize: 1 << 20, // 1MB
		},
		GRPC: GRPCConfig{
			Port:          getEnv("GRPC_PORT", "50051"),
			ProbeInterval: getDuration("GRPC_PROBE_INTERVAL", 10*time.Second),
		},
		Backend: BackendConfig{
			BaseURL:          strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8000"), "/"),
			Token:            getEnv("BACKEND_TOKEN", ""),
			Timeout:          getDuration("BACKEND_TIMEOUT", 15*time.Second),
			BreakerFailures:  getInt("BACKEND_BREAKER_FAILURES", 5),
			BreakerOpenDelay: getDuration("BACKEND_BREAKER_OPEN_DELAY", 30*time.Second),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getInt("REDIS_DB", 0),
			ProductTTL: getDuration("CATALOG_CACHE_TTL", 15*time.Minute),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "pos"),
		},
		Hold: HoldConfig{
			Store:     strings.ToLower(getEnv("HOLD_STORE", HoldStoreRedis)),
			Namespace: getEnv("HOLD_NAMESPACE", "default"),
		},
		Kafka: KafkaConfig{
			Brokers:      getList("KAFKA_BROKERS"),
			SalesTopic:   getEnv("KAFKA_SALES_TOPIC", "pos.sales.completed"),
			VoidsTopic:   getEnv("KAFKA_VOIDS_TOPIC", "pos.sales.voided"),
			WriteTimeout: getDuration("KAFKA_WRITE_TIMEOUT", 10*time.Second),
		},
		Journal: JournalConfig{
			Driver: strings.ToLower(getEnv("JOURNAL_DRIVER", JournalSQLite)),
			DSN:    getEnv("JOURNAL_DSN", "file:journal.db?_pragma=busy_timeout(5000)"),
		},
		Printer: PrinterConfig{
			AgentURL: getEnv("PRINT_AGENT_URL", ""),
			Timeout:  getDuration("PRINT_TIMEOUT", 10*time.Second),
		},
		Terminal: TerminalConfig{
			SaleType:    strings.ToLower(getEnv("DEFAULT_SALE_TYPE", "retail")),
			OutletID:    getEnv("OUTLET_ID", ""),
			ShiftID:     getEnv("SHIFT_ID", ""),
			NoticeLimit: getInt("NOTICE_LIMIT", 50),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Hold.Store {
	case HoldStoreRedis, HoldStoreMongo, HoldStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown HOLD_STORE %q", c.Hold.Store))
	}
	switch c.Journal.Driver {
	case JournalSQLite, JournalPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown JOURNAL_DRIVER %q", c.Journal.Driver))
	}
	switch c.Terminal.SaleType {
	case "retail", "wholesale":
	default:
		errs = append(errs, fmt.Errorf("unknown DEFAULT_SALE_TYPE %q", c.Terminal.SaleType))
	}
	if c.Hold.Namespace == "" {
		errs = append(errs, errors.New("HOLD_NAMESPACE must not be empty"))
	}
	if c.Backend.BaseURL == "" {
		errs = append(errs, errors.New("BACKEND_URL must not be empty"))
	}
	if c.Terminal.NoticeLimit <= 0 {
		errs = append(errs, errors.New("NOTICE_LIMIT must be positive"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
