package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string        `yaml:"addr"`
	LogLevel          string        `yaml:"log_level"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	Storage           StorageConfig `yaml:"storage"`
	Redis             RedisConfig   `yaml:"redis"`
	Kafka             KafkaConfig   `yaml:"kafka"`
	Evidence          Evidence      `yaml:"evidence"`
}

// StorageConfig selects the record store.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// RedisConfig enables the cross-instance record locker when URL is set.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	LockTTL      time.Duration `yaml:"lock_ttl"`
}

// KafkaConfig enables the audit fan-out when Brokers is non-empty.
type KafkaConfig struct {
	Brokers   []string `yaml:"brokers"`
	Topic     string   `yaml:"topic"`
	SinkGroup string   `yaml:"sink_group"` // consumer group of evidentiactl audit-sink
}

// Evidence holds engine settings.
type Evidence struct {
	GapThreshold    int    `yaml:"gap_threshold"`
	DefaultTracking bool   `yaml:"default_tracking"`
	PackSigningKey  string `yaml:"pack_signing_key"`
	PackIssuer      string `yaml:"pack_issuer"`
}

// Defaults returns the development configuration.
func Defaults() Server {
	return Server{
		Addr:              ":8080",
		LogLevel:          "info",
		ReadHeaderTimeout: 5 * time.Second,
		Storage:           StorageConfig{Driver: StorageMemory},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			LockTTL:      10 * time.Second,
		},
		Kafka: KafkaConfig{Topic: "evidentia.audit", SinkGroup: "evidentia-audit-sink"},
		Evidence: Evidence{
			GapThreshold:    3,
			DefaultTracking: true,
			// Use a default for development - should be overridden in production
			PackSigningKey: "dev-pack-signing-key-change-in-production",
			PackIssuer:     "evidentia",
		},
	}
}

// FromEnv builds the configuration from defaults, then the YAML file named by
// EVIDENTIA_CONFIG, then EVIDENTIA_* variables. Later sources win.
func FromEnv() (Server, error) {
	cfg := Defaults()
	if path := os.Getenv("EVIDENTIA_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Server{}, err
		}
	}
	if err := cfg.overlayEnv(os.Getenv); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c *Server) overlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Server) overlayEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	var errs []error
	integer := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v := getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("EVIDENTIA_ADDR", &c.Addr)
	str("EVIDENTIA_LOG_LEVEL", &c.LogLevel)
	str("EVIDENTIA_STORAGE_DRIVER", &c.Storage.Driver)
	str("EVIDENTIA_DATABASE_DSN", &c.Storage.DSN)
	str("EVIDENTIA_REDIS_URL", &c.Redis.URL)
	integer("EVIDENTIA_REDIS_POOL_SIZE", &c.Redis.PoolSize)
	duration("EVIDENTIA_REDIS_LOCK_TTL", &c.Redis.LockTTL)
	if v := getenv("EVIDENTIA_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	str("EVIDENTIA_KAFKA_TOPIC", &c.Kafka.Topic)
	str("EVIDENTIA_KAFKA_SINK_GROUP", &c.Kafka.SinkGroup)
	integer("EVIDENTIA_GAP_THRESHOLD", &c.Evidence.GapThreshold)
	boolean("EVIDENTIA_DEFAULT_TRACKING", &c.Evidence.DefaultTracking)
	str("EVIDENTIA_PACK_SIGNING_KEY", &c.Evidence.PackSigningKey)
	str("EVIDENTIA_PACK_ISSUER", &c.Evidence.PackIssuer)
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate rejects settings the server cannot start with.
func (c Server) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQLite, StoragePostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage driver %s needs a DSN", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Evidence.GapThreshold < 1 {
		errs = append(errs, fmt.Errorf("gap threshold must be at least 1, got %d", c.Evidence.GapThreshold))
	}
	if len(c.Evidence.PackSigningKey) < 32 {
		errs = append(errs, errors.New("pack signing key must be at least 32 bytes"))
	}
	if c.Redis.URL != "" && c.Redis.LockTTL <= 0 {
		errs = append(errs, errors.New("redis lock ttl must be positive"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka topic is required when brokers are set"))
	}
	return errors.Join(errs...)
}
