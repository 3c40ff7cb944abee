// Package bootstrap assembles the evidence service from configuration. The
// server and the CLI share it so both run the same stores, locks and audit
// pipeline.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"evidentia/internal/evidence/gaps"
	evidencemetrics "evidentia/internal/evidence/metrics"
	"evidentia/internal/evidence/pack"
	"evidentia/internal/evidence/service"
	"evidentia/internal/evidence/store"
	"evidentia/internal/platform/config"
	"evidentia/internal/platform/lock"
	redisclient "evidentia/internal/platform/redis"
	"evidentia/pkg/platform/audit"
	"evidentia/pkg/platform/audit/publishers/compliance"
	"evidentia/pkg/platform/audit/publishers/ops"
	"evidentia/pkg/platform/audit/publishers/security"
	auditdb "evidentia/pkg/platform/audit/store/database"
	auditkafka "evidentia/pkg/platform/audit/store/kafka"
	auditmemory "evidentia/pkg/platform/audit/store/memory"
)

// Stores is the persistence side of the service. Memory and SQL stores both
// satisfy every interface.
type Stores interface {
	service.RecordStore
	service.PackStore
	service.SettingsStore
	service.ExplanationStore
}

// Components holds the built service and everything that must be closed with it.
type Components struct {
	Service *service.Service
	DB      *sql.DB
	Redis   *redisclient.Client
	Audit   audit.Store

	closers []func() error
}

// Close releases resources in reverse order of acquisition.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	return errors.Join(errs...)
}

// Health pings the database and Redis when they are configured.
func (c *Components) Health(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Health(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// OpenStore opens the configured record store and applies the schema for SQL
// drivers. The returned DB is nil for the memory store.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (Stores, *sql.DB, error) {
	switch cfg.Driver {
	case config.StorageMemory, "":
		return store.NewMemory(), nil, nil
	case config.StorageSQLite, config.StoragePostgres:
		db, err := store.Open(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		s, err := store.NewSQL(db, cfg.Driver)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return s, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// OpenAudit picks the audit store: Kafka when brokers are configured, the
// evidence database when one is open, memory otherwise.
func OpenAudit(ctx context.Context, cfg config.Server, db *sql.DB, logger *slog.Logger) (audit.Store, func() error, error) {
	if len(cfg.Kafka.Brokers) > 0 {
		if err := auditkafka.EnsureTopic(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, 3, 1); err != nil {
			return nil, nil, err
		}
		s, err := auditkafka.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("kafka ping: %w", err)
		}
		return s, func() error { s.Close(); return nil }, nil
	}
	if db != nil {
		s, err := OpenAuditDatabase(ctx, cfg.Storage.Driver, db)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	}
	logger.WarnContext(ctx, "no kafka brokers or database configured; audit events are kept in memory")
	return auditmemory.NewInMemoryStore(), func() error { return nil }, nil
}

// OpenAuditDatabase prepares the audit table in an open evidence database.
func OpenAuditDatabase(ctx context.Context, driver string, db *sql.DB) (*auditdb.Store, error) {
	s, err := auditdb.New(db, driver)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Build wires the evidence service from cfg. Metrics register on reg.
func Build(ctx context.Context, cfg config.Server, logger *slog.Logger, reg prometheus.Registerer) (*Components, error) {
	c := &Components{}
	fail := func(err error) (*Components, error) {
		_ = c.Close()
		return nil, err
	}

	stores, db, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return fail(err)
	}
	if db != nil {
		c.DB = db
		c.closers = append(c.closers, db.Close)
	}

	auditStore, closeAudit, err := OpenAudit(ctx, cfg, db, logger)
	if err != nil {
		return fail(err)
	}
	c.Audit = auditStore
	c.closers = append(c.closers, closeAudit)

	securityPub := security.New(auditStore, security.WithLogger(logger))
	c.closers = append(c.closers, securityPub.Close)
	compliancePub := compliance.New(auditStore,
		compliance.WithLogger(logger),
		compliance.WithMetrics(compliance.NewMetrics(reg)),
	)
	opsPub := ops.New(auditStore,
		ops.WithLogger(logger),
		ops.WithMetrics(ops.NewMetrics(reg)),
		ops.WithSampler(ops.NewSampler(1)),
		ops.WithCircuitBreaker(ops.NewCircuitBreaker(5, time.Minute, time.Now)),
	)

	var locker lock.Locker = lock.NewKeyed()
	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return fail(err)
	}
	if rc != nil {
		c.Redis = rc
		c.closers = append(c.closers, rc.Close)
		locker = lock.NewRedis(rc.Client, cfg.Redis.LockTTL)
	}

	detector, err := gaps.NewDetector(cfg.Evidence.GapThreshold)
	if err != nil {
		return fail(err)
	}
	signer, err := pack.NewSigner(cfg.Evidence.PackSigningKey, cfg.Evidence.PackIssuer)
	if err != nil {
		return fail(err)
	}

	c.Service = service.New(stores, stores, stores, stores,
		service.WithLogger(logger),
		service.WithMetrics(evidencemetrics.New(reg)),
		service.WithCompliancePublisher(compliancePub),
		service.WithSecurityPublisher(securityPub),
		service.WithOpsPublisher(opsPub),
		service.WithLocker(locker),
		service.WithGapDetector(detector),
		service.WithDefaultTracking(cfg.Evidence.DefaultTracking),
		service.WithSigner(signer),
	)
	return c, nil
}
