package main

import (
	"context"
	"fmt"
	"log/slog"

	"inkwell/internal/platform/config"
	"inkwell/internal/platform/database"
	"inkwell/internal/platform/health"
	"inkwell/internal/platform/kafka/producer"
	platformredis "inkwell/internal/platform/redis"
	"inkwell/internal/sharedstore"
	subjectservice "inkwell/internal/subject/service"
	subjectstore "inkwell/internal/subject/store"
	"inkwell/pkg/platform/audit"
	"inkwell/pkg/platform/audit/mirror"
	auditmemory "inkwell/pkg/platform/audit/store/memory"
	auditpostgres "inkwell/pkg/platform/audit/store/postgres"
	auditsqlite "inkwell/pkg/platform/audit/store/sqlite"
)

// infra holds the external connections opened at startup. Each field is nil
// when its backend is not configured.
type infra struct {
	redis    *platformredis.Client
	db       *database.Pool
	producer *producer.Producer
	closers  []func()
}

func (i *infra) close() {
	for n := len(i.closers) - 1; n >= 0; n-- {
		i.closers[n]()
	}
}

func openInfra(ctx context.Context, cfg *config.Config, log *slog.Logger, checks *health.Handler, producerOpts ...producer.Option) (*infra, error) {
	i := &infra{}

	rc, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if rc != nil {
		i.redis = rc
		i.closers = append(i.closers, func() { _ = rc.Close() })
		checks.RegisterCheck("redis", rc.Health)
		log.Info("shared store backed by redis")
	} else {
		log.Warn("REDIS_URL not set; using in-process shared store, limits are per instance")
	}

	pool, err := database.New(ctx, cfg.Database)
	if err != nil {
		i.close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if pool != nil {
		i.db = pool
		i.closers = append(i.closers, func() { _ = pool.Close() })
		checks.RegisterCheck("postgres", pool.Health)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		p, err := producer.New(cfg.Kafka, log, producerOpts...)
		if err != nil {
			i.close()
			return nil, err
		}
		i.producer = p
		i.closers = append(i.closers, func() { p.Close(cfg.Server.ShutdownTimeout) })
		checks.RegisterCheck("kafka", p.Ping)
	}
	return i, nil
}

// sharedStore returns the Redis store when configured, else the in-process
// store. The second return is non-nil only for the in-process store, which
// needs periodic sweeping.
func (i *infra) sharedStore(cfg *config.Config) (sharedstore.Store, *sharedstore.MemoryStore, error) {
	if i.redis == nil {
		mem := sharedstore.NewMemoryStore()
		return mem, mem, nil
	}
	store, err := sharedstore.NewRedisStore(i.redis.Client, sharedstore.WithOpTimeout(cfg.StoreTimeout))
	if err != nil {
		return nil, nil, err
	}
	return store, nil, nil
}

func (i *infra) subjectStore() subjectservice.Store {
	if i.db == nil {
		return subjectstore.NewInMemory()
	}
	return subjectstore.NewPostgres(i.db.DB())
}

func (i *infra) auditStore(ctx context.Context, cfg *config.Config, checks *health.Handler) (audit.Store, error) {
	switch cfg.Audit.Driver {
	case "postgres":
		return auditpostgres.New(i.db.DB()), nil
	case "sqlite":
		store, err := auditsqlite.Open(ctx, cfg.Audit.SQLitePath)
		if err != nil {
			return nil, err
		}
		i.closers = append(i.closers, func() { _ = store.Close() })
		checks.RegisterCheck("audit_sqlite", store.DB().PingContext)
		return store, nil
	default:
		return auditmemory.New(), nil
	}
}

// auditMirror streams security events to Kafka when brokers are configured.
func (i *infra) auditMirror(cfg *config.Config) (*mirror.KafkaMirror, error) {
	if i.producer == nil {
		return nil, nil
	}
	return mirror.NewKafka(i.producer, cfg.Kafka.AuditTopic)
}
