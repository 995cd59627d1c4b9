package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	camphandler "redhope/internal/camp/handler"
	campmetrics "redhope/internal/camp/metrics"
	campservice "redhope/internal/camp/service"
	campstore "redhope/internal/camp/store"
	httpapi "redhope/internal/http"
	identityhandler "redhope/internal/identity/handler"
	identitymetrics "redhope/internal/identity/metrics"
	"redhope/internal/identity/revocation"
	identityservice "redhope/internal/identity/service"
	identitystore "redhope/internal/identity/store"
	"redhope/internal/identity/token"
	inventoryhandler "redhope/internal/inventory/handler"
	inventorymetrics "redhope/internal/inventory/metrics"
	inventoryservice "redhope/internal/inventory/service"
	inventorystore "redhope/internal/inventory/store"
	"redhope/internal/platform/config"
	"redhope/internal/platform/kafka"
	platformmetrics "redhope/internal/platform/metrics"
	"redhope/internal/platform/postgres"
	"redhope/internal/platform/redis"
	recordshandler "redhope/internal/records/handler"
	recordsmetrics "redhope/internal/records/metrics"
	recordsservice "redhope/internal/records/service"
	recordsstore "redhope/internal/records/store"
	audit "redhope/pkg/platform/audit"
	"redhope/pkg/platform/audit/publisher"
	auditmemory "redhope/pkg/platform/audit/store/memory"
	auditpostgres "redhope/pkg/platform/audit/store/postgres"
	"redhope/pkg/platform/audit/worker"
	authmw "redhope/pkg/platform/middleware/auth"
)

const (
	auditBufferSize      = 1024
	auditTopicPartitions = 3
)

// infra holds the optional backing services. Nil fields fall back to
// in-memory implementations.
type infra struct {
	pool     *pgxpool.Pool
	sqlDB    *sql.DB
	redis    *redis.Client
	producer *kafka.Producer
}

func connectInfra(ctx context.Context, cfg config.Server, logger *slog.Logger) (*infra, error) {
	in := &infra{}
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		in.pool = pool
		if err := postgres.Migrate(ctx, pool); err != nil {
			in.close()
			return nil, err
		}
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			in.close()
			return nil, fmt.Errorf("open revocation database: %w", err)
		}
		in.sqlDB = db
		logger.InfoContext(ctx, "postgres connected")
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		in.close()
		return nil, err
	}
	if client != nil {
		in.redis = client
		logger.InfoContext(ctx, "redis connected")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			in.close()
			return nil, err
		}
		in.producer = producer
		if err := producer.EnsureTopic(ctx, auditTopicPartitions, 1); err != nil {
			in.close()
			return nil, err
		}
		logger.InfoContext(ctx, "kafka connected", "topic", cfg.Kafka.AuditTopic)
	}
	return in, nil
}

func (in *infra) close() {
	if in.producer != nil {
		in.producer.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.sqlDB != nil {
		_ = in.sqlDB.Close()
	}
	if in.pool != nil {
		in.pool.Close()
	}
}

func (in *infra) healthChecks() map[string]httpapi.HealthCheck {
	checks := make(map[string]httpapi.HealthCheck)
	if in.pool != nil {
		checks["postgres"] = in.pool.Ping
	}
	if in.redis != nil {
		checks["redis"] = in.redis.Health
	}
	if in.producer != nil {
		checks["kafka"] = in.producer.Health
	}
	return checks
}

type revocationList interface {
	identityservice.RevocationList
	authmw.TokenRevocationChecker
}

// buildRevocations prefers Redis, then Postgres, then process memory.
func buildRevocations(ctx context.Context, in *infra, logger *slog.Logger) revocationList {
	switch {
	case in.redis != nil:
		return revocation.NewRedisTRL(in.redis.Client, revocation.WithRegisterer(prometheus.DefaultRegisterer))
	case in.sqlDB != nil:
		trl := revocation.NewPostgresTRL(in.sqlDB)
		purgeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if n, err := trl.PurgeExpired(purgeCtx); err != nil {
			logger.WarnContext(ctx, "failed to purge expired revocations", "error", err)
		} else if n > 0 {
			logger.InfoContext(ctx, "purged expired revocations", "count", n)
		}
		return trl
	default:
		return revocation.NewInMemoryTRL()
	}
}

// buildAudit picks the audit sink. With Postgres, events land in the outbox
// and a relay worker ships them to Kafka when brokers are configured.
func buildAudit(cfg config.KafkaConfig, in *infra, logger *slog.Logger) (*publisher.Publisher, *worker.Worker) {
	var (
		store audit.Store
		relay *worker.Worker
	)
	switch {
	case in.pool != nil:
		outbox := auditpostgres.New(in.pool)
		store = outbox
		if in.producer != nil {
			relay = worker.NewWorker(outbox, in.producer, txRunner(in.pool),
				worker.WithLogger(logger),
				worker.WithInterval(cfg.RelayInterval),
				worker.WithBatchSize(cfg.RelayBatch),
			)
		}
	case in.producer != nil:
		store = in.producer
	default:
		store = auditmemory.NewInMemoryStore()
	}
	pub := publisher.NewPublisher(store,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(logger),
		publisher.WithMetrics(publisher.NewMetrics(prometheus.DefaultRegisterer)),
	)
	return pub, relay
}

// buildRouter wires the four domain contexts onto one router.
func buildRouter(ctx context.Context, cfg config.Server, in *infra, auditor audit.Emitter, logger *slog.Logger) http.Handler {
	var (
		accounts identityservice.Store
		stock    inventoryservice.Store
		records  recordsservice.Store
		camps    campservice.Store
	)
	if in.pool != nil {
		accounts = identitystore.NewPostgres(in.pool)
		stock = inventorystore.NewPostgres(in.pool)
		records = recordsstore.NewPostgres(in.pool)
		camps = campstore.NewPostgres(in.pool)
	} else {
		accounts = identitystore.NewInMemory()
		stock = inventorystore.NewInMemory()
		records = recordsstore.NewInMemory()
		camps = campstore.NewInMemory()
	}

	jwt := token.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	trl := buildRevocations(ctx, in, logger)

	inventory := inventoryservice.New(stock,
		inventoryservice.WithLogger(logger),
		inventoryservice.WithAuditor(auditor),
		inventoryservice.WithMetrics(inventorymetrics.New()),
	)
	identityOpts := []identityservice.Option{
		identityservice.WithLogger(logger),
		identityservice.WithAuditor(auditor),
		identityservice.WithMetrics(identitymetrics.New()),
		identityservice.WithTokenTTL(cfg.TokenTTL),
		identityservice.WithStockProvisioner(inventory),
	}
	if in.pool != nil {
		identityOpts = append(identityOpts, identityservice.WithTxRunner(txRunner(in.pool)))
	}
	identity := identityservice.New(accounts, jwt, trl, identityOpts...)

	recordsSvc := recordsservice.New(records, identity,
		recordsservice.WithLogger(logger),
		recordsservice.WithAuditor(auditor),
		recordsservice.WithMetrics(recordsmetrics.New()),
	)
	campSvc := campservice.New(camps, identity,
		campservice.WithLogger(logger),
		campservice.WithAuditor(auditor),
		campservice.WithMetrics(campmetrics.New()),
	)

	return httpapi.NewRouter(httpapi.Config{
		Logger:       logger,
		Tokens:       token.NewMiddlewareAdapter(jwt),
		Revocations:  trl,
		Metrics:      platformmetrics.New(),
		HealthChecks: in.healthChecks(),
	},
		identityhandler.New(identity, logger),
		inventoryhandler.New(inventory, logger),
		recordshandler.New(recordsSvc, logger),
		camphandler.New(campSvc, logger),
	)
}
