package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"crm/internal/activity"
	"crm/internal/assignment/dedup"
	assignmenthandler "crm/internal/assignment/handler"
	assignmentmetrics "crm/internal/assignment/metrics"
	"crm/internal/assignment/selector"
	assignmentservice "crm/internal/assignment/service"
	authhandler "crm/internal/auth/handler"
	authservice "crm/internal/auth/service"
	"crm/internal/auth/store/revocation"
	"crm/internal/auth/token"
	authzhandler "crm/internal/authz/handler"
	authzmetrics "crm/internal/authz/metrics"
	authzmw "crm/internal/authz/middleware"
	authzservice "crm/internal/authz/service"
	authzstore "crm/internal/authz/store"
	convstore "crm/internal/conversation/store"
	"crm/internal/platform/config"
	"crm/internal/platform/postgres"
	platformredis "crm/internal/platform/redis"
	"crm/internal/realtime"
	"crm/internal/realtime/kafka"
	routinghandler "crm/internal/routing/handler"
	routingmetrics "crm/internal/routing/metrics"
	routingservice "crm/internal/routing/service"
	routingstore "crm/internal/routing/store"
	teamstore "crm/internal/team/store"
	httptransport "crm/internal/transport/http"
	id "crm/pkg/domain"
	audit "crm/pkg/platform/audit"
	auditpublisher "crm/pkg/platform/audit/publisher"
	auditmemory "crm/pkg/platform/audit/store/memory"
	auditpostgres "crm/pkg/platform/audit/store/postgres"
)

const (
	tokenIssuer   = "crm"
	tokenAudience = "crm-api"
)

type stores struct {
	rbac interface {
		authzservice.PermissionStore
		authzservice.RBACStore
	}
	teams         assignmentservice.TeamStore
	conversations assignmentservice.ConversationStore
	rules         routingservice.RuleStore
	audit         audit.Store
}

type app struct {
	router  http.Handler
	hub     *realtime.Hub
	storage string

	closeOnce sync.Once
	closers   []func()
}

func (a *app) close() {
	a.closeOnce.Do(func() {
		for i := len(a.closers) - 1; i >= 0; i-- {
			a.closers[i]()
		}
	})
}

// build assembles the application. Postgres and Redis are used when
// configured; otherwise everything runs in process memory with a small
// development seed.
func build(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{storage: "memory"}
	health := map[string]httptransport.HealthCheck{}

	var db *sql.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		if cfg.Database.AutoMigrate {
			applied, err := postgres.Migrate(ctx, db)
			if err != nil {
				a.close()
				return nil, err
			}
			log.Info("database migrations applied", "count", len(applied))
		}
		health["postgres"] = db.PingContext
		a.storage = "postgres"
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		a.close()
		return nil, err
	}
	if redisClient != nil {
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		health["redis"] = redisClient.Health
	}

	var mem *memoryBackends
	var st stores
	if db != nil {
		st = postgresStores(db)
	} else {
		mem = newMemoryBackends()
		st = mem.stores()
	}

	audits := auditpublisher.NewPublisher(st.audit,
		auditpublisher.WithAsyncBuffer(cfg.Audit.BufferSize),
		auditpublisher.WithCircuitBreaker(cfg.Audit.BreakerThreshold, cfg.Audit.BreakerCooldown),
		auditpublisher.WithLogger(log),
		auditpublisher.WithMetrics(auditpublisher.NewMetrics()),
	)
	a.closers = append(a.closers, audits.Close)

	authzOpts := []authzservice.Option{
		authzservice.WithLogger(log),
		authzservice.WithAuditPublisher(audits),
		authzservice.WithMetrics(authzmetrics.New()),
		authzservice.WithAdminAliases(cfg.Authz.AdminRoleAliases),
	}
	evaluator, err := authzservice.NewEvaluator(st.rbac, authzOpts...)
	if err != nil {
		a.close()
		return nil, err
	}
	rbac, err := authzservice.NewRBACService(st.rbac, authzOpts...)
	if err != nil {
		a.close()
		return nil, err
	}
	gates := authzmw.New(evaluator, log)

	routing, err := routingservice.New(st.rules, st.teams,
		routingservice.WithLogger(log),
		routingservice.WithAuditPublisher(audits),
		routingservice.WithMetrics(routingmetrics.New()),
	)
	if err != nil {
		a.close()
		return nil, err
	}

	var (
		dedupStore  dedup.Store                 = dedup.NewInMemoryStore()
		cursors     selector.CursorStore        = selector.NewInMemoryCursors()
		revocations authservice.RevocationStore = revocation.NewInMemoryStore()
	)
	if redisClient != nil {
		dedupStore = dedup.NewRedisStore(redisClient.Client)
		cursors = selector.NewRedisCursors(redisClient.Client)
		revocations = revocation.NewRedisStore(redisClient.Client)
	}
	guard := dedup.NewGuard(dedupStore,
		dedup.WithWindow(cfg.Assignment.IsolationWindow),
		dedup.WithLogger(log),
		dedup.WithMetrics(dedup.NewMetrics()),
	)

	assignMetrics := assignmentmetrics.New()
	sel, err := selector.New(st.teams, cursors, st.conversations,
		selector.WithLogger(log),
		selector.WithMetrics(assignMetrics),
	)
	if err != nil {
		a.close()
		return nil, err
	}

	a.hub = realtime.NewHub(
		realtime.WithLogger(log),
		realtime.WithMetrics(realtime.NewMetrics()),
		realtime.WithTeamAccess(func(ctx context.Context, identityID id.IdentityID, teamID id.TeamID) bool {
			return evaluator.IsAdmin(ctx, identityID) || evaluator.BelongsToTeam(ctx, identityID, teamID)
		}),
	)
	broadcaster := realtime.Multi{a.hub}
	if len(cfg.Kafka.Brokers) > 0 {
		pub, err := kafka.NewPublisher(cfg.Kafka.Brokers, kafka.WithTopic(cfg.Kafka.AssignmentTopic), kafka.WithLogger(log))
		if err != nil {
			a.close()
			return nil, err
		}
		if err := pub.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("could not ensure assignment topic", "topic", cfg.Kafka.AssignmentTopic, "error", err)
		}
		a.closers = append(a.closers, func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := pub.Close(flushCtx); err != nil {
				log.Warn("kafka flush incomplete", "error", err)
			}
		})
		broadcaster = append(broadcaster, pub)
	}

	assignment, err := assignmentservice.New(st.teams, st.conversations, guard, sel,
		assignmentservice.WithKeywordRouter(routing),
		assignmentservice.WithAuditPublisher(audits),
		assignmentservice.WithBroadcaster(broadcaster),
		assignmentservice.WithLogger(log),
		assignmentservice.WithMetrics(assignMetrics),
	)
	if err != nil {
		a.close()
		return nil, err
	}

	sessions, err := authservice.New(
		token.NewService(cfg.Session.SigningKey, tokenIssuer, tokenAudience),
		revocations,
		authservice.WithLogger(log),
		authservice.WithTokenTTL(cfg.Session.TokenTTL),
	)
	if err != nil {
		a.close()
		return nil, err
	}

	monitor := activity.NewMonitor(
		activity.WithIdleTimeout(cfg.Activity.IdleTimeout),
		activity.WithMetrics(activity.NewMetrics()),
	)
	a.closers = append(a.closers, monitor.Stop)
	tracker := activity.NewTracker(monitor, sessions, audits, log)

	if mem != nil {
		if err := mem.seed(ctx, sessions, log); err != nil {
			a.close()
			return nil, fmt.Errorf("seed development data: %w", err)
		}
	}

	a.router = httptransport.NewRouter(httptransport.Config{
		Logger:        log,
		Authenticator: sessions,
		CookieName:    cfg.Session.CookieName,
		Activity:      tracker.Track,
		Handlers: []httptransport.Registrar{
			authhandler.New(sessions, tracker, cfg.Session.CookieName, log),
			authzhandler.New(rbac, evaluator, gates, log),
			routinghandler.New(routing, gates, log),
			assignmenthandler.New(assignment, gates, log),
		},
		Realtime: a.hub,
		Health:   health,
	})
	return a, nil
}

type memoryBackends struct {
	rbac          *authzstore.InMemoryStore
	teams         *teamstore.InMemoryStore
	conversations *convstore.InMemoryStore
	rules         *routingstore.InMemoryStore
}

func newMemoryBackends() *memoryBackends {
	return &memoryBackends{
		rbac:          authzstore.NewInMemoryStore(),
		teams:         teamstore.NewInMemoryStore(),
		conversations: convstore.NewInMemoryStore(),
		rules:         routingstore.NewInMemoryStore(),
	}
}

func (m *memoryBackends) stores() stores {
	return stores{
		rbac:          m.rbac,
		teams:         m.teams,
		conversations: m.conversations,
		rules:         m.rules,
		audit:         auditmemory.NewInMemoryStore(),
	}
}

func postgresStores(db *sql.DB) stores {
	return stores{
		rbac:          authzstore.NewPostgres(db),
		teams:         teamstore.NewPostgres(db),
		conversations: convstore.NewPostgres(db),
		rules:         routingstore.NewPostgres(db),
		audit:         auditpostgres.New(db),
	}
}
