package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"inkwell/internal/admin"
	"inkwell/internal/admission"
	admissionmetrics "inkwell/internal/admission/metrics"
	authhandler "inkwell/internal/auth/handler"
	"inkwell/internal/content"
	"inkwell/internal/platform/config"
	"inkwell/internal/platform/health"
	"inkwell/internal/platform/kafka/producer"
	"inkwell/internal/platform/logger"
	"inkwell/internal/platform/metrics"
	"inkwell/internal/ratelimit/limiter"
	rlmetrics "inkwell/internal/ratelimit/metrics"
	ratelimitmw "inkwell/internal/ratelimit/middleware"
	"inkwell/internal/ratelimit/workers/cleanup"
	"inkwell/internal/reputation"
	"inkwell/internal/seeder"
	subjectservice "inkwell/internal/subject/service"
	"inkwell/internal/token"
	httptransport "inkwell/internal/transport/http"
	"inkwell/pkg/platform/audit"
	auditmetrics "inkwell/pkg/platform/audit/metrics"
	"inkwell/pkg/platform/audit/publisher"
	"inkwell/pkg/platform/audit/retention"
	"inkwell/pkg/platform/middleware/metadata"
	"inkwell/pkg/platform/middleware/request"
	"inkwell/pkg/platform/tracer"
)

// main wires dependencies, serves HTTP and runs the background workers
// until SIGINT or SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("initializing inkwell",
		"addr", cfg.Server.Addr,
		"environment", cfg.Server.Environment,
		"audit_driver", cfg.Audit.Driver,
	)

	var spans tracer.Tracer = tracer.NewNoop()
	if cfg.Tracing.Enabled {
		spans = tracer.NewOTel()
	}

	checks := health.New(cfg.Server.Environment, log)
	auditMetrics := auditmetrics.New()
	infra, err := openInfra(ctx, cfg, log, checks, producer.WithDropHook(auditMetrics.MirrorDropped.Inc))
	if err != nil {
		return err
	}
	defer infra.close()

	shared, memStore, err := infra.sharedStore(cfg)
	if err != nil {
		return err
	}
	checks.RegisterCheck("shared_store", shared.Ping)

	// Audit sink
	auditStore, err := infra.auditStore(ctx, cfg, checks)
	if err != nil {
		return err
	}
	sinkOpts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithMetrics(auditMetrics),
		publisher.WithTracer(spans),
		publisher.WithAsyncBuffer(cfg.Audit.AsyncBuffer),
	}
	kafkaMirror, err := infra.auditMirror(cfg)
	if err != nil {
		return err
	}
	if kafkaMirror != nil {
		sinkOpts = append(sinkOpts, publisher.WithMirror(kafkaMirror))
	}
	sink, err := publisher.New(auditStore, sinkOpts...)
	if err != nil {
		return err
	}
	defer sink.Close()
	auditLog := audit.NewLogger(log, sink)

	// Identity
	identityMetrics := metrics.New()
	subjectStore := infra.subjectStore()
	subjects, err := subjectservice.New(subjectStore,
		subjectservice.WithLogger(log),
		subjectservice.WithMetrics(identityMetrics),
	)
	if err != nil {
		return err
	}
	tokens, err := token.New(token.Config{
		AccessSecret:   cfg.Token.AccessSecret,
		RefreshSecret:  cfg.Token.RefreshSecret,
		Issuer:         cfg.Token.Issuer,
		Audience:       cfg.Token.Audience,
		AccessTTL:      cfg.Token.AccessTTL,
		RefreshTTL:     cfg.Token.RefreshTTL,
		ReuseDetection: cfg.Token.ReuseDetection,
	},
		token.WithLogger(log),
		token.WithMetrics(identityMetrics),
		token.WithAudit(auditLog),
		token.WithSubjectLookup(subjects),
		token.WithConsumedStore(shared),
	)
	if err != nil {
		return err
	}

	// Admission
	rlMetrics := rlmetrics.New()
	lim, err := limiter.New(shared,
		limiter.WithLogger(log),
		limiter.WithMetrics(rlMetrics),
		limiter.WithTracer(spans),
		limiter.WithStoreTimeout(cfg.StoreTimeout),
	)
	if err != nil {
		return err
	}
	rep, err := reputation.New(shared,
		reputation.WithLogger(log),
		reputation.WithAudit(auditLog),
		reputation.WithTracer(spans),
		reputation.WithStoreTimeout(cfg.StoreTimeout),
	)
	if err != nil {
		return err
	}
	if cfg.Server.SeedDemoData {
		if err := seeder.New(subjectStore, auditStore, rep, log).SeedAll(ctx); err != nil {
			return err
		}
	}

	blockPolicy := admission.BlockPolicy{
		ViolationThreshold: cfg.RateLimit.AutoBlock.Threshold,
		ViolationLookback:  cfg.RateLimit.AutoBlock.Lookback,
		ViolationBlockFor:  cfg.RateLimit.AutoBlock.Duration,
	}
	if cfg.Reputation.BlockOnMaliciousInput {
		blockPolicy.MaliciousBlockFor = cfg.Reputation.MaliciousBlockFor
	}
	pipeline, err := admission.New(rep, tokens, lim, cfg.RateLimit.Scopes,
		admission.WithLogger(log),
		admission.WithMetrics(admissionmetrics.New()),
		admission.WithAudit(auditLog),
		admission.WithBlockPolicy(blockPolicy),
	)
	if err != nil {
		return err
	}

	// HTTP
	trusted, err := metadata.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}
	deps := httptransport.Deps{
		Logger:         log,
		Pipeline:       pipeline,
		Auth:           authhandler.New(subjects, tokens, pipeline, auditLog, log),
		Content:        content.New(pipeline, log),
		Health:         checks,
		Metadata:       metadata.NewMiddleware(&metadata.Config{TrustedProxies: trusted}),
		Throttle:       ratelimitmw.NewGlobalThrottle(float64(cfg.RateLimit.GlobalPerSecond), cfg.RateLimit.GlobalBurst, ratelimitmw.WithThrottleLogger(log), ratelimitmw.WithThrottleMetrics(rlMetrics)),
		Latency:        request.NewMetrics(),
		RequestTimeout: cfg.Server.RequestTimeout,
	}
	if cfg.Admin.Token != "" {
		adminService, err := admin.NewService(sink, rep, subjects, auditLog)
		if err != nil {
			return err
		}
		deps.Admin = admin.New(adminService, log)
		deps.AdminToken = cfg.Admin.Token
	} else {
		log.Warn("ADMIN_API_TOKEN not set; admin endpoints disabled")
	}
	router, err := httptransport.NewRouter(deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.RequestTimeout,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Workers
	retentionWorker, err := retention.New(sink, cfg.Audit.Retention,
		retention.WithLogger(log),
		retention.WithInterval(cfg.Audit.PruneInterval),
	)
	if err != nil {
		return err
	}
	g.Go(func() error { return ignoreCanceled(retentionWorker.Start(gctx)) })

	if memStore != nil {
		sweeper, err := cleanup.New(memStore, cleanup.WithLogger(log), cleanup.WithMetrics(rlMetrics))
		if err != nil {
			return err
		}
		g.Go(func() error { return ignoreCanceled(sweeper.Start(gctx)) })
	}
	if infra.redis != nil {
		g.Go(func() error { return infra.redis.RunPoolStats(gctx, 15*time.Second) })
	}

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
