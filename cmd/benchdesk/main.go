package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/benchdesk/benchdesk/internal/app"
	"github.com/benchdesk/benchdesk/internal/approval"
	"github.com/benchdesk/benchdesk/internal/audit"
	audithttp "github.com/benchdesk/benchdesk/internal/audit/http"
	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/bench"
	"github.com/benchdesk/benchdesk/internal/guard"
	"github.com/benchdesk/benchdesk/internal/hotlists"
	"github.com/benchdesk/benchdesk/internal/identity"
	"github.com/benchdesk/benchdesk/internal/observability"
	"github.com/benchdesk/benchdesk/internal/ownership"
	"github.com/benchdesk/benchdesk/internal/platform/cache"
	"github.com/benchdesk/benchdesk/internal/platform/db"
	"github.com/benchdesk/benchdesk/internal/shared"
	"github.com/benchdesk/benchdesk/internal/vendors"
	"github.com/benchdesk/benchdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	registry, err := authz.NewRegistry(authz.DefaultRoles())
	if err != nil {
		logger.Error("build role registry", slog.Any("error", err))
		os.Exit(1)
	}
	if err := authz.CheckCatalog(registry, shared.CatalogScopes()); err != nil {
		logger.Error("validate permission catalog", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "benchdesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	metrics := observability.NewMetrics()

	auditStore := audit.NewPostgresStore(dbpool)
	auditWriter := audit.NewWriter(auditStore, logger, metrics.CountAuditWriteFailure,
		audit.WithQueueSize(cfg.AuditQueueSize),
		audit.WithRetry(cfg.AuditRetryLimit, cfg.AuditRetryBackoff),
	)
	auditLogger := audit.NewLogger(auditWriter, logger, metrics.CountAuditWriteFailure)

	identityRepo := identity.NewRepository(dbpool)
	identityService := identity.NewService(identityRepo, registry, redisClient, cfg.PermissionCacheTTL, logger)
	identityHandler := identity.NewHandler(logger, identityService, sessionManager, auditLogger)

	approvalChecker := approval.NewChecker(dbpool)
	approvalRecorder := approval.NewRecorder(dbpool, logger)
	commissionPolicy := approval.NewCommissionPolicy(cfg.CommissionThreshold)

	guardMW := guard.Middleware{
		Guard: &authz.Guard{
			Ownership: ownership.NewLookup(dbpool),
			Approvals: approvalChecker,
			Logger:    logger,
		},
		Audit:   auditLogger,
		Logger:  logger,
		Metrics: metrics,
	}

	benchRepo := bench.NewRepository(dbpool)
	benchService := bench.NewService(benchRepo, logger)
	benchHandler := bench.NewHandler(logger, benchService, auditLogger)

	hotlistRepo := hotlists.NewRepository(dbpool)
	hotlistService := hotlists.NewService(hotlistRepo, logger)
	hotlistHandler := hotlists.NewHandler(logger, hotlistService, auditLogger)

	vendorRepo := vendors.NewRepository(dbpool)
	vendorService := vendors.NewService(vendorRepo, commissionPolicy, approvalChecker, approvalRecorder, logger)
	vendorHandler := vendors.NewHandler(logger, vendorService, auditLogger)

	auditHandler := audithttp.NewHandler(logger, auditLogger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobsClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		Permissions:     identityService,
		Guard:           guardMW,
		IdentityHandler: identityHandler,
		BenchHandler:    benchHandler,
		HotlistsHandler: hotlistHandler,
		VendorsHandler:  vendorHandler,
		AuditHandler:    auditHandler,
		JobsHandler:     jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return auditWriter.Run(groupCtx)
	})

	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		logger.Error("shutdown", slog.Any("error", err))
		os.Exit(1)
	}
}
