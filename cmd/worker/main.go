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
	"github.com/benchdesk/benchdesk/internal/audit"
	jobmetrics "github.com/benchdesk/benchdesk/internal/jobs"
	"github.com/benchdesk/benchdesk/internal/observability"
	"github.com/benchdesk/benchdesk/internal/platform/db"
	"github.com/benchdesk/benchdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	platformMetrics := observability.NewMetrics()
	metrics := jobmetrics.NewMetrics(platformMetrics.Registerer())
	auditStore := audit.NewPostgresStore(pool)

	denialJob := jobs.NewDenialScanJob(auditStore, logger, metrics)
	exportJob := jobs.NewAuditExportJob(auditStore, logger, metrics)

	denialTask, err := jobs.NewDenialScanTask(jobs.DenialScanPayload{Window: 24 * time.Hour, Threshold: 10})
	if err != nil {
		logger.Error("build denial scan task", slog.Any("error", err))
		os.Exit(1)
	}
	exportTask, err := jobs.NewAuditExportTask(jobs.AuditExportPayload{Window: 24 * time.Hour})
	if err != nil {
		logger.Error("build audit export task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAuditDenialScan, Handler: denialJob.Handle},
			{Type: jobs.TaskAuditExport, Handler: exportJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 1 * * *", Task: denialTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 2 * * *", Task: exportTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", platformMetrics.Handler())
	metricsServer := &http.Server{Addr: cfg.WorkerAddr, Handler: metricsMux}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return worker.Run(groupCtx)
	})

	group.Go(func() error {
		logger.Info("starting worker metrics server", slog.String("addr", cfg.WorkerAddr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
