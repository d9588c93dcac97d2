package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/benchdesk/benchdesk/internal/audit"
	jobmetrics "github.com/benchdesk/benchdesk/internal/jobs"
)

// DenialScanJob walks the recent audit trail looking for users with an
// unusual number of denied accesses. A burst of denials is the usual
// signature of someone probing for endpoints their role does not cover.
type DenialScanJob struct {
	Store   audit.Store
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewDenialScanJob initialises the denial scan handler.
func NewDenialScanJob(store audit.Store, logger *slog.Logger, metrics *jobmetrics.Metrics) *DenialScanJob {
	return &DenialScanJob{
		Store:   store,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the denial scan logic.
func (j *DenialScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("denial scan: handler not configured")
	}
	var payload DenialScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Window <= 0 {
		payload.Window = 24 * time.Hour
	}
	if payload.Threshold <= 0 {
		payload.Threshold = 10
	}

	start := j.now()
	tracker := j.metrics().Track(TaskAuditDenialScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(
		slog.Duration("window", payload.Window),
		slog.Int("threshold", payload.Threshold),
	)
	logger.Info("starting denial scan")

	if j.Store == nil {
		resultErr = errors.New("denial scan: store not configured")
		return resultErr
	}

	events, err := j.Store.Query(ctx, audit.Filter{
		Type: audit.EventUnauthorizedAccess,
		From: start.Add(-payload.Window),
	})
	if err != nil {
		resultErr = err
		logger.Error("scan failed", slog.Any("error", err))
		return resultErr
	}

	byUser := make(map[string]int)
	for _, ev := range events {
		byUser[ev.UserID]++
	}

	flagged := 0
	for userID, count := range byUser {
		if count < payload.Threshold {
			continue
		}
		flagged++
		severity := "warning"
		if count >= payload.Threshold*3 {
			severity = "critical"
		}
		logger.Warn("denial anomaly detected",
			slog.String("user_id", userID),
			slog.Int("denials", count),
			slog.String("severity", severity),
		)
		j.metrics().AddAnomalies(severity, userID, count)
	}

	logger.Info("completed denial scan",
		slog.Int("denials", len(events)),
		slog.Int("flagged_users", flagged),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *DenialScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *DenialScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *DenialScanJob) metrics() *jobmetrics.Metrics {
	return j.Metrics
}
