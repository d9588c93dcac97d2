package jobs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hibiken/asynq"

	"github.com/benchdesk/benchdesk/internal/audit"
	jobmetrics "github.com/benchdesk/benchdesk/internal/jobs"
)

// AuditExportJob snapshots the recent audit trail to a CSV file for
// offline retention. Compliance wants the trail to survive the
// database, not just live in it.
type AuditExportJob struct {
	Store   audit.Store
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewAuditExportJob initialises the export handler.
func NewAuditExportJob(store audit.Store, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditExportJob {
	return &AuditExportJob{
		Store:   store,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the export.
func (j *AuditExportJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("audit export: handler not configured")
	}
	var payload AuditExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Window <= 0 {
		payload.Window = 24 * time.Hour
	}
	if payload.Dir == "" {
		payload.Dir = os.TempDir()
	}

	start := j.now()
	tracker := j.metrics().Track(TaskAuditExport)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Duration("window", payload.Window), slog.String("dir", payload.Dir))
	logger.Info("starting audit export")

	if j.Store == nil {
		resultErr = errors.New("audit export: store not configured")
		return resultErr
	}

	events, err := j.Store.Query(ctx, audit.Filter{From: start.Add(-payload.Window)})
	if err != nil {
		resultErr = err
		logger.Error("export query failed", slog.Any("error", err))
		return resultErr
	}

	name := "audit-" + start.Format("20060102T150405") + ".csv"
	path := filepath.Join(payload.Dir, name)
	if resultErr = writeExport(path, events); resultErr != nil {
		logger.Error("export write failed", slog.Any("error", resultErr))
		return resultErr
	}

	logger.Info("completed audit export",
		slog.Int("events", len(events)),
		slog.String("file", path),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func writeExport(path string, events []audit.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "event_type", "user_id", "timestamp", "resource_type", "resource_id", "action", "success", "security_level", "details"}); err != nil {
		return err
	}
	for _, ev := range events {
		record := []string{
			ev.ID,
			string(ev.Type),
			ev.UserID,
			ev.Timestamp.Format(time.RFC3339),
			ev.ResourceType,
			ev.ResourceID,
			ev.Action,
			strconv.FormatBool(ev.Success),
			string(ev.SecurityLevel),
			ev.Details,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (j *AuditExportJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *AuditExportJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *AuditExportJob) metrics() *jobmetrics.Metrics {
	return j.Metrics
}
