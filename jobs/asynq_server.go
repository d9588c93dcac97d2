package jobs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/guard"
	"github.com/benchdesk/benchdesk/internal/platform/httpx"
	"github.com/benchdesk/benchdesk/internal/shared"
)

// Worker wraps the Asynq server and optional scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// TaskHandler allows injecting custom Asynq handlers during worker setup.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// CronRegistration wires a cron expression to a prepared task.
type CronRegistration struct {
	Spec    string
	Task    *asynq.Task
	Options []asynq.Option
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Handlers  []TaskHandler
	Cron      []CronRegistration
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}

	var scheduler *asynq.Scheduler
	if len(cfg.Cron) > 0 {
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
		for _, entry := range cfg.Cron {
			if entry.Spec == "" || entry.Task == nil {
				continue
			}
			if _, err := scheduler.Register(entry.Spec, entry.Task, entry.Options...); err != nil {
				return nil, err
			}
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		return err
	}
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	client := asynq.NewClient(redisOpts)
	return &Client{client: client}, nil
}

// EnqueueDenialScan enqueues a denial anomaly scan.
func (c *Client) EnqueueDenialScan(ctx context.Context, payload DenialScanPayload) (*asynq.TaskInfo, error) {
	task, err := NewDenialScanTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// EnqueueAuditExport enqueues an audit trail export.
func (c *Client) EnqueueAuditExport(ctx context.Context, payload AuditExportPayload) (*asynq.TaskInfo, error) {
	task, err := NewAuditExportTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// Enqueuer submits ad-hoc job runs. *Client satisfies it; tests swap in
// a stub.
type Enqueuer interface {
	EnqueueDenialScan(ctx context.Context, payload DenialScanPayload) (*asynq.TaskInfo, error)
	EnqueueAuditExport(ctx context.Context, payload AuditExportPayload) (*asynq.TaskInfo, error)
}

// Handler exposes HTTP endpoints for job observability and for
// triggering runs outside the cron schedule.
type Handler struct {
	inspector *asynq.Inspector
	enqueuer  Enqueuer
	logger    *slog.Logger
}

// NewHandler constructs an HTTP handler for jobs endpoints.
func NewHandler(inspector *asynq.Inspector, enqueuer Enqueuer, logger *slog.Logger) *Handler {
	return &Handler{inspector: inspector, enqueuer: enqueuer, logger: logger}
}

var permJobsRun = authz.MustPermission(shared.PermJobsRun)

// MountRoutes attaches job routes. The trigger endpoints are held to
// jobs:run; only roles with operational access reach them.
func (h *Handler) MountRoutes(r chi.Router, mw guard.Middleware) {
	r.Get("/health", h.health)
	r.Group(func(gr chi.Router) {
		gr.Use(mw.RequireHeld("jobs.run", permJobsRun))
		gr.Post("/denial-scan", h.triggerDenialScan)
		gr.Post("/export", h.triggerAuditExport)
	})
}

type denialScanRequest struct {
	WindowHours int `json:"window_hours"`
	Threshold   int `json:"threshold"`
}

func (h *Handler) triggerDenialScan(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Jobs Unavailable", "job queue is not configured")
		return
	}
	var req denialScanRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed request body")
			return
		}
	}
	payload := DenialScanPayload{Threshold: req.Threshold}
	if req.WindowHours > 0 {
		payload.Window = time.Duration(req.WindowHours) * time.Hour
	}
	info, err := h.enqueuer.EnqueueDenialScan(r.Context(), payload)
	if err != nil {
		h.logger.Error("enqueue denial scan", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Enqueue Failed", "could not enqueue job")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": info.ID, "queue": info.Queue})
}

type auditExportRequest struct {
	WindowHours int `json:"window_hours"`
}

func (h *Handler) triggerAuditExport(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Jobs Unavailable", "job queue is not configured")
		return
	}
	var req auditExportRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed request body")
			return
		}
	}
	var payload AuditExportPayload
	if req.WindowHours > 0 {
		payload.Window = time.Duration(req.WindowHours) * time.Hour
	}
	info, err := h.enqueuer.EnqueueAuditExport(r.Context(), payload)
	if err != nil {
		h.logger.Error("enqueue audit export", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Enqueue Failed", "could not enqueue job")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": info.ID, "queue": info.Queue})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.inspector == nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"queue":"default","pending":0}`))
		return
	}
	info, err := h.inspector.GetQueueInfo(QueueDefault)
	if err != nil {
		h.logger.Warn("jobs health", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"queue":"` + info.Queue + `","pending":` + strconv.Itoa(info.Pending) + `}`))
}
