package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditDenialScan is the task type for the denial anomaly scan.
	TaskAuditDenialScan = "audit:denial_scan"
	// TaskAuditExport is the task type for scheduled audit exports.
	TaskAuditExport = "audit:export"
)

// DenialScanPayload tunes the denial anomaly scan.
type DenialScanPayload struct {
	// Window is the lookback period; zero means 24h.
	Window time.Duration `json:"window"`
	// Threshold is the denial count per user the scan flags as
	// suspicious; zero means 10.
	Threshold int `json:"threshold"`
}

// NewDenialScanTask constructs an Asynq task for the anomaly scan.
func NewDenialScanTask(payload DenialScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditDenialScan, data), nil
}

// AuditExportPayload describes a scheduled audit trail export.
type AuditExportPayload struct {
	// Window is the lookback period; zero means 24h.
	Window time.Duration `json:"window"`
	// Dir is the directory the export file is written to.
	Dir string `json:"dir"`
}

// NewAuditExportTask constructs an Asynq task for the audit export.
func NewAuditExportTask(payload AuditExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditExport, data), nil
}
