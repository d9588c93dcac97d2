package audithttp

import (
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/benchdesk/benchdesk/internal/audit"
	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/platform/httpx"
	"github.com/benchdesk/benchdesk/internal/shared"
)

// PermAuditExport gates the CSV export endpoint.
var permAuditExport = authz.Permission{Resource: "audit", Action: "export"}

// Handler serves the audit trail query API.
type Handler struct {
	logger *slog.Logger
	audit  *audit.Logger
}

// NewHandler constructs the audit handler.
func NewHandler(logger *slog.Logger, auditLogger *audit.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, audit: auditLogger}
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	u := shared.UserFromContext(r.Context())
	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	events, err := h.audit.Events(r.Context(), u, filter)
	if err != nil {
		if errors.Is(err, shared.ErrPermissionDenied) {
			h.logDenied(r, u, "audit.events")
		}
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	u := shared.UserFromContext(r.Context())
	if !u.HasPermission(permAuditExport, nil) {
		h.logDenied(r, u, "audit.export")
		httpx.RespondError(w, shared.ErrPermissionDenied)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	events, err := h.audit.Events(r.Context(), u, filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	var sessionID string
	if sess != nil {
		sessionID = sess.ID
	}
	h.audit.Log(r.Context(), u, audit.Entry{
		Type:    audit.EventDataExport,
		Action:  "audit.export",
		Details: "exported " + strconv.Itoa(len(events)) + " audit events",
		Success: true,
	}, audit.MetaFromRequest(r, sessionID))

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-events.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"id", "event_type", "user_id", "timestamp", "resource_type", "resource_id", "action", "success", "security_level", "details"})
	for _, ev := range events {
		_ = writer.Write([]string{
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
		})
	}
	writer.Flush()
}

func (h *Handler) logDenied(r *http.Request, u *authz.UserPermissions, action string) {
	sess := shared.SessionFromContext(r.Context())
	var sessionID string
	if sess != nil {
		sessionID = sess.ID
	}
	h.audit.Log(r.Context(), u, audit.Entry{
		Type:         audit.EventUnauthorizedAccess,
		Action:       action,
		Success:      false,
		ErrorMessage: "insufficient permissions",
	}, audit.MetaFromRequest(r, sessionID))
}

func parseFilter(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	f := audit.Filter{
		Type:         audit.EventType(strings.TrimSpace(q.Get("event_type"))),
		UserID:       strings.TrimSpace(q.Get("user_id")),
		ResourceType: strings.TrimSpace(q.Get("resource_type")),
		ResourceID:   strings.TrimSpace(q.Get("resource_id")),
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return audit.Filter{}, err
		}
		f.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return audit.Filter{}, err
		}
		f.To = t
	}
	return f, nil
}
