package hotlists

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/benchdesk/benchdesk/internal/audit"
	"github.com/benchdesk/benchdesk/internal/platform/httpx"
	"github.com/benchdesk/benchdesk/internal/shared"
)

// Handler serves the hotlist API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	audit     *audit.Logger
	validator *validator.Validate
}

// NewHandler constructs the hotlist handler.
func NewHandler(logger *slog.Logger, service *Service, auditLogger *audit.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		audit:     auditLogger,
		validator: validator.New(),
	}
}

type hotlistRequest struct {
	Name        string   `json:"name" validate:"required"`
	AccountID   string   `json:"account_id" validate:"required"`
	Note        string   `json:"note"`
	ResourceIDs []string `json:"resource_ids"`
}

type hotlistUpdateRequest struct {
	Name        string   `json:"name" validate:"required"`
	Note        string   `json:"note"`
	ResourceIDs []string `json:"resource_ids"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	u := shared.UserFromContext(r.Context())
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}
	filters := ListFilters{
		AccountID: q.Get("account_id"),
		Search:    q.Get("search"),
		Page:      page,
		Limit:     limit,
	}

	list, pagination, err := h.service.List(r.Context(), u, filters)
	if err != nil {
		h.logger.Error("list hotlists", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"hotlists":   list,
		"pagination": pagination,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	u := shared.UserFromContext(r.Context())
	hl, err := h.service.Get(r.Context(), u, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, hl)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	u := shared.UserFromContext(r.Context())
	var req hotlistRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	hl, err := h.service.Create(r.Context(), u, Hotlist{
		Name:        req.Name,
		AccountID:   req.AccountID,
		Note:        req.Note,
		ResourceIDs: req.ResourceIDs,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.record(r, audit.Entry{
		Type:         audit.EventRecordCreate,
		Action:       "hotlists.create",
		ResourceType: "hotlists",
		ResourceID:   hl.ID,
		Success:      true,
	})
	httpx.JSON(w, http.StatusCreated, hl)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	u := shared.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req hotlistUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	hl, err := h.service.Update(r.Context(), u, id, Hotlist{
		Name:        req.Name,
		Note:        req.Note,
		ResourceIDs: req.ResourceIDs,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.record(r, audit.Entry{
		Type:         audit.EventRecordUpdate,
		Action:       "hotlists.update",
		ResourceType: "hotlists",
		ResourceID:   id,
		Success:      true,
	})
	httpx.JSON(w, http.StatusOK, hl)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	u := shared.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), u, id); err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.record(r, audit.Entry{
		Type:         audit.EventRecordDelete,
		Action:       "hotlists.delete",
		ResourceType: "hotlists",
		ResourceID:   id,
		Success:      true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) record(r *http.Request, entry audit.Entry) {
	if h.audit == nil {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	var sessionID string
	if sess != nil {
		sessionID = sess.ID
	}
	h.audit.Log(r.Context(), shared.UserFromContext(r.Context()), entry, audit.MetaFromRequest(r, sessionID))
}
