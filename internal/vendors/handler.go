package vendors

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

// Handler serves the vendor directory API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	audit     *audit.Logger
	validator *validator.Validate
}

// NewHandler constructs the vendor handler.
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

type vendorRequest struct {
	Name              string  `json:"name" validate:"required"`
	Type              string  `json:"type" validate:"required"`
	POCName           string  `json:"poc_name"`
	POCEmail          string  `json:"poc_email" validate:"omitempty,email"`
	POCRole           string  `json:"poc_role"`
	CommissionPercent float64 `json:"commission_percent" validate:"gte=0,lte=100"`
	Active            bool    `json:"active"`
}

type commissionRequest struct {
	Percent float64 `json:"percent" validate:"gte=0,lte=100"`
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
		Search: q.Get("search"),
		Type:   q.Get("type"),
		Page:   page,
		Limit:  limit,
	}

	list, pagination, err := h.service.List(r.Context(), u, filters)
	if err != nil {
		h.logger.Error("list vendors", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"vendors":    list,
		"pagination": pagination,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	u := shared.UserFromContext(r.Context())
	v, err := h.service.Get(r.Context(), u, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	u := shared.UserFromContext(r.Context())
	var req vendorRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	v, err := h.service.Create(r.Context(), u, Vendor{
		Name:              req.Name,
		Type:              req.Type,
		POCName:           req.POCName,
		POCEmail:          req.POCEmail,
		POCRole:           req.POCRole,
		CommissionPercent: req.CommissionPercent,
		Active:            req.Active,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.record(r, audit.Entry{
		Type:         audit.EventRecordCreate,
		Action:       "vendor.create",
		ResourceType: "vendor",
		ResourceID:   v.ID,
		Success:      true,
	})
	httpx.JSON(w, http.StatusCreated, v)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	u := shared.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req vendorRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	v, err := h.service.Update(r.Context(), u, id, Vendor{
		Name:     req.Name,
		Type:     req.Type,
		POCName:  req.POCName,
		POCEmail: req.POCEmail,
		POCRole:  req.POCRole,
		Active:   req.Active,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.record(r, audit.Entry{
		Type:         audit.EventRecordUpdate,
		Action:       "vendor.update",
		ResourceType: "vendor",
		ResourceID:   id,
		Success:      true,
	})
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) handleCommission(w http.ResponseWriter, r *http.Request) {
	u := shared.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req commissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	v, err := h.service.SetCommission(r.Context(), u, id, req.Percent)
	if err != nil {
		h.record(r, audit.Entry{
			Type:         audit.EventSettingsChange,
			Action:       "vendor.commission",
			ResourceType: "vendor",
			ResourceID:   id,
			Success:      false,
			ErrorMessage: err.Error(),
		})
		httpx.RespondError(w, err)
		return
	}

	h.record(r, audit.Entry{
		Type:         audit.EventSettingsChange,
		Action:       "vendor.commission",
		ResourceType: "vendor",
		ResourceID:   id,
		Details:      "commission set to " + strconv.FormatFloat(req.Percent, 'f', 2, 64),
		Success:      true,
	})
	httpx.JSON(w, http.StatusOK, v)
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
		Action:       "vendor.delete",
		ResourceType: "vendor",
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
