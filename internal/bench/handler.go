package bench

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/benchdesk/benchdesk/internal/audit"
	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/platform/httpx"
	"github.com/benchdesk/benchdesk/internal/shared"
)

// Handler serves the bench API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	audit     *audit.Logger
	validator *validator.Validate
}

// NewHandler constructs the bench handler.
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

type updateRequest struct {
	Title         string    `json:"title"`
	Skills        []string  `json:"skills"`
	Status        string    `json:"status" validate:"required"`
	AvailableFrom time.Time `json:"available_from"`
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
		Status: q.Get("status"),
		Skill:  q.Get("skill"),
		Search: q.Get("search"),
		Page:   page,
		Limit:  limit,
	}

	list, pagination, err := h.service.List(r.Context(), u, filters)
	if err != nil {
		h.logger.Error("list bench resources", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"resources":  list,
		"pagination": pagination,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	u := shared.UserFromContext(r.Context())
	res, err := h.service.Get(r.Context(), u, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	u := shared.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	res, err := h.service.Update(r.Context(), u, id, Resource{
		Title:         req.Title,
		Skills:        req.Skills,
		Status:        req.Status,
		AvailableFrom: req.AvailableFrom,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.record(r, audit.Entry{
		Type:         audit.EventRecordUpdate,
		Action:       "bench_resources.update",
		ResourceType: "bench_resources",
		ResourceID:   id,
		Success:      true,
	})
	httpx.JSON(w, http.StatusOK, res)
}

// resourceContext loads the target row so the endpoint guard can
// evaluate conditional grants and ownership before the handler runs.
func (h *Handler) resourceContext(r *http.Request) (*authz.Context, error) {
	res, err := h.service.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	pc := res.AuthzContext()
	return &pc, nil
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
