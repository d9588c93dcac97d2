package identity

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/benchdesk/benchdesk/internal/audit"
	"github.com/benchdesk/benchdesk/internal/platform/httpx"
	"github.com/benchdesk/benchdesk/internal/shared"
)

// Handler exposes login/logout endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	sessions  *shared.SessionManager
	audit     *audit.Logger
	validator *validator.Validate
}

// NewHandler constructs the identity handler.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, auditLogger *audit.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		sessions:  sessions,
		audit:     auditLogger,
		validator: validator.New(),
	}
}

// Routes mounts the auth endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	meta := requestMeta(r, sess)

	acc, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.audit.Log(r.Context(), nil, audit.Entry{
			Type:         audit.EventLogin,
			Action:       "auth.login",
			Details:      "login rejected for " + req.Email,
			Success:      false,
			ErrorMessage: "invalid credentials",
		}, meta)
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}

	u, err := h.service.InitializePermissions(r.Context(), acc.ID)
	if err != nil {
		h.logger.Error("initialize permissions", slog.String("user_id", acc.ID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	if sess != nil {
		sess.SetUser(acc.ID)
	}
	h.audit.Log(r.Context(), u, audit.Entry{
		Type:    audit.EventLogin,
		Action:  "auth.login",
		Success: true,
	}, meta)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"user_id": acc.ID,
		"roles":   u.Roles,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	u := shared.UserFromContext(r.Context())
	meta := requestMeta(r, sess)

	if u != nil {
		if err := h.service.ClearPermissions(r.Context(), u.UserID); err != nil {
			h.logger.Warn("clear permissions", slog.Any("error", err))
		}
	}
	if sess != nil {
		h.sessions.Destroy(sess)
	}
	h.audit.Log(r.Context(), u, audit.Entry{
		Type:    audit.EventLogout,
		Action:  "auth.logout",
		Success: true,
	}, meta)

	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func requestMeta(r *http.Request, sess *shared.Session) audit.RequestMeta {
	var sessionID string
	if sess != nil {
		sessionID = sess.ID
	}
	return audit.MetaFromRequest(r, sessionID)
}
