package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockbook-app/stockbook/internal/perms"
	"github.com/stockbook-app/stockbook/internal/platform/httpx"
	"github.com/stockbook-app/stockbook/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	resolver       *perms.Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, resolver *perms.Service, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		resolver:       resolver,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/session", h.session)
	r.Post("/login", h.login)
	r.Post("/register", h.register)
	r.Post("/logout", h.logout)
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name"`
}

type identityResponse struct {
	UserID       string              `json:"user_id,omitempty"`
	Email        string              `json:"email,omitempty"`
	FullName     string              `json:"full_name,omitempty"`
	Capabilities *perms.Capabilities `json:"capabilities,omitempty"`
	CSRFToken    string              `json:"csrf_token"`
}

// session reports the current identity and hands out the CSRF token the SPA
// needs for mutating calls. A resumed session belonging to a blocked account
// is terminated here, before any data route can serve it.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	token, _ := h.csrfManager.EnsureToken(r.Context(), sess)

	if sess.User() == "" {
		httpx.JSON(w, http.StatusOK, identityResponse{CSRFToken: token})
		return
	}

	caps, err := h.resolver.Resolve(r.Context(), sess.User())
	if err != nil {
		h.logger.Error("resolve session capabilities", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if caps.IsBlocked {
		h.sessionManager.Destroy(sess)
		httpx.RespondError(w, shared.ErrBlocked)
		return
	}

	httpx.JSON(w, http.StatusOK, identityResponse{
		UserID:       sess.User(),
		Capabilities: &caps,
		CSRFToken:    token,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", shared.ErrValidation))
		return
	}
	if err := h.validator.StructPartial(req, "Email", "Password"); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err))
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	profile, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	// Blocked accounts never get an authenticated session.
	caps, err := h.resolver.Resolve(r.Context(), profile.ID)
	if err != nil {
		h.logger.Error("resolve login capabilities", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if caps.IsBlocked {
		h.sessionManager.Destroy(sess)
		h.logger.Warn("blocked account login rejected", slog.String("user_id", profile.ID))
		httpx.RespondError(w, shared.ErrBlocked)
		return
	}

	sess.SetUser(profile.ID)
	token, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	httpx.JSON(w, http.StatusOK, identityResponse{
		UserID:       profile.ID,
		Email:        profile.Email,
		FullName:     profile.FullName,
		Capabilities: &caps,
		CSRFToken:    token,
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err))
		return
	}

	profile, err := h.service.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, identityResponse{
		UserID:   profile.ID,
		Email:    profile.Email,
		FullName: profile.FullName,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}
