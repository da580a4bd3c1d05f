package users

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockbook-app/stockbook/internal/auth"
	"github.com/stockbook-app/stockbook/internal/perms"
	"github.com/stockbook-app/stockbook/internal/platform/httpx"
	"github.com/stockbook-app/stockbook/internal/shared"
)

// Handler wires the admin-only user administration endpoints. The whole
// subtree is mounted behind RequireAdmin.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	authService *auth.Service
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authService *auth.Service) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		authService: authService,
		validator:   validator.New(),
	}
}

// MountRoutes registers user administration routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}/role", h.setRole)
	r.Put("/{id}/permissions", h.setFlags)
}

type createRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": accounts})
}

// create provisions an account on behalf of an admin; it goes through the
// same registration path as self sign-up.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err))
		return
	}
	profile, err := h.authService.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": profile.ID, "email": profile.Email})
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err))
		return
	}
	actor, _ := perms.ActorFromContext(r.Context())
	if err := h.service.SetRole(r.Context(), actor.UserID, chi.URLParam(r, "id"), req.Role); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setFlags(w http.ResponseWriter, r *http.Request) {
	var req Flags
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", shared.ErrValidation))
		return
	}
	actor, _ := perms.ActorFromContext(r.Context())
	if err := h.service.SetFlags(r.Context(), actor.UserID, chi.URLParam(r, "id"), req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
