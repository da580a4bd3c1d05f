package products

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

// Handler wires HTTP endpoints for the product core.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	perms     perms.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, permsMW perms.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		perms:     permsMW,
		validator: validator.New(),
	}
}

// MountRoutes registers product routes on the provided router. The caller
// wraps the subtree in RequireUser; capability gates sit on each mutation so
// a caller without the flag is rejected before the service runs.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.With(h.perms.Require(perms.CapabilityAdd)).Post("/", h.create)
	r.With(h.perms.Require(perms.CapabilityEdit)).Put("/{code}", h.update)
	r.With(h.perms.Require(perms.CapabilityDelete)).Delete("/{code}", h.softDelete)
	r.With(h.perms.Require(perms.CapabilityDelete)).Post("/{code}/restore", h.restore)
	r.Get("/{code}/history", h.history)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	loaded, err := h.service.Load(r.Context())
	if err != nil {
		h.logger.Error("load products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	query := r.URL.Query().Get("q")
	showArchived := r.URL.Query().Get("archived") == "true"
	httpx.JSON(w, http.StatusOK, listResponse{Products: Filter(loaded, query, showArchived)})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err))
		return
	}
	actor, _ := perms.ActorFromContext(r.Context())
	err := h.service.Add(r.Context(), AddInput{
		Code:        req.Code,
		Description: req.Description,
		Unit:        req.Unit,
		Price:       req.Price,
	}, actor.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.respondReloaded(w, r, http.StatusCreated)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", shared.ErrValidation))
		return
	}
	actor, _ := perms.ActorFromContext(r.Context())
	err := h.service.Update(r.Context(), chi.URLParam(r, "code"), UpdateInput{
		Description: req.Description,
		Unit:        req.Unit,
		Price:       req.Price,
	}, actor.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.respondReloaded(w, r, http.StatusOK)
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := perms.ActorFromContext(r.Context())
	if err := h.service.SoftDelete(r.Context(), chi.URLParam(r, "code"), actor.UserID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.respondReloaded(w, r, http.StatusOK)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	actor, _ := perms.ActorFromContext(r.Context())
	if err := h.service.Restore(r.Context(), chi.URLParam(r, "code"), actor.UserID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.respondReloaded(w, r, http.StatusOK)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	entries, err := h.service.PriceHistory(r.Context(), code)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, historyResponse{ProductCode: code, Entries: entries})
}

// respondReloaded answers a successful mutation with the freshly loaded
// list. Read-after-write consistency comes from re-fetching, never from
// patching a cached copy.
func (h *Handler) respondReloaded(w http.ResponseWriter, r *http.Request, status int) {
	loaded, err := h.service.Load(r.Context())
	if err != nil {
		h.logger.Error("reload products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, status, listResponse{Products: loaded})
}
