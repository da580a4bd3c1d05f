package report

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stockbook-app/stockbook/internal/products"
)

// Handler manages report endpoints.
type Handler struct {
	client   *Client
	products *products.Service
	logger   *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, productService *products.Service, logger *slog.Logger) *Handler {
	return &Handler{client: client, products: productService, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/products.pdf", h.productList)
	r.Get("/products/{code}/history.pdf", h.priceHistory)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) productList(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("archived") == "true"

	list, err := h.products.Load(r.Context())
	if err != nil {
		h.logger.Error("load products for report", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	html, err := BuildProductListHTML(list, includeArchived, time.Now().UTC())
	if err != nil {
		h.logger.Error("build product list html", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	pdf, err := h.client.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("render product list pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=products.pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) priceHistory(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	entries, err := h.products.PriceHistory(r.Context(), code)
	if err != nil {
		h.logger.Error("load price history for report", slog.String("code", code), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if len(entries) == 0 {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	html, err := BuildPriceHistoryHTML(code, entries, time.Now().UTC())
	if err != nil {
		h.logger.Error("build price history html", slog.String("code", code), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	pdf, err := h.client.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("render price history pdf", slog.String("code", code), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename="+code+"-history.pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
