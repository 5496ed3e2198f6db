package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maltedev/price-tracker/internal/domain"
	"github.com/maltedev/price-tracker/internal/scraper"
)

// ProductStore is the read side of the product repository.
type ProductStore interface {
	List(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
}

// ProductTracker starts and pauses tracking of products.
type ProductTracker interface {
	Track(ctx context.Context, rawURL string) (*domain.Product, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.Product, error)
}

// SweepRunner runs one full price check over all active products.
type SweepRunner interface {
	Run(ctx context.Context) error
}

type Handlers struct {
	store   ProductStore
	tracker ProductTracker
	checker SweepRunner
	logger  *slog.Logger
}

func NewHandlers(store ProductStore, tracker ProductTracker, checker SweepRunner, logger *slog.Logger) *Handlers {
	return &Handlers{
		store:   store,
		tracker: tracker,
		checker: checker,
		logger:  logger,
	}
}

// TrackRequest represents the request to start tracking a product
type TrackRequest struct {
	URL string `json:"url"`
}

// ProductResponse is the API shape of a tracked product
type ProductResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	URL          string     `json:"url"`
	Vendor       string     `json:"vendor"`
	CurrentPrice float64    `json:"current_price"`
	Currency     string     `json:"currency"`
	IsAvailable  bool       `json:"is_available"`
	IsActive     bool       `json:"is_active"`
	LastChecked  *time.Time `json:"last_checked,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// SnapshotResponse is one price history entry
type SnapshotResponse struct {
	Price      float64   `json:"price"`
	RecordedAt time.Time `json:"recorded_at"`
}

// TrackProduct handles requests to start tracking a product URL
func (h *Handlers) TrackProduct(w http.ResponseWriter, r *http.Request) {
	var req TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	product, err := h.tracker.Track(r.Context(), req.URL)
	if err != nil {
		h.logger.Error("failed to track product", "url", req.URL, "error", err)
		h.respondError(w, trackStatus(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, toProductResponse(product))
}

// ListProducts handles listing all tracked products
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// GetProduct handles retrieval of a single product
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}

	h.respondJSON(w, http.StatusOK, toProductResponse(product))
}

// GetProductHistory handles retrieval of a product's price history
func (h *Handlers) GetProductHistory(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}

	history := make([]SnapshotResponse, 0, len(product.History))
	for _, snap := range product.History {
		history = append(history, SnapshotResponse{
			Price:      snap.Price,
			RecordedAt: snap.Timestamp,
		})
	}

	h.respondJSON(w, http.StatusOK, history)
}

// PauseProduct disables monitoring for a product
func (h *Handlers) PauseProduct(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

// ResumeProduct re-enables monitoring for a product
func (h *Handlers) ResumeProduct(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// TriggerCheck kicks off a price sweep outside the regular schedule. The
// sweep runs in the background, the request returns immediately.
func (h *Handlers) TriggerCheck(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		if err := h.checker.Run(ctx); err != nil {
			h.logger.Error("manual price check failed", "error", err)
		}
	}()

	h.respondJSON(w, http.StatusAccepted, map[string]string{"status": "check started"})
}

func (h *Handlers) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id := chi.URLParam(r, "productID")

	product, err := h.tracker.SetActive(r.Context(), id, active)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("failed to update product state", "product_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	h.respondJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handlers) loadProduct(w http.ResponseWriter, r *http.Request) (*domain.Product, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		h.respondError(w, http.StatusNotFound, "product not found")
		return nil, false
	}

	product, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get product", "product_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get product")
		return nil, false
	}
	if product == nil {
		h.respondError(w, http.StatusNotFound, "product not found")
		return nil, false
	}

	return product, true
}

func trackStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateURL):
		return http.StatusConflict
	case errors.Is(err, scraper.ErrUnsupportedVendor), errors.Is(err, domain.ErrInvalidPrice):
		return http.StatusUnprocessableEntity
	case errors.Is(err, scraper.ErrEmptyContent):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		URL:          p.URL,
		Vendor:       p.Vendor,
		CurrentPrice: p.CurrentPrice,
		Currency:     p.Currency,
		IsAvailable:  p.IsAvailable,
		IsActive:     p.IsActive,
		LastChecked:  p.LastChecked,
		CreatedAt:    p.CreatedAt,
	}
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
