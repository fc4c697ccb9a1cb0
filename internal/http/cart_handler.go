package http

import (
	"context"
	"net/http"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/internal/service"
)

type CartService interface {
	Get(ctx context.Context, accountID string) (domain.Cart, error)
	Add(ctx context.Context, accountID, productID, size string, qty int) error
	Update(ctx context.Context, accountID, productID, size string, qty int) error
	Remove(ctx context.Context, accountID, productID, size string) error
	Merge(ctx context.Context, accountID string, incoming domain.Cart) (domain.Cart, []service.IgnoredItem, error)
}

type CartHandler struct {
	carts CartService
}

func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type AddItemRequestDTO struct {
	ProductID string `json:"itemId" validate:"required"`
	Size      string `json:"size" validate:"required"`
	// Quantity defaults to 1 when omitted.
	Quantity int `json:"quantity" validate:"gte=0,lte=99"`
}

type UpdateQuantityRequestDTO struct {
	ProductID string `json:"itemId" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=99"`
}

type RemoveItemRequestDTO struct {
	ProductID string `json:"itemId" validate:"required"`
	Size      string `json:"size" validate:"required"`
}

type MergeCartRequestDTO struct {
	Cart domain.Cart `json:"cartData"`
}

type CartResponse struct {
	Success bool        `json:"success"`
	Cart    domain.Cart `json:"cartData"`
}

type MergeCartResponse struct {
	Success bool                  `json:"success"`
	Cart    domain.Cart           `json:"cartData"`
	Ignored []service.IgnoredItem `json:"ignoredItems"`
}

// GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, http.StatusOK)
}

// POST /api/cart/add
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	accountID := accountIDFromContext(r.Context())
	if err := h.carts.Add(r.Context(), accountID, req.ProductID, req.Size, req.Quantity); err != nil {
		handleServiceError(w, r, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

// POST /api/cart/update
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}

	accountID := accountIDFromContext(r.Context())
	if err := h.carts.Update(r.Context(), accountID, req.ProductID, req.Size, req.Quantity); err != nil {
		handleServiceError(w, r, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

// POST /api/cart/remove
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	var req RemoveItemRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}

	accountID := accountIDFromContext(r.Context())
	if err := h.carts.Remove(r.Context(), accountID, req.ProductID, req.Size); err != nil {
		handleServiceError(w, r, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

// POST /api/cart/merge
func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req MergeCartRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Cart == nil {
		req.Cart = domain.Cart{}
	}

	merged, ignored, err := h.carts.Merge(r.Context(), accountIDFromContext(r.Context()), req.Cart)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if ignored == nil {
		ignored = []service.IgnoredItem{}
	}
	respondJSON(w, http.StatusOK, MergeCartResponse{Success: true, Cart: merged, Ignored: ignored})
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, status int) {
	cart, err := h.carts.Get(r.Context(), accountIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if cart == nil {
		cart = domain.Cart{}
	}
	respondJSON(w, status, CartResponse{Success: true, Cart: cart})
}
