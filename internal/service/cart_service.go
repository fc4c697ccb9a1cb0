package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmedharby13/Evouqe-Project/internal/cache"
	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/internal/repository"
	"golang.org/x/sync/singleflight"
)

// Reasons reported for client cart entries skipped by Merge.
const (
	ReasonProductNotFound   = "Product not found"
	ReasonSizeUnavailable   = "Size not available"
	ReasonInvalidQuantity   = "Invalid quantity"
	ReasonInsufficientStock = "Insufficient stock"
)

type IgnoredItem struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	cache    cache.CartCache
	log      *slog.Logger
	sfg      singleflight.Group // Prevents cache stampede
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, cache cache.CartCache, log *slog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		cache:    cache,
		log:      log,
	}
}

func (s *CartService) Get(ctx context.Context, accountID string) (domain.Cart, error) {
	v, err, _ := s.sfg.Do(accountID, func() (interface{}, error) {
		cart, err := s.cache.GetCart(ctx, accountID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "cart cache get failed", "error", err)
		}

		cart, err = s.carts.GetCart(ctx, accountID)
		if err != nil {
			return nil, err
		}

		if errSet := s.cache.SetCart(ctx, accountID, cart); errSet != nil {
			s.log.WarnContext(ctx, "cart cache set failed", "error", errSet)
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing a flight must not share the map
	return v.(domain.Cart).Clone(), nil
}

// Add puts qty more of (productID, size) in the cart. The quantity already
// held for that size plus qty must not exceed the product's stock.
func (s *CartService) Add(ctx context.Context, accountID, productID, size string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	product, err := s.availableProduct(ctx, productID, size)
	if err != nil {
		return err
	}

	cart, err := s.carts.GetCart(ctx, accountID)
	if err != nil {
		return err
	}
	if cart.Quantity(productID, size)+qty > product.Stock {
		return fmt.Errorf("%w: only %d of %s available", ErrInsufficientStock, product.Stock, product.Name)
	}

	if err := s.carts.IncrementCartItem(ctx, accountID, productID, size, qty); err != nil {
		s.log.ErrorContext(ctx, "cart add failed", "error", err)
		return err
	}

	s.invalidate(accountID)
	return nil
}

// Update sets the quantity of (productID, size); zero removes the entry.
func (s *CartService) Update(ctx context.Context, accountID, productID, size string, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if qty == 0 {
		return s.Remove(ctx, accountID, productID, size)
	}

	product, err := s.availableProduct(ctx, productID, size)
	if err != nil {
		return err
	}
	if qty > product.Stock {
		return fmt.Errorf("%w: only %d of %s available", ErrInsufficientStock, product.Stock, product.Name)
	}

	if err := s.carts.SetCartItem(ctx, accountID, productID, size, qty); err != nil {
		s.log.ErrorContext(ctx, "cart update failed", "error", err)
		return err
	}

	s.invalidate(accountID)
	return nil
}

func (s *CartService) Remove(ctx context.Context, accountID, productID, size string) error {
	if err := s.carts.RemoveCartItem(ctx, accountID, productID, size); err != nil {
		s.log.ErrorContext(ctx, "cart remove failed", "error", err)
		return err
	}

	s.invalidate(accountID)
	return nil
}

func (s *CartService) Clear(ctx context.Context, accountID string) error {
	if err := s.carts.ClearCart(ctx, accountID); err != nil {
		s.log.ErrorContext(ctx, "cart clear failed", "error", err)
		return err
	}

	s.invalidate(accountID)
	return nil
}

// Merge folds a cart kept by the client (e.g. while logged out) into the
// stored cart. Each entry is checked on its own against the live catalog;
// entries that fail are returned as ignored and never abort the rest.
// Every quantity in the result, merged or already stored, is capped at the
// product's live stock; stored entries for removed products are dropped.
func (s *CartService) Merge(ctx context.Context, accountID string, incoming domain.Cart) (domain.Cart, []IgnoredItem, error) {
	current, err := s.carts.GetCart(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	products, err := s.products.GetMany(ctx, unionIDs(current, incoming))
	if err != nil {
		return nil, nil, err
	}

	merged := current.Clone()
	ignored := []IgnoredItem{}
	for _, pid := range incoming.ProductIDs() {
		product := products[pid]
		for _, size := range incoming.Sizes(pid) {
			qty := incoming[pid][size]

			reason := mergeRejection(product, size, qty)
			if reason != "" {
				ignored = append(ignored, IgnoredItem{ProductID: pid, Size: size, Quantity: qty, Reason: reason})
				continue
			}

			total := merged.Quantity(pid, size) + qty
			if total > product.Stock {
				total = product.Stock
			}
			merged.Set(pid, size, total)
		}
	}
	if clamped := clampToStock(merged, products); clamped > 0 {
		s.log.InfoContext(ctx, "cart merge trimmed stored items", "count", clamped)
	}

	if err := s.carts.ReplaceCart(ctx, accountID, merged); err != nil {
		s.log.ErrorContext(ctx, "cart merge failed", "error", err)
		return nil, nil, err
	}
	s.invalidate(accountID)

	if len(ignored) > 0 {
		s.log.InfoContext(ctx, "cart merge ignored items", "count", len(ignored))
	}
	return merged, ignored, nil
}

// clampToStock caps every entry of cart at live stock and returns how many
// entries changed.
func clampToStock(cart domain.Cart, products map[string]*domain.Product) int {
	changed := 0
	for _, pid := range cart.ProductIDs() {
		product := products[pid]
		for _, size := range cart.Sizes(pid) {
			qty := cart.Quantity(pid, size)
			switch {
			case product == nil:
				cart.Remove(pid, size)
			case qty > product.Stock:
				cart.Set(pid, size, product.Stock)
			default:
				continue
			}
			changed++
		}
	}
	return changed
}

func unionIDs(carts ...domain.Cart) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, c := range carts {
		for _, pid := range c.ProductIDs() {
			if _, ok := seen[pid]; ok {
				continue
			}
			seen[pid] = struct{}{}
			ids = append(ids, pid)
		}
	}
	return ids
}

func mergeRejection(product *domain.Product, size string, qty int) string {
	switch {
	case product == nil:
		return ReasonProductNotFound
	case !product.HasSize(size):
		return ReasonSizeUnavailable
	case qty <= 0:
		return ReasonInvalidQuantity
	case qty > product.Stock:
		return ReasonInsufficientStock
	}
	return ""
}

func (s *CartService) availableProduct(ctx context.Context, productID, size string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.HasSize(size) {
		return nil, fmt.Errorf("%w: %s has no size %q", ErrSizeUnavailable, product.Name, size)
	}
	return product, nil
}

func (s *CartService) invalidate(accountID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.DeleteCart(ctx, accountID); err != nil {
		s.log.Warn("cart cache invalidate failed", "account_id", accountID, "error", err)
	}
}
