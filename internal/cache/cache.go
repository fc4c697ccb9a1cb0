package cache

import (
	"context"
	"errors"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
)

type CartCache interface {
	GetCart(ctx context.Context, accountID string) (domain.Cart, error)
	SetCart(ctx context.Context, accountID string, cart domain.Cart) error
	DeleteCart(ctx context.Context, accountID string) error
}

type ProductCache interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	SetProducts(ctx context.Context, products []domain.Product) error
	InvalidateProducts(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
