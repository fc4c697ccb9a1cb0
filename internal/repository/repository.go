package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByVerifyToken(ctx context.Context, token string) (*domain.Account, error)
	GetByResetToken(ctx context.Context, token string) (*domain.Account, error)
	MarkVerified(ctx context.Context, id string) error
	// LinkGoogle marks the account verified through Google and drops any
	// password set before the address was proven.
	LinkGoogle(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error

	CartRepository
}

// CartRepository stores the cart embedded in the account document.
type CartRepository interface {
	GetCart(ctx context.Context, accountID string) (domain.Cart, error)
	IncrementCartItem(ctx context.Context, accountID, productID, size string, delta int) error
	SetCartItem(ctx context.Context, accountID, productID, size string, qty int) error
	RemoveCartItem(ctx context.Context, accountID, productID, size string) error
	ReplaceCart(ctx context.Context, accountID string, cart domain.Cart) error
	ClearCart(ctx context.Context, accountID string) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// GetMany returns the products found, keyed by id. Unknown ids are absent.
	GetMany(ctx context.Context, ids []string) (map[string]*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, id string, update domain.ProductUpdate) (*domain.Product, error)
	// Delete removes the product and returns what was stored.
	Delete(ctx context.Context, id string) (*domain.Product, error)
	AddReview(ctx context.Context, id string, review domain.Review) (*domain.Product, error)
	// DecrementStock subtracts qty only if at least qty is in stock.
	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	SetSessionID(ctx context.Context, id, sessionID string) error
	// MarkPaid flips payment from false to true. It reports false when the
	// order was already paid, so confirmation side effects run once.
	MarkPaid(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}
