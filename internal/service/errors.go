package service

import (
	"errors"
	"fmt"

	"github.com/ahmedharby13/Evouqe-Project/internal/repository"
)

var (
	ErrAccountNotFound   = repository.ErrAccountNotFound
	ErrEmailTaken        = repository.ErrEmailTaken
	ErrProductNotFound   = repository.ErrProductNotFound
	ErrOrderNotFound     = repository.ErrOrderNotFound
	ErrInsufficientStock = repository.ErrInsufficientStock

	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrSizeUnavailable    = errors.New("size not available")
	ErrPriceMismatch      = errors.New("price has changed")
	ErrTotalMismatch      = errors.New("order total does not match")
	ErrEmptyOrder         = errors.New("no items to order")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("please verify your email before logging in")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTooManyImages      = errors.New("too many images")
)

// ProviderError reports a failed call to a third-party provider. The
// message shown to clients names the provider only; Err is for the logs.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider request failed", e.Provider)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func providerError(provider string, err error) error {
	return &ProviderError{Provider: provider, Err: err}
}
