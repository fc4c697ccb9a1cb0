package service

import (
	"context"
	"io"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/internal/events"
	"github.com/ahmedharby13/Evouqe-Project/internal/identity"
	"github.com/ahmedharby13/Evouqe-Project/internal/payment"
)

// Consumers define these interfaces; the adapters live in their own packages.

type PaymentGateway interface {
	CreateSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error)
	GetSession(ctx context.Context, id string) (*payment.Session, error)
}

type ImageStore interface {
	Upload(ctx context.Context, name string, r io.Reader) (domain.Image, error)
	Delete(ctx context.Context, publicID string) error
}

type Mailer interface {
	SendVerification(ctx context.Context, to, name, link string) error
	SendPasswordReset(ctx context.Context, to, name, link string) error
}

type IdentityProvider interface {
	Exchange(ctx context.Context, code string) (*identity.Profile, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, evt events.OrderEvent)
}

type TokenIssuer interface {
	IssueAccess(accountID, role string) (string, error)
}
