// Package payment creates and reads hosted checkout sessions. Card details
// never reach this service; the customer pays on the provider's page and the
// order is confirmed by reading the session back.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/pkg/circuitbreaker"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var ErrNotConfigured = errors.New("payment provider is not configured")

type SessionRequest struct {
	OrderID     string
	Items       []domain.LineItem
	DeliveryFee domain.Money
	SuccessURL  string
	CancelURL   string
}

type Session struct {
	ID   string
	URL  string
	Paid bool
}

type StripeGateway struct {
	api      *client.API
	currency string
	breaker  *circuitbreaker.Breaker
}

func NewStripeGateway(secretKey, currency string, breaker *circuitbreaker.Breaker) *StripeGateway {
	g := &StripeGateway{
		currency: strings.ToLower(currency),
		breaker:  breaker,
	}
	if secretKey != "" {
		g.api = client.New(secretKey, nil)
	}
	return g
}

func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}

	params := g.sessionParams(req)
	params.Context = ctx

	return circuitbreaker.Execute(g.breaker, func() (*Session, error) {
		s, err := g.api.CheckoutSessions.New(params)
		if err != nil {
			return nil, fmt.Errorf("stripe create session: %w", err)
		}
		return toSession(s), nil
	})
}

func (g *StripeGateway) GetSession(ctx context.Context, id string) (*Session, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	return circuitbreaker.Execute(g.breaker, func() (*Session, error) {
		s, err := g.api.CheckoutSessions.Get(id, params)
		if err != nil {
			return nil, fmt.Errorf("stripe get session: %w", err)
		}
		return toSession(s), nil
	})
}

func (g *StripeGateway) sessionParams(req SessionRequest) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items)+1)
	for _, it := range req.Items {
		lineItems = append(lineItems, g.lineItem(fmt.Sprintf("%s (%s)", it.Name, it.Size), it.Price, it.Quantity))
	}
	if req.DeliveryFee > 0 {
		lineItems = append(lineItems, g.lineItem("Delivery Charges", req.DeliveryFee, 1))
	}

	return &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.OrderID),
		LineItems:         lineItems,
		Metadata:          map[string]string{"order_id": req.OrderID},
	}
}

func (g *StripeGateway) lineItem(name string, unit domain.Money, qty int) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String(g.currency),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
			UnitAmount: stripe.Int64(int64(unit)),
		},
		Quantity: stripe.Int64(int64(qty)),
	}
}

func toSession(s *stripe.CheckoutSession) *Session {
	return &Session{
		ID:   s.ID,
		URL:  s.URL,
		Paid: s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
}
