package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/internal/events"
	"github.com/ahmedharby13/Evouqe-Project/internal/payment"
	"github.com/ahmedharby13/Evouqe-Project/internal/repository"
)

type OrderItemInput struct {
	ProductID string
	Size      string
	Quantity  int
	// Price is the unit price the client saw; nil skips the check.
	Price *domain.Money
}

type PlaceOrderInput struct {
	AccountID string
	Items     []OrderItemInput
	// Amount is the total the client expects to pay, delivery included.
	Amount  domain.Money
	Address domain.Address
}

type OrderConfig struct {
	DeliveryFee domain.Money
	FrontendURL string
}

type cartClearer interface {
	Clear(ctx context.Context, accountID string) error
}

type productListInvalidator interface {
	InvalidateList(ctx context.Context)
}

type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	carts    cartClearer
	catalog  productListInvalidator
	payments PaymentGateway
	events   EventPublisher
	stock    *stockReserver
	cfg      OrderConfig
	log      *slog.Logger
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository,
	carts cartClearer, catalog productListInvalidator, payments PaymentGateway, publisher EventPublisher,
	cfg OrderConfig, log *slog.Logger) *OrderService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OrderService{
		orders:   orders,
		products: products,
		carts:    carts,
		catalog:  catalog,
		payments: payments,
		events:   publisher,
		stock:    &stockReserver{products: products, log: log},
		cfg:      cfg,
		log:      log,
	}
}

// PlaceCOD validates the order against the live catalog, takes the stock,
// stores the order and empties the cart.
func (s *OrderService) PlaceCOD(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	order, err := s.buildOrder(ctx, in, domain.PaymentCOD)
	if err != nil {
		return nil, err
	}

	if err := s.stock.reserve(ctx, order.Items); err != nil {
		return nil, err
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.stock.release(ctx, order.Items)
		return nil, err
	}

	s.afterStockChange(ctx, order.UserID)
	s.log.InfoContext(ctx, "order placed", "order_id", order.ID, "payment_method", order.PaymentMethod, "amount", order.Amount.String())
	s.events.Publish(ctx, events.NewOrderEvent(events.OrderPlaced, order))
	return order, nil
}

// PlaceStripe stores an unpaid order and opens a checkout session for it.
// Stock and cart are left alone until VerifyStripe sees the payment.
func (s *OrderService) PlaceStripe(ctx context.Context, in PlaceOrderInput) (*domain.Order, string, error) {
	order, err := s.buildOrder(ctx, in, domain.PaymentStripe)
	if err != nil {
		return nil, "", err
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, "", err
	}

	session, err := s.payments.CreateSession(ctx, payment.SessionRequest{
		OrderID:     order.ID,
		Items:       order.Items,
		DeliveryFee: order.DeliveryFee,
		SuccessURL:  s.verifyURL(order.ID, true),
		CancelURL:   s.verifyURL(order.ID, false),
	})
	if err != nil {
		s.discardOrder(ctx, order.ID)
		s.log.ErrorContext(ctx, "checkout session creation failed", "order_id", order.ID, "error", err)
		return nil, "", providerError("payment", err)
	}

	if err := s.orders.SetSessionID(ctx, order.ID, session.ID); err != nil {
		s.discardOrder(ctx, order.ID)
		return nil, "", err
	}
	order.SessionID = session.ID

	s.log.InfoContext(ctx, "order awaiting payment", "order_id", order.ID, "amount", order.Amount.String())
	s.events.Publish(ctx, events.NewOrderEvent(events.OrderPlaced, order))
	return order, session.URL, nil
}

// VerifyStripe asks the provider whether the order's session was paid.
// Paid: the order is marked paid, stock is taken and the cart emptied, once
// no matter how often this is called. Not paid: the order is deleted.
func (s *OrderService) VerifyStripe(ctx context.Context, accountID, orderID string) (bool, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if order.UserID != accountID {
		return false, ErrOrderNotFound
	}
	if order.PaymentMethod != domain.PaymentStripe {
		return false, fmt.Errorf("%w: order is not a card payment", ErrInvalidInput)
	}
	if order.Payment {
		return true, nil
	}

	paid := false
	if order.SessionID != "" {
		session, err := s.payments.GetSession(ctx, order.SessionID)
		if err != nil {
			s.log.ErrorContext(ctx, "checkout session lookup failed", "order_id", order.ID, "error", err)
			return false, providerError("payment", err)
		}
		paid = session.Paid
	}

	if !paid {
		if err := s.orders.Delete(ctx, order.ID); err != nil && !errors.Is(err, repository.ErrOrderNotFound) {
			return false, err
		}
		s.log.InfoContext(ctx, "unpaid order discarded", "order_id", order.ID)
		return false, nil
	}

	changed, err := s.orders.MarkPaid(ctx, order.ID)
	if err != nil {
		return false, err
	}
	if !changed {
		return true, nil
	}
	order.Payment = true

	if err := s.stock.reserve(ctx, order.Items); err != nil {
		// The customer has paid; the order stands and an admin settles it.
		s.log.ErrorContext(ctx, "paid order could not take stock", "order_id", order.ID, "error", err)
	}
	s.afterStockChange(ctx, order.UserID)
	s.log.InfoContext(ctx, "order paid", "order_id", order.ID)
	s.events.Publish(ctx, events.NewOrderEvent(events.OrderPaid, order))
	return true, nil
}

func (s *OrderService) UserOrders(ctx context.Context, accountID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, accountID)
}

func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListAll(ctx)
}

// UpdateStatus sets any status of the enumeration; transitions are not
// restricted.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "order status updated", "order_id", orderID, "status", status.String())
	s.events.Publish(ctx, events.NewOrderEvent(events.OrderStatusChanged, order))
	return order, nil
}

// buildOrder checks every line against the current catalog and recomputes
// the total. Nothing is written.
func (s *OrderService) buildOrder(ctx context.Context, in PlaceOrderInput, method domain.PaymentMethod) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	ids := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	demand := make(map[string]int, len(products))
	items := make([]domain.LineItem, 0, len(in.Items))
	var subtotal domain.Money
	for _, it := range in.Items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidQuantity, p.Name)
		}
		if !p.HasSize(it.Size) {
			return nil, fmt.Errorf("%w: %s has no size %q", ErrSizeUnavailable, p.Name, it.Size)
		}
		if it.Price != nil && *it.Price != p.Price {
			return nil, fmt.Errorf("%w: %s now costs %s", ErrPriceMismatch, p.Name, p.Price)
		}
		demand[p.ID] += it.Quantity
		if demand[p.ID] > p.Stock {
			return nil, fmt.Errorf("%w: only %d of %s left", ErrInsufficientStock, p.Stock, p.Name)
		}

		var image string
		if len(p.Images) > 0 {
			image = p.Images[0].URL
		}
		li := domain.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Image:     image,
		}
		items = append(items, li)
		subtotal += li.Subtotal()
	}

	total := subtotal + s.cfg.DeliveryFee
	if total != in.Amount {
		return nil, fmt.Errorf("%w: expected %s", ErrTotalMismatch, total)
	}

	return &domain.Order{
		UserID:        in.AccountID,
		Items:         items,
		Amount:        total,
		DeliveryFee:   s.cfg.DeliveryFee,
		Address:       in.Address,
		PaymentMethod: method,
		Payment:       false,
		Status:        domain.OrderStatusPlaced,
	}, nil
}

func (s *OrderService) afterStockChange(ctx context.Context, accountID string) {
	if err := s.carts.Clear(ctx, accountID); err != nil {
		s.log.ErrorContext(ctx, "failed to clear cart after order", "account_id", accountID, "error", err)
	}
	s.catalog.InvalidateList(ctx)
}

func (s *OrderService) discardOrder(ctx context.Context, orderID string) {
	if err := s.orders.Delete(context.WithoutCancel(ctx), orderID); err != nil {
		s.log.ErrorContext(ctx, "failed to delete order", "order_id", orderID, "error", err)
	}
}

func (s *OrderService) verifyURL(orderID string, success bool) string {
	q := url.Values{}
	q.Set("success", fmt.Sprint(success))
	q.Set("orderId", orderID)
	return s.cfg.FrontendURL + "/verify?" + q.Encode()
}
