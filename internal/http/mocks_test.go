package http

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockAccountService struct {
	session    *service.Session
	account    *domain.Account
	err        error
	registered []service.RegisterInput
	loginEmail string
	verified   string
}

func (m *mockAccountService) Register(_ context.Context, in service.RegisterInput) (*domain.Account, error) {
	m.registered = append(m.registered, in)
	return m.account, m.err
}

func (m *mockAccountService) VerifyEmail(_ context.Context, token string) error {
	m.verified = token
	return m.err
}

func (m *mockAccountService) Login(_ context.Context, email, _ string) (*service.Session, error) {
	m.loginEmail = email
	return m.session, m.err
}

func (m *mockAccountService) AdminLogin(_ context.Context, email, _ string) (*service.Session, error) {
	m.loginEmail = email
	return m.session, m.err
}

func (m *mockAccountService) ForgotPassword(context.Context, string) error { return m.err }

func (m *mockAccountService) ResetPassword(context.Context, string, string) error { return m.err }

func (m *mockAccountService) GoogleLogin(context.Context, string) (*service.Session, error) {
	return m.session, m.err
}

func (m *mockAccountService) Profile(_ context.Context, id string) (*domain.Account, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Account{ID: id, Name: "Ann"}, nil
}

type mockCatalog struct {
	products []domain.Product
	created  *service.NewProduct
	updated  domain.ProductUpdate
	removed  string
	review   struct {
		accountID, productID string
		rating               int
	}
	imageNames []string
	err        error
}

func (m *mockCatalog) List(context.Context) ([]domain.Product, error) { return m.products, m.err }

func (m *mockCatalog) Get(_ context.Context, id string) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, service.ErrProductNotFound
}

func (m *mockCatalog) Create(_ context.Context, in service.NewProduct) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = &in
	for _, img := range in.Images {
		data, _ := io.ReadAll(img.Content)
		m.imageNames = append(m.imageNames, img.Filename+":"+string(data))
	}
	return &domain.Product{ID: "new", Name: in.Name, Price: in.Price, Sizes: in.Sizes}, nil
}

func (m *mockCatalog) Update(_ context.Context, id string, u domain.ProductUpdate) (*domain.Product, error) {
	m.updated = u
	return &domain.Product{ID: id}, m.err
}

func (m *mockCatalog) Remove(_ context.Context, id string) error {
	m.removed = id
	return m.err
}

func (m *mockCatalog) AddReview(_ context.Context, accountID, productID string, rating int, _ string) (*domain.Product, error) {
	m.review.accountID, m.review.productID, m.review.rating = accountID, productID, rating
	return &domain.Product{ID: productID}, m.err
}

type mockCart struct {
	mu      sync.Mutex
	cart    domain.Cart
	err     error
	ignored []service.IgnoredItem
	calls   []string
}

func (m *mockCart) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockCart) Get(_ context.Context, accountID string) (domain.Cart, error) {
	m.record("get:" + accountID)
	return m.cart, nil
}

func (m *mockCart) Add(_ context.Context, _, productID, size string, qty int) error {
	if m.err != nil {
		return m.err
	}
	m.record("add")
	m.cart.Set(productID, size, m.cart.Quantity(productID, size)+qty)
	return nil
}

func (m *mockCart) Update(_ context.Context, _, productID, size string, qty int) error {
	if m.err != nil {
		return m.err
	}
	m.record("update")
	m.cart.Set(productID, size, qty)
	return nil
}

func (m *mockCart) Remove(_ context.Context, _, productID, size string) error {
	m.record("remove")
	m.cart.Remove(productID, size)
	return m.err
}

func (m *mockCart) Merge(_ context.Context, _ string, incoming domain.Cart) (domain.Cart, []service.IgnoredItem, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	m.record("merge")
	for _, pid := range incoming.ProductIDs() {
		for _, size := range incoming.Sizes(pid) {
			m.cart.Set(pid, size, m.cart.Quantity(pid, size)+incoming[pid][size])
		}
	}
	return m.cart, m.ignored, nil
}

type mockOrders struct {
	placed    *service.PlaceOrderInput
	paid      bool
	status    domain.OrderStatus
	orders    []domain.Order
	err       error
	sessionID string
}

func (m *mockOrders) PlaceCOD(_ context.Context, in service.PlaceOrderInput) (*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.placed = &in
	return &domain.Order{ID: "o1", UserID: in.AccountID, Amount: in.Amount, Status: domain.OrderStatusPlaced}, nil
}

func (m *mockOrders) PlaceStripe(_ context.Context, in service.PlaceOrderInput) (*domain.Order, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	m.placed = &in
	return &domain.Order{ID: "o2"}, "https://checkout.stripe.com/pay/" + m.sessionID, nil
}

func (m *mockOrders) VerifyStripe(context.Context, string, string) (bool, error) {
	return m.paid, m.err
}

func (m *mockOrders) UserOrders(_ context.Context, accountID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == accountID {
			out = append(out, o)
		}
	}
	return out, m.err
}

func (m *mockOrders) ListAll(context.Context) ([]domain.Order, error) { return m.orders, m.err }

func (m *mockOrders) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.status = status
	return &domain.Order{ID: id, Status: status}, nil
}
