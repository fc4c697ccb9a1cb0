package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmedharby13/Evouqe-Project/internal/cache"
	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/internal/events"
	"github.com/ahmedharby13/Evouqe-Project/internal/identity"
	"github.com/ahmedharby13/Evouqe-Project/internal/payment"
	"github.com/ahmedharby13/Evouqe-Project/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockAccounts is an in-memory AccountRepository.
type mockAccounts struct {
	m         sync.RWMutex
	accounts  map[string]*domain.Account
	nextID    int
	err       error
	deleteErr error
	deleted   []string
}

func newMockAccounts() *mockAccounts {
	return &mockAccounts{accounts: map[string]*domain.Account{}}
}

func copyAccount(a *domain.Account) *domain.Account {
	cp := *a
	cp.Cart = a.Cart.Clone()
	return &cp
}

func (m *mockAccounts) add(a *domain.Account) *domain.Account {
	m.m.Lock()
	defer m.m.Unlock()
	if a.ID == "" {
		m.nextID++
		a.ID = fmt.Sprintf("acc-%d", m.nextID)
	}
	if a.Cart == nil {
		a.Cart = domain.Cart{}
	}
	m.accounts[a.ID] = copyAccount(a)
	return a
}

func (m *mockAccounts) Create(_ context.Context, a *domain.Account) error {
	if m.err != nil {
		return m.err
	}
	m.m.RLock()
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			m.m.RUnlock()
			return repository.ErrEmailTaken
		}
	}
	m.m.RUnlock()
	m.add(a)
	return nil
}

func (m *mockAccounts) find(match func(*domain.Account) bool) (*domain.Account, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, a := range m.accounts {
		if match(a) {
			return copyAccount(a), nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (m *mockAccounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	return m.find(func(a *domain.Account) bool { return a.ID == id })
}

func (m *mockAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	return m.find(func(a *domain.Account) bool { return a.Email == email })
}

func (m *mockAccounts) GetByVerifyToken(_ context.Context, token string) (*domain.Account, error) {
	return m.find(func(a *domain.Account) bool { return token != "" && a.VerifyToken == token })
}

func (m *mockAccounts) GetByResetToken(_ context.Context, token string) (*domain.Account, error) {
	return m.find(func(a *domain.Account) bool { return token != "" && a.ResetToken == token })
}

func (m *mockAccounts) mutate(id string, fn func(*domain.Account)) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	a, ok := m.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	fn(a)
	return nil
}

func (m *mockAccounts) MarkVerified(_ context.Context, id string) error {
	return m.mutate(id, func(a *domain.Account) {
		a.Verified = true
		a.VerifyToken = ""
	})
}

func (m *mockAccounts) LinkGoogle(_ context.Context, id string) error {
	return m.mutate(id, func(a *domain.Account) {
		a.Verified = true
		a.Provider = domain.ProviderGoogle
		a.PasswordHash = ""
		a.VerifyToken = ""
		a.ResetToken = ""
	})
}

func (m *mockAccounts) SetResetToken(_ context.Context, id, token string, expires time.Time) error {
	return m.mutate(id, func(a *domain.Account) {
		a.ResetToken = token
		a.ResetExpires = expires
	})
}

func (m *mockAccounts) UpdatePassword(_ context.Context, id, hash string) error {
	return m.mutate(id, func(a *domain.Account) {
		a.PasswordHash = hash
		a.ResetToken = ""
	})
}

func (m *mockAccounts) Delete(_ context.Context, id string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.accounts[id]; !ok {
		return repository.ErrAccountNotFound
	}
	delete(m.accounts, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockAccounts) GetCart(_ context.Context, id string) (domain.Cart, error) {
	a, err := m.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	return a.Cart, nil
}

func (m *mockAccounts) IncrementCartItem(_ context.Context, id, pid, size string, delta int) error {
	return m.mutate(id, func(a *domain.Account) {
		a.Cart.Set(pid, size, a.Cart.Quantity(pid, size)+delta)
	})
}

func (m *mockAccounts) SetCartItem(_ context.Context, id, pid, size string, qty int) error {
	return m.mutate(id, func(a *domain.Account) { a.Cart.Set(pid, size, qty) })
}

func (m *mockAccounts) RemoveCartItem(_ context.Context, id, pid, size string) error {
	return m.mutate(id, func(a *domain.Account) { a.Cart.Remove(pid, size) })
}

func (m *mockAccounts) ReplaceCart(_ context.Context, id string, cart domain.Cart) error {
	return m.mutate(id, func(a *domain.Account) {
		a.Cart = cart.Clone()
		a.Cart.Prune()
	})
}

func (m *mockAccounts) ClearCart(_ context.Context, id string) error {
	return m.mutate(id, func(a *domain.Account) { a.Cart = domain.Cart{} })
}

func (m *mockAccounts) cart(id string) domain.Cart {
	c, _ := m.GetCart(context.Background(), id)
	return c
}

// mockProducts is an in-memory ProductRepository.
type mockProducts struct {
	m        sync.RWMutex
	products map[string]*domain.Product
	nextID   int
	err      error
}

func newMockProducts(products ...*domain.Product) *mockProducts {
	m := &mockProducts{products: map[string]*domain.Product{}}
	for _, p := range products {
		cp := *p
		m.products[p.ID] = &cp
	}
	return m
}

func (m *mockProducts) Create(_ context.Context, p *domain.Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if p.ID == "" {
		m.nextID++
		p.ID = fmt.Sprintf("prod-%d", m.nextID)
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *mockProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProducts) GetMany(_ context.Context, ids []string) (map[string]*domain.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	out := map[string]*domain.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *mockProducts) List(_ context.Context) ([]domain.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Product{}
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProducts) Update(_ context.Context, id string, u domain.ProductUpdate) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	if u.Sizes != nil {
		p.Sizes = u.Sizes
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	cp := *p
	return &cp, nil
}

func (m *mockProducts) Delete(_ context.Context, id string) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	delete(m.products, id)
	return p, nil
}

func (m *mockProducts) AddReview(_ context.Context, id string, r domain.Review) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	p.Reviews = append(p.Reviews, r)
	sum := 0
	for _, rv := range p.Reviews {
		sum += rv.Rating
	}
	p.Rating = float64(sum) / float64(len(p.Reviews))
	cp := *p
	return &cp, nil
}

func (m *mockProducts) DecrementStock(_ context.Context, id string, qty int) error {
	m.m.Lock()
	defer m.m.Unlock()
	p, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	if p.Stock < qty {
		return repository.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (m *mockProducts) IncrementStock(_ context.Context, id string, qty int) error {
	m.m.Lock()
	defer m.m.Unlock()
	p, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Stock += qty
	return nil
}

func (m *mockProducts) stock(id string) int {
	p, err := m.GetByID(context.Background(), id)
	if err != nil {
		return -1
	}
	return p.Stock
}

func (m *mockProducts) setStock(id string, stock int) {
	m.m.Lock()
	defer m.m.Unlock()
	m.products[id].Stock = stock
}

// mockOrders is an in-memory OrderRepository.
type mockOrders struct {
	m         sync.RWMutex
	orders    map[string]*domain.Order
	nextID    int
	createErr error
}

func newMockOrders() *mockOrders {
	return &mockOrders{orders: map[string]*domain.Order{}}
}

func (m *mockOrders) Create(_ context.Context, o *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	o.ID = fmt.Sprintf("order-%d", m.nextID)
	o.CreatedAt = time.Now()
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *mockOrders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrders) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	out := []domain.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrders) ListAll(_ context.Context) ([]domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	out := []domain.Order{}
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrders) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	m.m.Lock()
	defer m.m.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (m *mockOrders) SetSessionID(_ context.Context, id, sessionID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.SessionID = sessionID
	return nil
}

func (m *mockOrders) MarkPaid(_ context.Context, id string) (bool, error) {
	m.m.Lock()
	defer m.m.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return false, repository.ErrOrderNotFound
	}
	if o.Payment {
		return false, nil
	}
	o.Payment = true
	return true, nil
}

func (m *mockOrders) Delete(_ context.Context, id string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *mockOrders) count() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return len(m.orders)
}

// mockCache implements both cache interfaces over maps.
type mockCache struct {
	m          sync.Mutex
	carts      map[string]domain.Cart
	products   []domain.Product
	getErr     error
	cartGets   int
	invalidate int
}

func newMockCache() *mockCache {
	return &mockCache{carts: map[string]domain.Cart{}}
}

func (c *mockCache) GetCart(_ context.Context, id string) (domain.Cart, error) {
	c.m.Lock()
	defer c.m.Unlock()
	c.cartGets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	cart, ok := c.carts[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart.Clone(), nil
}

func (c *mockCache) SetCart(_ context.Context, id string, cart domain.Cart) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.carts[id] = cart.Clone()
	return nil
}

func (c *mockCache) DeleteCart(_ context.Context, id string) error {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.carts, id)
	return nil
}

func (c *mockCache) GetProducts(context.Context) ([]domain.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.products == nil {
		return nil, cache.ErrCacheMiss
	}
	return c.products, nil
}

func (c *mockCache) SetProducts(_ context.Context, products []domain.Product) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.products = products
	return nil
}

func (c *mockCache) InvalidateProducts(context.Context) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.products = nil
	c.invalidate++
	return nil
}

func (c *mockCache) hasCart(id string) bool {
	c.m.Lock()
	defer c.m.Unlock()
	_, ok := c.carts[id]
	return ok
}

type mockGateway struct {
	m         sync.Mutex
	createErr error
	getErr    error
	paid      bool
	requests  []payment.SessionRequest
	lookups   int
}

func (g *mockGateway) CreateSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	g.m.Lock()
	defer g.m.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.requests = append(g.requests, req)
	return &payment.Session{ID: "cs_" + req.OrderID, URL: "https://checkout.stripe.com/pay/cs_" + req.OrderID}, nil
}

func (g *mockGateway) GetSession(_ context.Context, id string) (*payment.Session, error) {
	g.m.Lock()
	defer g.m.Unlock()
	g.lookups++
	if g.getErr != nil {
		return nil, g.getErr
	}
	return &payment.Session{ID: id, Paid: g.paid}, nil
}

type mockImages struct {
	m        sync.Mutex
	uploaded []string
	deleted  []string
	failAt   int // 1-based upload that fails; 0 never
	err      error
}

func (s *mockImages) Upload(_ context.Context, name string, _ io.Reader) (domain.Image, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.failAt == len(s.uploaded)+1 {
		return domain.Image{}, s.err
	}
	s.uploaded = append(s.uploaded, name)
	return domain.Image{URL: "https://img/" + name, PublicID: "products/" + name}, nil
}

func (s *mockImages) Delete(_ context.Context, publicID string) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.deleted = append(s.deleted, publicID)
	return nil
}

type sentMail struct {
	kind, to, name, link string
}

type mockMailer struct {
	m    sync.Mutex
	sent []sentMail
	err  error
}

func (mm *mockMailer) record(kind, to, name, link string) error {
	mm.m.Lock()
	defer mm.m.Unlock()
	if mm.err != nil {
		return mm.err
	}
	mm.sent = append(mm.sent, sentMail{kind, to, name, link})
	return nil
}

func (mm *mockMailer) SendVerification(_ context.Context, to, name, link string) error {
	return mm.record("verify", to, name, link)
}

func (mm *mockMailer) SendPasswordReset(_ context.Context, to, name, link string) error {
	return mm.record("reset", to, name, link)
}

type mockIdentity struct {
	profile *identity.Profile
	err     error
}

func (i mockIdentity) Exchange(context.Context, string) (*identity.Profile, error) {
	return i.profile, i.err
}

type mockPublisher struct {
	m      sync.Mutex
	events []events.OrderEvent
}

func (p *mockPublisher) Publish(_ context.Context, evt events.OrderEvent) {
	p.m.Lock()
	defer p.m.Unlock()
	p.events = append(p.events, evt)
}

func (p *mockPublisher) types() []events.EventType {
	p.m.Lock()
	defer p.m.Unlock()
	out := make([]events.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type mockTokens struct{}

func (mockTokens) IssueAccess(accountID, role string) (string, error) {
	return "token-" + accountID + "-" + role, nil
}
