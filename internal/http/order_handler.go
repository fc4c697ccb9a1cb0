package http

import (
	"context"
	"net/http"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/internal/service"
)

type OrderService interface {
	PlaceCOD(ctx context.Context, in service.PlaceOrderInput) (*domain.Order, error)
	PlaceStripe(ctx context.Context, in service.PlaceOrderInput) (*domain.Order, string, error)
	VerifyStripe(ctx context.Context, accountID, orderID string) (bool, error)
	UserOrders(ctx context.Context, accountID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
}

type OrdersHandler struct {
	orders OrderService
}

func NewOrdersHandler(orders OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

type OrderItemDTO struct {
	ProductID string        `json:"_id" validate:"required"`
	Size      string        `json:"size" validate:"required"`
	Quantity  int           `json:"quantity" validate:"required,min=1,max=99"`
	Price     *domain.Money `json:"price" validate:"omitempty,gte=0"`
}

type AddressDTO struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Street    string `json:"street" validate:"required,max=200"`
	City      string `json:"city" validate:"required,max=100"`
	State     string `json:"state" validate:"max=100"`
	Zipcode   string `json:"zipcode" validate:"max=20"`
	Country   string `json:"country" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"required,max=30"`
}

type PlaceOrderRequestDTO struct {
	Items   []OrderItemDTO `json:"items" validate:"required,min=1,dive"`
	Amount  domain.Money   `json:"amount" validate:"gte=0"`
	Address AddressDTO     `json:"address"`
}

type VerifyStripeRequestDTO struct {
	OrderID string `json:"orderId" validate:"required"`
}

type UpdateStatusRequestDTO struct {
	OrderID string `json:"orderId" validate:"required"`
	Status  string `json:"status" validate:"required"`
}

type OrderResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Order   *domain.Order `json:"order"`
}

type OrdersResponse struct {
	Success bool           `json:"success"`
	Orders  []domain.Order `json:"orders"`
}

type StripeSessionResponse struct {
	Success    bool   `json:"success"`
	OrderID    string `json:"orderId"`
	SessionURL string `json:"session_url"`
}

type VerifyStripeResponse struct {
	Success bool   `json:"success"`
	Paid    bool   `json:"paid"`
	Message string `json:"message"`
}

// POST /api/order/place
func (h *OrdersHandler) PlaceCOD(w http.ResponseWriter, r *http.Request) {
	in, ok := decodePlaceOrder(w, r)
	if !ok {
		return
	}

	order, err := h.orders.PlaceCOD(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, OrderResponse{Success: true, Message: "Order placed", Order: order})
}

// POST /api/order/stripe
func (h *OrdersHandler) PlaceStripe(w http.ResponseWriter, r *http.Request) {
	in, ok := decodePlaceOrder(w, r)
	if !ok {
		return
	}

	order, url, err := h.orders.PlaceStripe(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, StripeSessionResponse{Success: true, OrderID: order.ID, SessionURL: url})
}

// POST /api/order/verifyStripe
func (h *OrdersHandler) VerifyStripe(w http.ResponseWriter, r *http.Request) {
	var req VerifyStripeRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}

	paid, err := h.orders.VerifyStripe(r.Context(), accountIDFromContext(r.Context()), req.OrderID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	msg := "Payment confirmed"
	if !paid {
		msg = "Payment not completed, order cancelled"
	}
	respondJSON(w, http.StatusOK, VerifyStripeResponse{Success: true, Paid: paid, Message: msg})
}

// GET|POST /api/order/userorders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.UserOrders(r.Context(), accountIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondOrders(w, orders)
}

// POST /api/order/list
func (h *OrdersHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondOrders(w, orders)
}

// POST /api/order/status
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), req.OrderID, domain.OrderStatus(req.Status))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, OrderResponse{Success: true, Message: "Status updated", Order: order})
}

func decodePlaceOrder(w http.ResponseWriter, r *http.Request) (service.PlaceOrderInput, bool) {
	var req PlaceOrderRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return service.PlaceOrderInput{}, false
	}

	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.OrderItemInput{
			ProductID: it.ProductID,
			Size:      it.Size,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	a := req.Address
	return service.PlaceOrderInput{
		AccountID: accountIDFromContext(r.Context()),
		Items:     items,
		Amount:    req.Amount,
		Address: domain.Address{
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Email:     a.Email,
			Street:    a.Street,
			City:      a.City,
			State:     a.State,
			Zipcode:   a.Zipcode,
			Country:   a.Country,
			Phone:     a.Phone,
		},
	}, true
}

func respondOrders(w http.ResponseWriter, orders []domain.Order) {
	if orders == nil {
		orders = []domain.Order{}
	}
	respondJSON(w, http.StatusOK, OrdersResponse{Success: true, Orders: orders})
}
