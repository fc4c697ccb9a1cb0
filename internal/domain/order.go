package domain

import "time"

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "Order Placed"
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusPending,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(orderStatuses))
	copy(out, orderStatuses)
	return out
}

func (s OrderStatus) IsValid() bool {
	for _, st := range orderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentStripe PaymentMethod = "Stripe"
)

// LineItem is a copy of the product as it was when the order was placed.
// Later catalog edits never change it.
type LineItem struct {
	ProductID string `bson:"product_id" json:"_id"`
	Name      string `bson:"name" json:"name"`
	Price     Money  `bson:"price" json:"price"`
	Quantity  int    `bson:"quantity" json:"quantity"`
	Size      string `bson:"size" json:"size"`
	Image     string `bson:"image,omitempty" json:"image,omitempty"`
}

func (li LineItem) Subtotal() Money {
	return li.Price.Mul(li.Quantity)
}

type Address struct {
	FirstName string `bson:"first_name" json:"firstName"`
	LastName  string `bson:"last_name" json:"lastName"`
	Email     string `bson:"email" json:"email"`
	Street    string `bson:"street" json:"street"`
	City      string `bson:"city" json:"city"`
	State     string `bson:"state" json:"state"`
	Zipcode   string `bson:"zipcode" json:"zipcode"`
	Country   string `bson:"country" json:"country"`
	Phone     string `bson:"phone" json:"phone"`
}

type Order struct {
	ID            string        `bson:"_id,omitempty" json:"_id"`
	UserID        string        `bson:"user_id" json:"userId"`
	Items         []LineItem    `bson:"items" json:"items"`
	Amount        Money         `bson:"amount" json:"amount"`
	DeliveryFee   Money         `bson:"delivery_fee" json:"deliveryFee"`
	Address       Address       `bson:"address" json:"address"`
	PaymentMethod PaymentMethod `bson:"payment_method" json:"paymentMethod"`
	Payment       bool          `bson:"payment" json:"payment"`
	Status        OrderStatus   `bson:"status" json:"status"`
	SessionID     string        `bson:"session_id,omitempty" json:"-"`
	CreatedAt     time.Time     `bson:"created_at" json:"date"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updatedAt"`
}

// StockDemand sums ordered quantities per product over all sizes.
func StockDemand(items []LineItem) map[string]int {
	demand := make(map[string]int, len(items))
	for _, it := range items {
		demand[it.ProductID] += it.Quantity
	}
	return demand
}
