package domain

import "time"

type OrderStatus string

const (
	StatusToPay     OrderStatus = "to_pay"
	StatusToShip    OrderStatus = "to_ship"
	StatusToReceive OrderStatus = "to_receive"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
	StatusRefund    OrderStatus = "refund"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusToPay,
	StatusToShip,
	StatusToReceive,
	StatusCompleted,
	StatusCancelled,
	StatusRefund,
}

var statusLabels = map[OrderStatus]string{
	StatusToPay:     "Awaiting payment",
	StatusToShip:    "Preparing for shipment",
	StatusToReceive: "Order shipped",
	StatusCompleted: "Order completed",
	StatusCancelled: "Order cancelled",
	StatusRefund:    "Order refunded",
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the human-readable history description for a move into s.
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Actors recorded in order history.
const (
	ActorAdmin    = "Admin"
	ActorCustomer = "Customer"
)

// OrderLine is a cart line frozen at checkout with its subtotal.
type OrderLine struct {
	CartLine
	SubtotalCents int64 `json:"subtotalCents"`
}

// HistoryEntry is one append-only audit record.
type HistoryEntry struct {
	Status    OrderStatus `json:"status"`
	Label     string      `json:"label"`
	UpdatedBy string      `json:"updatedBy"`
	Timestamp time.Time   `json:"timestamp"`
}

type Order struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId"`
	Items         []OrderLine    `json:"items"`
	TotalCents    int64          `json:"totalCents"`
	Status        OrderStatus    `json:"status"`
	PaymentMethod string         `json:"paymentMethod,omitempty"`
	PaidAt        *time.Time     `json:"paidAt,omitempty"`
	History       []HistoryEntry `json:"history"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// OrderWithOwner decorates an order with its owner's email for admin listings.
type OrderWithOwner struct {
	Order
	UserEmail string `json:"userEmail"`
}
