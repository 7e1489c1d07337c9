package domain

import (
	"time"
)

// Order status constants.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCanceled   = "canceled"
)

// Order represents a customer order. Item prices are snapshots taken at
// order time, so later product edits do not rewrite history.
type Order struct {
	ID              string      `json:"id" bson:"_id"`
	UserID          string      `json:"user_id" bson:"user_id"`
	Status          string      `json:"status" bson:"status"`
	Items           []OrderItem `json:"items" bson:"items"`
	ItemsAmount     int64       `json:"items_amount" bson:"items_amount"`
	TaxAmount       int64       `json:"tax_amount" bson:"tax_amount"`
	ShippingAmount  int64       `json:"shipping_amount" bson:"shipping_amount"`
	TotalAmount     int64       `json:"total_amount" bson:"total_amount"`
	ShippingAddress Address     `json:"shipping_address" bson:"shipping_address"`
	DeliveredAt     *time.Time  `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" bson:"updated_at"`
}

// OrderItem is a line item within an order.
type OrderItem struct {
	ProductID string `json:"product_id" bson:"product_id"`
	Name      string `json:"name" bson:"name"`
	Price     int64  `json:"price" bson:"price"`
	Quantity  int    `json:"quantity" bson:"quantity"`
	ImageURL  string `json:"image_url,omitempty" bson:"image_url,omitempty"`
}

// Subtotal returns the line total for the item.
func (i OrderItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// Address represents a shipping address.
type Address struct {
	AddressLine string `json:"address_line" bson:"address_line"`
	City        string `json:"city" bson:"city"`
	State       string `json:"state" bson:"state"`
	PostalCode  string `json:"postal_code" bson:"postal_code"`
	Country     string `json:"country" bson:"country"`
	Phone       string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// ValidOrderStatuses returns all valid order statuses.
func ValidOrderStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCanceled,
	}
}

// IsValidOrderStatus checks if a status string is valid.
func IsValidOrderStatus(status string) bool {
	for _, s := range ValidOrderStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// OrderTransitions defines which status transitions are valid.
func OrderTransitions() map[string][]string {
	return map[string][]string{
		OrderStatusPending:    {OrderStatusProcessing, OrderStatusCanceled},
		OrderStatusProcessing: {OrderStatusShipped, OrderStatusCanceled},
		OrderStatusShipped:    {OrderStatusDelivered},
		OrderStatusDelivered:  {},
		OrderStatusCanceled:   {},
	}
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range OrderTransitions()[from] {
		if s == to {
			return true
		}
	}
	return false
}
