package model

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. Cancelled and Delivered are terminal.
const (
	OrderStatusProcessing = "Processing"
	OrderStatusCancelled  = "Cancelled"
	OrderStatusDelivered  = "Delivered"
)

// Order represents a customer order spanning one or more vendors.
type Order struct {
	ID                 uuid.UUID      `json:"id" db:"id"`
	CustomerID         string         `json:"customerId" db:"customer_id"`
	Items              []LineItem     `json:"items" db:"items"`
	Status             string         `json:"status" db:"status"`
	Note               string         `json:"note,omitempty" db:"note"`
	CreatedAt          time.Time      `json:"createdAt" db:"created_at"`
	PartiallyDelivered bool           `json:"isPartiallyDelivered" db:"is_partially_delivered"`
	VendorStatuses     []VendorStatus `json:"vendorStatuses" db:"vendor_statuses"`
	TotalPrice         float64        `json:"totalOrderPrice" db:"total_price"`

	// Version guards replace-by-id against concurrent transitions.
	Version int64 `json:"-" db:"version"`
}

// Terminal reports whether the order is in a terminal status.
func (o *Order) Terminal() bool {
	return o.Status == OrderStatusCancelled || o.Status == OrderStatusDelivered
}

// LineItem is one product-and-quantity entry within an order. Unit price and
// line total are frozen at creation time and never recomputed.
type LineItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	LineTotal   float64 `json:"lineTotal"`
	VendorID    string  `json:"vendorId"`
	Delivered   bool    `json:"delivered"`
}

// VendorStatus is the per-vendor delivered flag within a multi-vendor order.
// One entry exists per distinct vendor among the order's line items.
type VendorStatus struct {
	VendorID  string `json:"vendorId"`
	Delivered bool   `json:"delivered"`
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	CustomerID string             `json:"customerId"`
	Items      []OrderItemRequest `json:"items"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CancelOrderRequest represents the request payload for cancelling an order.
type CancelOrderRequest struct {
	Note string `json:"note"`
}
