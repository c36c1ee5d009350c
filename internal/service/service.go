package service

import (
	"context"

	"vendora/internal/model"

	"github.com/google/uuid"
)

// OrderService defines operations for the order lifecycle.
type OrderService interface {
	// CreateOrder prices the requested items, reserves stock and persists a
	// new processing order. Creation is all-or-nothing: any item failure
	// aborts the order and leaves every product's stock unchanged.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error)

	// GetOrder retrieves an order by its ID.
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// CancelOrder cancels a processing order, storing the mandatory note.
	// Cancelling a terminal order is a no-op.
	CancelOrder(ctx context.Context, id uuid.UUID, note string) (*model.Order, error)

	// MarkDelivered marks a processing order as delivered in full.
	MarkDelivered(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// MarkPartiallyDelivered records one vendor's delivery within the order.
	MarkPartiallyDelivered(ctx context.Context, id uuid.UUID, vendorID string) (*model.Order, error)

	// ListByCustomer retrieves all orders placed by a customer.
	ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error)

	// ListByVendor retrieves all orders containing items from a vendor.
	ListByVendor(ctx context.Context, vendorID string) ([]model.Order, error)

	// HasPendingOrdersForProduct reports whether any non-terminal order
	// contains a line item for the product.
	HasPendingOrdersForProduct(ctx context.Context, productID string) (bool, error)
}

// ProductService defines operations for the product catalogue surface the
// marketplace exposes alongside the order engine.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Update applies a partial update to a product.
	Update(ctx context.Context, id string, patch *model.ProductPatch) (*model.Product, error)

	// SetActive activates or deactivates a product.
	SetActive(ctx context.Context, id string, active bool) error

	// Delete removes a product unless it is referenced by a pending order.
	Delete(ctx context.Context, id string) error
}

// Notifier is the port for low-stock alerts raised after order creation.
// Delivery (inbox, e-mail, push) belongs to an external collaborator.
type Notifier interface {
	LowStock(ctx context.Context, productID, productName, vendorID string, remaining int)
}
