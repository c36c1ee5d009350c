package repository

import (
	"context"

	"vendora/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductLedger defines the interface for product data access operations.
type ProductLedger interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID, or nil if absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// DecrementStock atomically subtracts quantity from a product's stock
	// within the transaction, only if stock >= quantity. Returns false when
	// the product is absent or the guard fails.
	DecrementStock(ctx context.Context, tx pgx.Tx, id string, quantity int) (bool, error)

	// Update applies the non-nil fields of the patch. Returns false when the
	// product does not exist.
	Update(ctx context.Context, id string, patch *model.ProductPatch) (bool, error)

	// SetActive flips the product's active flag. Returns false when the
	// product does not exist.
	SetActive(ctx context.Context, id string, active bool) (bool, error)

	// Delete removes the product. Returns false when it does not exist.
	Delete(ctx context.Context, id string) (bool, error)
}

// OrderStore defines the interface for order data access operations. Orders
// are inserted once and thereafter replaced whole; they are never deleted.
type OrderStore interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Insert persists a new order within the provided transaction.
	Insert(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// FindByID retrieves an order by its ID, or nil if absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ReplaceByID replaces the stored record with order, guarded by the
	// order's version. Returns false on a version conflict; on success the
	// order's version is advanced in place.
	ReplaceByID(ctx context.Context, order *model.Order) (bool, error)

	// FindByCustomerID retrieves all orders placed by a customer.
	FindByCustomerID(ctx context.Context, customerID string) ([]model.Order, error)

	// FindByVendorID retrieves all orders containing items from a vendor.
	FindByVendorID(ctx context.Context, vendorID string) ([]model.Order, error)

	// CountPendingByProduct counts non-terminal orders containing a line
	// item for the product.
	CountPendingByProduct(ctx context.Context, productID string) (int64, error)
}
