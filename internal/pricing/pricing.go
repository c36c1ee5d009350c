// Package pricing turns requested (product, quantity) pairs into priced,
// stock-checked line items and applies the resulting stock deductions.
package pricing

import (
	"context"
	"fmt"

	"vendora/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Ledger is the product read/write surface the validator needs.
type Ledger interface {
	// GetByID returns the product, or nil if it does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// DecrementStock atomically subtracts quantity from the product's stock
	// within the transaction, only if stock >= quantity. Returns false when
	// the guard fails.
	DecrementStock(ctx context.Context, tx pgx.Tx, id string, quantity int) (bool, error)
}

// StockLevel is the stock remaining for a product after an order's
// deductions are applied.
type StockLevel struct {
	ProductID   string
	ProductName string
	VendorID    string
	Remaining   int
}

// Result is the outcome of a successful PriceAndReserve call.
type Result struct {
	Items      []model.LineItem
	TotalPrice float64
	Stock      []StockLevel
}

// Validator prices order items and reserves stock in two phases: validate
// every item first, then apply every deduction. A failure during validation
// touches no stock; a failure during apply aborts the caller's transaction.
type Validator struct {
	ledger Ledger
	logger zerolog.Logger
}

// NewValidator creates a new pricing validator.
func NewValidator(ledger Ledger, logger zerolog.Logger) *Validator {
	return &Validator{
		ledger: ledger,
		logger: logger.With().Str("component", "pricing").Logger(),
	}
}

// PriceAndReserve validates availability for every requested item, snapshots
// unit prices, computes line and order totals, and applies the stock
// decrements within tx. Duplicate product IDs are priced independently but
// validated against a shared running balance.
func (v *Validator) PriceAndReserve(ctx context.Context, tx pgx.Tx, reqs []model.OrderItemRequest) (*Result, error) {
	products := make(map[string]*model.Product, len(reqs))
	remaining := make(map[string]int, len(reqs))

	// Phase 1: validate and price every item. No writes happen here, so a
	// failure on item k leaves items 1..k-1 untouched.
	items := make([]model.LineItem, 0, len(reqs))
	var total float64

	for _, req := range reqs {
		if req.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}

		product, ok := products[req.ProductID]
		if !ok {
			fetched, err := v.ledger.GetByID(ctx, req.ProductID)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch product %s: %w", req.ProductID, err)
			}
			if fetched == nil || !fetched.IsActive {
				return nil, &model.ProductNotFoundError{ProductID: req.ProductID}
			}
			product = fetched
			products[req.ProductID] = product
			remaining[req.ProductID] = product.Stock
		}

		if remaining[req.ProductID] < req.Quantity {
			return nil, &model.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   remaining[req.ProductID],
				Requested:   req.Quantity,
			}
		}
		remaining[req.ProductID] -= req.Quantity

		lineTotal := product.Price * float64(req.Quantity)
		items = append(items, model.LineItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    req.Quantity,
			UnitPrice:   product.Price,
			LineTotal:   lineTotal,
			VendorID:    product.VendorID,
		})
		total += lineTotal
	}

	// Phase 2: apply the deductions. The conditional decrement re-checks the
	// guard per product, so a concurrent order that won the stock cannot be
	// double-spent; the caller rolls back tx on error.
	for _, item := range items {
		ok, err := v.ledger.DecrementStock(ctx, tx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %s: %w", item.ProductID, err)
		}
		if !ok {
			v.logger.Warn().
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("stock changed concurrently during reservation")
			return nil, &model.InsufficientStockError{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Available:   remaining[item.ProductID],
				Requested:   item.Quantity,
			}
		}
	}

	levels := make([]StockLevel, 0, len(products))
	for id, product := range products {
		levels = append(levels, StockLevel{
			ProductID:   id,
			ProductName: product.Name,
			VendorID:    product.VendorID,
			Remaining:   remaining[id],
		})
	}

	v.logger.Debug().
		Int("item_count", len(items)).
		Float64("total_price", total).
		Msg("items priced and stock reserved")

	return &Result{Items: items, TotalPrice: total, Stock: levels}, nil
}
