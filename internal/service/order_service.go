package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"vendora/internal/lifecycle"
	"vendora/internal/model"
	"vendora/internal/pricing"
	"vendora/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// transitionAttempts bounds the optimistic-locking retry loop when
// concurrent transitions race on the same order.
const transitionAttempts = 3

// orderService implements OrderService.
type orderService struct {
	orders            repository.OrderStore
	validator         *pricing.Validator
	notifier          Notifier
	lowStockThreshold int
	logger            zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderStore,
	validator *pricing.Validator,
	notifier Notifier,
	lowStockThreshold int,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orders:            orders,
		validator:         validator,
		notifier:          notifier,
		lowStockThreshold: lowStockThreshold,
		logger:            logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder creates a new order with per-item stock validation. Pricing,
// stock deductions and the order insert share one transaction, so a failure
// anywhere leaves no partial order and no partial decrement behind.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	tx, err := s.orders.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var result *pricing.Result
	result, err = s.validator.PriceAndReserve(ctx, tx, req.Items)
	if err != nil {
		s.logger.Warn().
			Str("customer_id", req.CustomerID).
			Int("item_count", len(req.Items)).
			Err(err).
			Msg("order pricing failed")
		return nil, err
	}

	if err = checkTotals(result); err != nil {
		s.logger.Error().Err(err).Msg("pricing invariant violated")
		return nil, err
	}

	order := &model.Order{
		ID:             uuid.New(),
		CustomerID:     req.CustomerID,
		Items:          result.Items,
		Status:         model.OrderStatusProcessing,
		CreatedAt:      time.Now().UTC(),
		VendorStatuses: lifecycle.VendorStatuses(result.Items),
		TotalPrice:     result.TotalPrice,
		Version:        1,
	}

	if err = s.orders.Insert(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to insert order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("customer_id", order.CustomerID).
		Int("item_count", len(order.Items)).
		Int("vendor_count", len(order.VendorStatuses)).
		Float64("total_price", order.TotalPrice).
		Msg("order created")

	for _, level := range result.Stock {
		if level.Remaining < s.lowStockThreshold {
			s.notifier.LowStock(ctx, level.ProductID, level.ProductName, level.VendorID, level.Remaining)
		}
	}

	return order, nil
}

// checkTotals re-checks the pricing invariants before persisting: each line
// total is unit price times quantity and the order total is their sum.
func checkTotals(result *pricing.Result) error {
	var sum float64
	for _, item := range result.Items {
		if item.LineTotal != item.UnitPrice*float64(item.Quantity) {
			return &model.InvariantViolationError{
				Message: fmt.Sprintf("line total mismatch for product %s", item.ProductID),
			}
		}
		sum += item.LineTotal
	}
	if math.Abs(sum-result.TotalPrice) > 1e-9 {
		return &model.InvariantViolationError{
			Message: fmt.Sprintf("order total %.2f does not match line item sum %.2f", result.TotalPrice, sum),
		}
	}
	return nil
}

// GetOrder retrieves an order by its ID.
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// CancelOrder cancels a processing order with a mandatory note.
func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID, note string) (*model.Order, error) {
	if note == "" {
		return nil, model.ErrEmptyNote
	}
	return s.transition(ctx, id, "cancel", func(o *model.Order) bool {
		return lifecycle.Cancel(o, note)
	})
}

// MarkDelivered marks a processing order as delivered in full.
func (s *orderService) MarkDelivered(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.transition(ctx, id, "deliver", lifecycle.MarkDelivered)
}

// MarkPartiallyDelivered records one vendor's delivery within the order.
func (s *orderService) MarkPartiallyDelivered(ctx context.Context, id uuid.UUID, vendorID string) (*model.Order, error) {
	return s.transition(ctx, id, "partial-deliver", func(o *model.Order) bool {
		return lifecycle.MarkVendorDelivered(o, vendorID)
	})
}

// transition runs a lifecycle mutation under the order's optimistic version,
// retrying on conflict so that racing transitions never lose updates. An
// apply that reports no change (terminal order, unknown vendor) is a no-op
// and returns the order as stored.
func (s *orderService) transition(ctx context.Context, id uuid.UUID, name string, apply func(*model.Order) bool) (*model.Order, error) {
	for attempt := 0; attempt < transitionAttempts; attempt++ {
		order, err := s.orders.FindByID(ctx, id)
		if err != nil {
			s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to load order for transition")
			return nil, fmt.Errorf("failed to %s order: %w", name, err)
		}
		if order == nil {
			return nil, model.ErrOrderNotFound
		}

		if !apply(order) {
			s.logger.Debug().
				Str("order_id", id.String()).
				Str("transition", name).
				Str("status", order.Status).
				Msg("transition is a no-op")
			return order, nil
		}

		ok, err := s.orders.ReplaceByID(ctx, order)
		if err != nil {
			s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to replace order")
			return nil, fmt.Errorf("failed to %s order: %w", name, err)
		}
		if ok {
			s.logger.Info().
				Str("order_id", id.String()).
				Str("transition", name).
				Str("status", order.Status).
				Bool("partially_delivered", order.PartiallyDelivered).
				Msg("order transitioned")
			return order, nil
		}

		s.logger.Debug().
			Str("order_id", id.String()).
			Str("transition", name).
			Int("attempt", attempt+1).
			Msg("version conflict, retrying transition")
	}

	return nil, fmt.Errorf("failed to %s order %s: too many concurrent updates", name, id)
}

// ListByCustomer retrieves all orders placed by a customer.
func (s *orderService) ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	orders, err := s.orders.FindByCustomerID(ctx, customerID)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", customerID).Msg("failed to list orders by customer")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListByVendor retrieves all orders containing items from a vendor.
func (s *orderService) ListByVendor(ctx context.Context, vendorID string) ([]model.Order, error) {
	orders, err := s.orders.FindByVendorID(ctx, vendorID)
	if err != nil {
		s.logger.Error().Err(err).Str("vendor_id", vendorID).Msg("failed to list orders by vendor")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// HasPendingOrdersForProduct reports whether any non-terminal order contains
// a line item for the product. Consumed by the product-deletion guard.
func (s *orderService) HasPendingOrdersForProduct(ctx context.Context, productID string) (bool, error) {
	count, err := s.orders.CountPendingByProduct(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to count pending orders")
		return false, fmt.Errorf("failed to check pending orders: %w", err)
	}
	return count > 0, nil
}

// validateOrderRequest validates the order request.
func validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeInvalidInput, "order request is nil")
	}
	if req.CustomerID == "" {
		return model.NewDomainError(model.ErrCodeInvalidInput, "customer ID is required")
	}
	if len(req.Items) == 0 {
		return model.ErrEmptyOrder
	}
	for i, item := range req.Items {
		if item.ProductID == "" {
			return model.NewDomainError(model.ErrCodeInvalidInput,
				fmt.Sprintf("item %d: product ID is required", i))
		}
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
	}
	return nil
}
