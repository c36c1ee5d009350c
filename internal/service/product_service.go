package service

import (
	"context"
	"fmt"

	"vendora/internal/model"
	"vendora/internal/repository"

	"github.com/rs/zerolog"
)

// PendingOrderChecker is the slice of OrderService the product-deletion
// guard needs.
type PendingOrderChecker interface {
	HasPendingOrdersForProduct(ctx context.Context, productID string) (bool, error)
}

// productService implements ProductService.
type productService struct {
	ledger repository.ProductLedger
	orders PendingOrderChecker
	logger zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(ledger repository.ProductLedger, orders PendingOrderChecker, logger zerolog.Logger) ProductService {
	return &productService{
		ledger: ledger,
		orders: orders,
		logger: logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves all products with pagination.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.ledger.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to get all products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		return nil, model.ErrProductNotFound
	}

	product, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Update applies a partial update to a product. Only fields present in the
// patch are written; omitted fields keep their stored values.
func (s *productService) Update(ctx context.Context, id string, patch *model.ProductPatch) (*model.Product, error) {
	if patch == nil || patch.Empty() {
		return nil, model.NewDomainError(model.ErrCodeInvalidInput, "patch must contain at least one field")
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, model.NewDomainError(model.ErrCodeInvalidInput, "price must not be negative")
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, model.NewDomainError(model.ErrCodeInvalidInput, "stock must not be negative")
	}

	ok, err := s.ledger.Update(ctx, id, patch)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if !ok {
		return nil, model.ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id).Msg("product updated")

	return s.GetByID(ctx, id)
}

// SetActive activates or deactivates a product. Inactive products stay in
// the catalogue but cannot be ordered.
func (s *productService) SetActive(ctx context.Context, id string, active bool) error {
	ok, err := s.ledger.SetActive(ctx, id, active)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to set product active flag")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if !ok {
		return model.ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id).Bool("active", active).Msg("product active flag changed")
	return nil
}

// Delete removes a product, refusing while any non-terminal order still
// references it.
func (s *productService) Delete(ctx context.Context, id string) error {
	pending, err := s.orders.HasPendingOrdersForProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if pending {
		s.logger.Warn().Str("product_id", id).Msg("refusing to delete product with pending orders")
		return model.ErrProductHasPending
	}

	ok, err := s.ledger.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !ok {
		return model.ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}
