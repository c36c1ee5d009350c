package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"vendora/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderStore implements the OrderStore interface using PostgreSQL. Line
// items and vendor sub-statuses are embedded as JSONB so that an order is
// one row and replace-by-id is a single guarded update.
type orderStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderStore creates a new PostgreSQL-backed order store.
func NewOrderStore(pool *pgxpool.Pool, logger zerolog.Logger) OrderStore {
	return &orderStore{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderStore) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func marshalOrder(order *model.Order) (items, statuses []byte, err error) {
	items, err = json.Marshal(order.Items)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal order items: %w", err)
	}
	statuses, err = json.Marshal(order.VendorStatuses)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal vendor statuses: %w", err)
	}
	return items, statuses, nil
}

// Insert persists a new order within the provided transaction.
func (r *orderStore) Insert(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	items, statuses, err := marshalOrder(order)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (id, customer_id, items, status, note, created_at,
			is_partially_delivered, vendor_statuses, total_price, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.Exec(ctx, query,
		order.ID, order.CustomerID, items, order.Status, order.Note,
		order.CreatedAt, order.PartiallyDelivered, statuses, order.TotalPrice,
		order.Version)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to insert order")
		return fmt.Errorf("failed to insert order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order inserted")

	return nil
}

const orderColumns = `id, customer_id, items, status, note, created_at,
	is_partially_delivered, vendor_statuses, total_price, version`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var items, statuses []byte

	err := row.Scan(&o.ID, &o.CustomerID, &items, &o.Status, &o.Note,
		&o.CreatedAt, &o.PartiallyDelivered, &statuses, &o.TotalPrice, &o.Version)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(statuses, &o.VendorStatuses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vendor statuses: %w", err)
	}

	return &o, nil
}

// FindByID retrieves an order by its ID.
func (r *orderStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return order, nil
}

// ReplaceByID replaces the stored record, guarded by the order's version.
func (r *orderStore) ReplaceByID(ctx context.Context, order *model.Order) (bool, error) {
	items, statuses, err := marshalOrder(order)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE orders
		SET items = $2, status = $3, note = $4, is_partially_delivered = $5,
			vendor_statuses = $6, total_price = $7, version = version + 1
		WHERE id = $1 AND version = $8
	`

	tag, err := r.pool.Exec(ctx, query,
		order.ID, items, order.Status, order.Note, order.PartiallyDelivered,
		statuses, order.TotalPrice, order.Version)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to replace order")
		return false, fmt.Errorf("failed to replace order: %w", err)
	}

	if tag.RowsAffected() != 1 {
		r.logger.Debug().
			Str("order_id", order.ID.String()).
			Int64("version", order.Version).
			Msg("order version conflict on replace")
		return false, nil
	}

	order.Version++
	return true, nil
}

func (r *orderStore) queryOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	return orders, rows.Err()
}

// FindByCustomerID retrieves all orders placed by a customer, newest first.
func (r *orderStore) FindByCustomerID(ctx context.Context, customerID string) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`

	orders, err := r.queryOrders(ctx, query, customerID)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID).Msg("failed to query orders by customer")
		return nil, fmt.Errorf("failed to query orders by customer: %w", err)
	}
	return orders, nil
}

// FindByVendorID retrieves all orders containing items from a vendor, using
// JSONB containment against the vendor sub-statuses.
func (r *orderStore) FindByVendorID(ctx context.Context, vendorID string) ([]model.Order, error) {
	match, err := json.Marshal([]map[string]string{{"vendorId": vendorID}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vendor filter: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE vendor_statuses @> $1
		ORDER BY created_at DESC
	`

	orders, err := r.queryOrders(ctx, query, match)
	if err != nil {
		r.logger.Error().Err(err).Str("vendor_id", vendorID).Msg("failed to query orders by vendor")
		return nil, fmt.Errorf("failed to query orders by vendor: %w", err)
	}
	return orders, nil
}

// CountPendingByProduct counts non-terminal orders containing the product.
func (r *orderStore) CountPendingByProduct(ctx context.Context, productID string) (int64, error) {
	match, err := json.Marshal([]map[string]string{{"productId": productID}})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal product filter: %w", err)
	}

	query := `
		SELECT COUNT(*)
		FROM orders
		WHERE status = $1 AND items @> $2
	`

	var count int64
	err = r.pool.QueryRow(ctx, query, model.OrderStatusProcessing, match).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to count pending orders")
		return 0, fmt.Errorf("failed to count pending orders: %w", err)
	}

	return count, nil
}
