package pricing

import (
	"context"
	"errors"
	"testing"

	"vendora/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLedger is a mock implementation of Ledger.
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockLedger) DecrementStock(ctx context.Context, tx pgx.Tx, id string, quantity int) (bool, error) {
	args := m.Called(ctx, id, quantity)
	return args.Bool(0), args.Error(1)
}

func product(id, name string, price float64, stock int, vendorID string) *model.Product {
	return &model.Product{
		ID:       id,
		Name:     name,
		Price:    price,
		Stock:    stock,
		IsActive: true,
		VendorID: vendorID,
	}
}

func TestPriceAndReserve_Success(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedger)
	validator := NewValidator(ledger, zerolog.Nop())

	ledger.On("GetByID", ctx, "P001").Return(product("P001", "Widget", 10.00, 5, "V-A"), nil)
	ledger.On("GetByID", ctx, "P002").Return(product("P002", "Gadget", 5.00, 3, "V-B"), nil)
	ledger.On("DecrementStock", ctx, "P001", 2).Return(true, nil)
	ledger.On("DecrementStock", ctx, "P002", 1).Return(true, nil)

	result, err := validator.PriceAndReserve(ctx, nil, []model.OrderItemRequest{
		{ProductID: "P001", Quantity: 2},
		{ProductID: "P002", Quantity: 1},
	})

	require.NoError(t, err)
	require.Len(t, result.Items, 2)

	assert.Equal(t, 25.00, result.TotalPrice)
	assert.Equal(t, 10.00, result.Items[0].UnitPrice)
	assert.Equal(t, 20.00, result.Items[0].LineTotal)
	assert.Equal(t, "Widget", result.Items[0].ProductName)
	assert.Equal(t, "V-A", result.Items[0].VendorID)
	assert.Equal(t, 5.00, result.Items[1].UnitPrice)
	assert.Equal(t, 5.00, result.Items[1].LineTotal)
	assert.Equal(t, "V-B", result.Items[1].VendorID)

	ledger.AssertExpectations(t)
}

func TestPriceAndReserve_ReportsRemainingStock(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedger)
	validator := NewValidator(ledger, zerolog.Nop())

	ledger.On("GetByID", ctx, "P001").Return(product("P001", "Widget", 10.00, 5, "V-A"), nil)
	ledger.On("DecrementStock", ctx, "P001", 3).Return(true, nil)

	result, err := validator.PriceAndReserve(ctx, nil, []model.OrderItemRequest{
		{ProductID: "P001", Quantity: 3},
	})

	require.NoError(t, err)
	require.Len(t, result.Stock, 1)
	assert.Equal(t, "P001", result.Stock[0].ProductID)
	assert.Equal(t, 2, result.Stock[0].Remaining)
	assert.Equal(t, "V-A", result.Stock[0].VendorID)
}

func TestPriceAndReserve_ProductNotFound(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedger)
	validator := NewValidator(ledger, zerolog.Nop())

	ledger.On("GetByID", ctx, "P001").Return(product("P001", "Widget", 10.00, 5, "V-A"), nil)
	ledger.On("GetByID", ctx, "MISSING").Return(nil, nil)

	result, err := validator.PriceAndReserve(ctx, nil, []model.OrderItemRequest{
		{ProductID: "P001", Quantity: 1},
		{ProductID: "MISSING", Quantity: 1},
	})

	require.Error(t, err)
	assert.Nil(t, result)

	var notFound *model.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "MISSING", notFound.ProductID)

	// Validation failed before the apply phase, so nothing was decremented.
	ledger.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestPriceAndReserve_InactiveProductIsNotPurchasable(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedger)
	validator := NewValidator(ledger, zerolog.Nop())

	withdrawn := product("P001", "Widget", 10.00, 5, "V-A")
	withdrawn.IsActive = false
	ledger.On("GetByID", ctx, "P001").Return(withdrawn, nil)

	_, err := validator.PriceAndReserve(ctx, nil, []model.OrderItemRequest{
		{ProductID: "P001", Quantity: 1},
	})

	var notFound *model.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestPriceAndReserve_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedger)
	validator := NewValidator(ledger, zerolog.Nop())

	ledger.On("GetByID", ctx, "P001").Return(product("P001", "Widget", 10.00, 2, "V-A"), nil)

	_, err := validator.PriceAndReserve(ctx, nil, []model.OrderItemRequest{
		{ProductID: "P001", Quantity: 3},
	})

	var stock *model.InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, "P001", stock.ProductID)
	assert.Equal(t, 2, stock.Available)
	assert.Equal(t, 3, stock.Requested)

	ledger.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestPriceAndReserve_DuplicateItemsShareOneBalance(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedger)
	validator := NewValidator(ledger, zerolog.Nop())

	// Stock of 3 covers neither 2+2; the second line must fail even though
	// each line alone would pass.
	ledger.On("GetByID", ctx, "P001").Return(product("P001", "Widget", 10.00, 3, "V-A"), nil).Once()

	_, err := validator.PriceAndReserve(ctx, nil, []model.OrderItemRequest{
		{ProductID: "P001", Quantity: 2},
		{ProductID: "P001", Quantity: 2},
	})

	var stock *model.InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, 1, stock.Available)
	assert.Equal(t, 2, stock.Requested)
}

func TestPriceAndReserve_DuplicateItemsPricedIndependently(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedger)
	validator := NewValidator(ledger, zerolog.Nop())

	ledger.On("GetByID", ctx, "P001").Return(product("P001", "Widget", 10.00, 5, "V-A"), nil).Once()
	ledger.On("DecrementStock", ctx, "P001", 2).Return(true, nil).Once()
	ledger.On("DecrementStock", ctx, "P001", 1).Return(true, nil).Once()

	result, err := validator.PriceAndReserve(ctx, nil, []model.OrderItemRequest{
		{ProductID: "P001", Quantity: 2},
		{ProductID: "P001", Quantity: 1},
	})

	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, 30.00, result.TotalPrice)
	require.Len(t, result.Stock, 1)
	assert.Equal(t, 2, result.Stock[0].Remaining)

	ledger.AssertExpectations(t)
}

func TestPriceAndReserve_InvalidQuantity(t *testing.T) {
	ledger := new(MockLedger)
	validator := NewValidator(ledger, zerolog.Nop())

	_, err := validator.PriceAndReserve(context.Background(), nil, []model.OrderItemRequest{
		{ProductID: "P001", Quantity: 0},
	})

	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
}

func TestPriceAndReserve_LostRaceSurfacesAsInsufficientStock(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedger)
	validator := NewValidator(ledger, zerolog.Nop())

	// Validation sees stock, but another order takes it before the apply
	// phase; the conditional decrement reports the lost race.
	ledger.On("GetByID", ctx, "P001").Return(product("P001", "Widget", 10.00, 1, "V-A"), nil)
	ledger.On("DecrementStock", ctx, "P001", 1).Return(false, nil)

	_, err := validator.PriceAndReserve(ctx, nil, []model.OrderItemRequest{
		{ProductID: "P001", Quantity: 1},
	})

	var stock *model.InsufficientStockError
	require.ErrorAs(t, err, &stock)
}

func TestPriceAndReserve_LedgerErrorIsWrapped(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedger)
	validator := NewValidator(ledger, zerolog.Nop())

	ledger.On("GetByID", ctx, "P001").Return(nil, errors.New("connection reset"))

	_, err := validator.PriceAndReserve(ctx, nil, []model.OrderItemRequest{
		{ProductID: "P001", Quantity: 1},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "P001")
}
