package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"vendora/internal/handler"
	"vendora/internal/model"
	"vendora/internal/pricing"
	"vendora/internal/repository"
	"vendora/internal/router"
	"vendora/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T, testDB *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	productLedger := repository.NewProductLedger(testDB.Pool, logger)
	orderStore := repository.NewOrderStore(testDB.Pool, logger)

	validator := pricing.NewValidator(productLedger, logger)
	notifier := service.NewLogNotifier(logger)

	orderService := service.NewOrderService(orderStore, validator, notifier, 5, logger)
	productService := service.NewProductService(productLedger, orderService, logger)

	productHandler := handler.NewProductHandler(productService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)

	return router.New(productHandler, orderHandler, "test-api-key", logger)
}

func apiRequest(server http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-API-Key", "test-api-key")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func decodeOrder(t *testing.T, w *httptest.ResponseRecorder) model.Order {
	t.Helper()

	var order model.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&order))
	return order
}

func TestOrderAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("POST /api/orders creates an order and deducts stock", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		w := apiRequest(server, http.MethodPost, "/api/orders", model.OrderRequest{
			CustomerID: "C001",
			Items: []model.OrderItemRequest{
				{ProductID: "P001", Quantity: 2},
				{ProductID: "P002", Quantity: 1},
			},
		})

		require.Equal(t, http.StatusCreated, w.Code)

		order := decodeOrder(t, w)
		assert.Equal(t, model.OrderStatusProcessing, order.Status)
		assert.Equal(t, 25.00, order.TotalPrice)
		require.Len(t, order.Items, 2)
		require.Len(t, order.VendorStatuses, 2)

		wp := apiRequest(server, http.MethodGet, "/api/products/P001", nil)
		require.Equal(t, http.StatusOK, wp.Code)
		var product model.Product
		require.NoError(t, json.NewDecoder(wp.Body).Decode(&product))
		assert.Equal(t, 18, product.Stock)
	})

	t.Run("POST /api/orders with a missing product leaves stock untouched", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		w := apiRequest(server, http.MethodPost, "/api/orders", model.OrderRequest{
			CustomerID: "C001",
			Items: []model.OrderItemRequest{
				{ProductID: "P001", Quantity: 2},
				{ProductID: "P999", Quantity: 1},
			},
		})

		require.Equal(t, http.StatusBadRequest, w.Code)

		wp := apiRequest(server, http.MethodGet, "/api/products/P001", nil)
		var product model.Product
		require.NoError(t, json.NewDecoder(wp.Body).Decode(&product))
		assert.Equal(t, 20, product.Stock)
	})

	t.Run("POST /api/orders rejects an inactive product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		// P005 is seeded inactive.
		w := apiRequest(server, http.MethodPost, "/api/orders", model.OrderRequest{
			CustomerID: "C001",
			Items:      []model.OrderItemRequest{{ProductID: "P005", Quantity: 1}},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("POST /api/orders rejects duplicate lines exceeding one balance", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		// P004 holds 6 units; 4+4 passes per line but not combined.
		w := apiRequest(server, http.MethodPost, "/api/orders", model.OrderRequest{
			CustomerID: "C001",
			Items: []model.OrderItemRequest{
				{ProductID: "P004", Quantity: 4},
				{ProductID: "P004", Quantity: 4},
			},
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("cancel stores the note and is terminal", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		w := apiRequest(server, http.MethodPost, "/api/orders", model.OrderRequest{
			CustomerID: "C001",
			Items:      []model.OrderItemRequest{{ProductID: "P001", Quantity: 1}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		order := decodeOrder(t, w)

		w = apiRequest(server, http.MethodPut, "/api/orders/"+order.ID.String()+"/cancel",
			model.CancelOrderRequest{Note: "changed my mind"})
		require.Equal(t, http.StatusOK, w.Code)
		cancelled := decodeOrder(t, w)
		assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
		assert.Equal(t, "changed my mind", cancelled.Note)

		// Delivering a cancelled order is a silent no-op.
		w = apiRequest(server, http.MethodPut, "/api/orders/"+order.ID.String()+"/deliver", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, model.OrderStatusCancelled, decodeOrder(t, w).Status)
	})

	t.Run("vendor-by-vendor delivery completes the order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		w := apiRequest(server, http.MethodPost, "/api/orders", model.OrderRequest{
			CustomerID: "C001",
			Items: []model.OrderItemRequest{
				{ProductID: "P001", Quantity: 2},
				{ProductID: "P002", Quantity: 1},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		order := decodeOrder(t, w)

		w = apiRequest(server, http.MethodPut,
			"/api/orders/"+order.ID.String()+"/partially-delivered/V-A", nil)
		require.Equal(t, http.StatusOK, w.Code)
		partial := decodeOrder(t, w)
		assert.Equal(t, model.OrderStatusProcessing, partial.Status)
		assert.True(t, partial.PartiallyDelivered)

		w = apiRequest(server, http.MethodPut,
			"/api/orders/"+order.ID.String()+"/partially-delivered/V-B", nil)
		require.Equal(t, http.StatusOK, w.Code)
		done := decodeOrder(t, w)
		assert.Equal(t, model.OrderStatusDelivered, done.Status)
		assert.False(t, done.PartiallyDelivered)
		for _, item := range done.Items {
			assert.True(t, item.Delivered)
		}
	})

	t.Run("customer and vendor listings", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		w := apiRequest(server, http.MethodPost, "/api/orders", model.OrderRequest{
			CustomerID: "C001",
			Items:      []model.OrderItemRequest{{ProductID: "P002", Quantity: 1}},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = apiRequest(server, http.MethodGet, "/api/orders/customer/C001", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var orders []model.Order
		require.NoError(t, json.NewDecoder(w.Body).Decode(&orders))
		assert.Len(t, orders, 1)

		w = apiRequest(server, http.MethodGet, "/api/orders/vendor/V-B", nil)
		require.Equal(t, http.StatusOK, w.Code)
		orders = nil
		require.NoError(t, json.NewDecoder(w.Body).Decode(&orders))
		assert.Len(t, orders, 1)
	})

	t.Run("product deletion is refused while an order is pending", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		w := apiRequest(server, http.MethodPost, "/api/orders", model.OrderRequest{
			CustomerID: "C001",
			Items:      []model.OrderItemRequest{{ProductID: "P001", Quantity: 1}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		order := decodeOrder(t, w)

		w = apiRequest(server, http.MethodDelete, "/api/products/P001", nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = apiRequest(server, http.MethodPut, "/api/orders/"+order.ID.String()+"/cancel",
			model.CancelOrderRequest{Note: "freeing the product"})
		require.Equal(t, http.StatusOK, w.Code)

		w = apiRequest(server, http.MethodDelete, "/api/products/P001", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestOrderAPI_ConcurrentLastUnit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	CleanupDB(t, testDB.Pool)
	SeedProducts(t, testDB.Pool)

	// P003 holds exactly one unit. Two orders race for it; the conditional
	// decrement must hand it to exactly one of them.
	request := model.OrderRequest{
		CustomerID: "C001",
		Items:      []model.OrderItemRequest{{ProductID: "P003", Quantity: 1}},
	}

	results := make([]int, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = apiRequest(server, http.MethodPost, "/api/orders", request).Code
		}(i)
	}
	wg.Wait()

	created, conflicted := 0, 0
	for _, code := range results {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, conflicted)

	w := apiRequest(server, http.MethodGet, "/api/products/P003", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var product model.Product
	require.NoError(t, json.NewDecoder(w.Body).Decode(&product))
	assert.Zero(t, product.Stock)
}
