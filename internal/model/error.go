package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeInvariantViolation = "INVARIANT_VIOLATION"
	ErrCodeOrderHasPending    = "ORDER_PENDING_FOR_PRODUCT"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business-rule error with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrEmptyOrder        = NewDomainError(ErrCodeInvalidInput, "Order must contain at least one item")
	ErrEmptyNote         = NewDomainError(ErrCodeInvalidInput, "The note field is required")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidInput, "Quantity must be greater than zero")
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrProductHasPending = NewDomainError(ErrCodeOrderHasPending, "Product has pending orders and cannot be deleted")
)

// ProductNotFoundError identifies which requested product was absent (or
// withdrawn from sale) during order creation.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID %s not found", e.ProductID)
}

// InsufficientStockError identifies which product could not cover the
// requested quantity.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for product %s: %d available, %d requested",
		e.ProductName, e.Available, e.Requested)
}

// InvariantViolationError flags a broken internal invariant, e.g. a computed
// total that does not match its line items. It indicates a bug, not bad input.
type InvariantViolationError struct {
	Message string
}

func (e *InvariantViolationError) Error() string {
	return e.Message
}
