package model

import "time"

// Product represents a vendor's catalogue entry. The order engine reads
// price, stock and the active flag, and writes stock back on order creation.
type Product struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Price       float64    `json:"price" db:"price"`
	Stock       int        `json:"stock" db:"stock"`
	IsActive    bool       `json:"isActive" db:"is_active"`
	CategoryID  string     `json:"categoryId" db:"category_id"`
	VendorID    string     `json:"vendorId" db:"vendor_id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

// ProductPatch is a partial update for a product. Nil fields were omitted
// from the request and are left untouched; non-nil fields are written as
// given, so an explicit empty value clears the field.
type ProductPatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	CategoryID  *string  `json:"categoryId,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (p *ProductPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.Stock == nil && p.CategoryID == nil
}
