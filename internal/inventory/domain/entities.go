// Package domain holds the inventory entities, the request payloads that
// create them and the expiry status rules applied when batches are read.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount rendered with two fraction digits ("2.50")
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MarshalJSON renders the amount as a fixed two-digit string
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}

// Category groups products. Names are not unique.
type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Product is a catalog entry identified by its barcode
type Product struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Barcode       string    `db:"barcode" json:"barcode"`
	CategoryID    *string   `db:"category_id" json:"category"`
	CategoryName  *string   `db:"category_name" json:"category_name"`
	Brand         string    `db:"brand" json:"brand"`
	UnitPrice     Money     `db:"unit_price" json:"unit_price"`
	ShelfLifeDays int       `db:"shelf_life_days" json:"shelf_life_days"`
	Description   string    `db:"description" json:"description"`
	ImageURL      string    `db:"image_url" json:"image_url"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Batch is a quantity of one product bought together
type Batch struct {
	ID           string    `db:"id" json:"id"`
	ProductID    string    `db:"product_id" json:"product"`
	Quantity     int       `db:"quantity" json:"quantity"`
	PurchaseDate time.Time `db:"purchase_date" json:"purchase_date"`
	ExpiryDate   time.Time `db:"expiry_date" json:"expiry_date"`
	BatchNumber  *string   `db:"batch_number" json:"batch_number"`
	Supplier     string    `db:"supplier" json:"supplier"`
	CostPrice    Money     `db:"cost_price" json:"cost_price"`
	IsExpired    bool      `db:"is_expired" json:"is_expired"`
	AddedBy      *string   `db:"added_by" json:"added_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// BatchWithProduct is a batch row joined with its product
type BatchWithProduct struct {
	Batch
	ProductName    string `db:"product_name"`
	ProductBarcode string `db:"product_barcode"`
}

// View computes the read model of the row at now
func (b *BatchWithProduct) View(now time.Time) *BatchView {
	return NewBatchView(&b.Batch, &Product{
		ID:      b.ProductID,
		Name:    b.ProductName,
		Barcode: b.ProductBarcode,
	}, now)
}

// UsageLog records consumption from a batch. It does not change the
// batch quantity.
type UsageLog struct {
	ID           string    `db:"id" json:"id"`
	InventoryID  string    `db:"inventory_id" json:"inventory"`
	QuantityUsed int       `db:"quantity_used" json:"quantity_used"`
	UsedBy       *string   `db:"used_by" json:"used_by"`
	Notes        string    `db:"notes" json:"notes"`
	ProductName  string    `db:"product_name" json:"product_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DashboardStats summarises the inventory
type DashboardStats struct {
	TotalItems      int64 `db:"total_items" json:"total_items"`
	ExpiringSoon    int64 `db:"expiring_soon" json:"expiring_soon"`
	ExpiredItems    int64 `db:"expired_items" json:"expired_items"`
	TotalCategories int64 `db:"total_categories" json:"total_categories"`
}
