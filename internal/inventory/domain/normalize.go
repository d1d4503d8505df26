package domain

import (
	"strings"
	"time"
)

// DefaultShelfLifeDays applies when a product does not state its shelf life
const DefaultShelfLifeDays = 7

// Ingestion is a scan after parsing and defaulting
type Ingestion struct {
	CategoryName string
	Product      Product
	Batch        Batch
}

// Normalize parses the lenient fields of a scan and applies defaults.
// Problems are returned keyed by JSON path.
func (r *IngestRequest) Normalize(defaultCategory string, loc *time.Location) (*Ingestion, map[string]string) {
	details := map[string]string{}

	in := &Ingestion{
		CategoryName: strings.TrimSpace(r.Product.Category),
		Product: Product{
			Name:          strings.TrimSpace(r.Product.Name),
			Barcode:       strings.TrimSpace(r.Product.Barcode),
			Brand:         strings.TrimSpace(r.Product.Brand),
			ShelfLifeDays: DefaultShelfLifeDays,
			Description:   r.Product.Description,
			ImageURL:      strings.TrimSpace(r.Product.ImageURL),
		},
		Batch: Batch{
			Supplier:    strings.TrimSpace(r.Supplier),
			BatchNumber: optional(r.BatchNumber),
		},
	}
	if in.CategoryName == "" {
		in.CategoryName = defaultCategory
	}
	if r.Product.ShelfLifeDays != nil {
		in.Product.ShelfLifeDays = *r.Product.ShelfLifeDays
	}
	if r.Quantity != nil {
		in.Batch.Quantity = *r.Quantity
	}

	if price, msg := r.Product.UnitPrice.Parse(); msg != "" {
		details["product.unit_price"] = msg
	} else {
		in.Product.UnitPrice = NewMoney(price)
	}
	if cost, msg := r.CostPrice.Parse(); msg != "" {
		details["cost_price"] = msg
	} else {
		in.Batch.CostPrice = NewMoney(cost)
	}
	if t, msg := r.PurchaseDate.Parse(loc); msg != "" {
		details["purchase_date"] = msg
	} else {
		in.Batch.PurchaseDate = t
	}
	if t, msg := r.ExpiryDate.Parse(loc); msg != "" {
		details["expiry_date"] = msg
	} else {
		in.Batch.ExpiryDate = t
	}

	return in, details
}

// Normalize parses the request into a Product
func (r *ProductRequest) Normalize() (*Product, map[string]string) {
	details := map[string]string{}

	p := &Product{
		Name:          strings.TrimSpace(r.Name),
		Barcode:       strings.TrimSpace(r.Barcode),
		CategoryID:    r.CategoryID,
		Brand:         strings.TrimSpace(r.Brand),
		ShelfLifeDays: DefaultShelfLifeDays,
		Description:   r.Description,
		ImageURL:      strings.TrimSpace(r.ImageURL),
	}
	if r.ShelfLifeDays != nil {
		p.ShelfLifeDays = *r.ShelfLifeDays
	}
	if price, msg := r.UnitPrice.Parse(); msg != "" {
		details["unit_price"] = msg
	} else {
		p.UnitPrice = NewMoney(price)
	}

	return p, details
}

// Normalize parses the request into a Batch
func (r *BatchRequest) Normalize(loc *time.Location) (*Batch, map[string]string) {
	details := map[string]string{}

	b := &Batch{
		ProductID:   r.ProductID,
		BatchNumber: optional(r.BatchNumber),
		Supplier:    strings.TrimSpace(r.Supplier),
		IsExpired:   r.IsExpired,
	}
	if r.Quantity != nil {
		b.Quantity = *r.Quantity
	}
	if cost, msg := r.CostPrice.Parse(); msg != "" {
		details["cost_price"] = msg
	} else {
		b.CostPrice = NewMoney(cost)
	}
	if t, msg := r.PurchaseDate.Parse(loc); msg != "" {
		details["purchase_date"] = msg
	} else {
		b.PurchaseDate = t
	}
	if t, msg := r.ExpiryDate.Parse(loc); msg != "" {
		details["expiry_date"] = msg
	} else {
		b.ExpiryDate = t
	}

	return b, details
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
