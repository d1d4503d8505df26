package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// Amount is a money value as sent by a client. Scanners send prices both
// as JSON numbers and as strings, so decoding never fails; Parse reports
// a bad value against the field instead.
type Amount struct {
	Raw string
	Set bool
}

// UnmarshalJSON accepts a number, a string or null
func (a *Amount) UnmarshalJSON(b []byte) error {
	a.Raw, a.Set = rawJSONValue(b)
	return nil
}

// MarshalJSON writes the raw value back as a string
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Set {
		return []byte("null"), nil
	}
	return json.Marshal(a.Raw)
}

// AmountOf builds an Amount from a decimal
func AmountOf(d decimal.Decimal) Amount {
	return Amount{Raw: d.String(), Set: true}
}

// Parse validates the amount. A non-empty message means it is invalid.
func (a Amount) Parse() (decimal.Decimal, string) {
	if !a.Set || strings.TrimSpace(a.Raw) == "" {
		return decimal.Zero, "this field is required"
	}
	d, err := decimal.NewFromString(strings.TrimSpace(a.Raw))
	if err != nil {
		return decimal.Zero, "must be a valid number"
	}
	if d.IsNegative() {
		return decimal.Zero, "must be greater than or equal to 0"
	}
	if d.Exponent() < -2 && !d.Equal(d.Truncate(2)) {
		return decimal.Zero, "must have no more than 2 decimal places"
	}
	if d.GreaterThanOrEqual(decimal.New(1, 8)) {
		return decimal.Zero, "must have no more than 10 digits"
	}
	return d.Round(2), ""
}

// DateInput is a date or datetime as sent by a client. Any layout
// dateparse understands is accepted; values without a zone are read in
// the service timezone.
type DateInput struct {
	Raw string
	Set bool
}

// UnmarshalJSON accepts a string, a number or null
func (d *DateInput) UnmarshalJSON(b []byte) error {
	d.Raw, d.Set = rawJSONValue(b)
	return nil
}

// MarshalJSON writes the raw value back as a string
func (d DateInput) MarshalJSON() ([]byte, error) {
	if !d.Set {
		return []byte("null"), nil
	}
	return json.Marshal(d.Raw)
}

// DateOf builds a DateInput from t
func DateOf(t time.Time) DateInput {
	return DateInput{Raw: t.Format(time.RFC3339), Set: true}
}

// Parse validates the date. A non-empty message means it is invalid.
func (d DateInput) Parse(loc *time.Location) (time.Time, string) {
	raw := strings.TrimSpace(d.Raw)
	if !d.Set || raw == "" {
		return time.Time{}, "this field is required"
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := dateparse.ParseIn(raw, loc)
	if err != nil {
		return time.Time{}, "must be a valid date"
	}
	return t, ""
}

func rawJSONValue(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", false
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			return s, true
		}
	}
	return string(b), true
}

// ProductInput is the product half of a scan
type ProductInput struct {
	Barcode       string `json:"barcode" validate:"required,max=100"`
	Name          string `json:"name" validate:"required,max=200"`
	Category      string `json:"category" validate:"max=100"`
	Brand         string `json:"brand" validate:"max=100"`
	UnitPrice     Amount `json:"unit_price"`
	Description   string `json:"description"`
	ImageURL      string `json:"image_url" validate:"omitempty,url"`
	ShelfLifeDays *int   `json:"shelf_life_days" validate:"omitempty,gte=0,max=2147483647"`
}

// IngestRequest is a barcode scan: the scanned product plus the batch
// that was bought
type IngestRequest struct {
	Product      ProductInput `json:"product"`
	Quantity     *int         `json:"quantity" validate:"required,gte=0,max=2147483647"`
	PurchaseDate DateInput    `json:"purchase_date"`
	ExpiryDate   DateInput    `json:"expiry_date"`
	BatchNumber  string       `json:"batch_number" validate:"max=100"`
	Supplier     string       `json:"supplier" validate:"required,max=200"`
	CostPrice    Amount       `json:"cost_price"`
}

// CategoryRequest creates or replaces a category
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

// ProductRequest creates or replaces a product
type ProductRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	Barcode       string  `json:"barcode" validate:"required,max=100"`
	CategoryID    *string `json:"category" validate:"omitempty,uuid"`
	Brand         string  `json:"brand" validate:"max=100"`
	UnitPrice     Amount  `json:"unit_price"`
	ShelfLifeDays *int    `json:"shelf_life_days" validate:"omitempty,gte=0,max=2147483647"`
	Description   string  `json:"description"`
	ImageURL      string  `json:"image_url" validate:"omitempty,url"`
}

// BatchRequest creates or replaces a batch directly
type BatchRequest struct {
	ProductID    string    `json:"product" validate:"required,uuid"`
	Quantity     *int      `json:"quantity" validate:"required,gte=0,max=2147483647"`
	PurchaseDate DateInput `json:"purchase_date"`
	ExpiryDate   DateInput `json:"expiry_date"`
	BatchNumber  string    `json:"batch_number" validate:"max=100"`
	Supplier     string    `json:"supplier" validate:"required,max=200"`
	CostPrice    Amount    `json:"cost_price"`
	IsExpired    bool      `json:"is_expired"`
}

// UsageLogRequest records consumption from a batch
type UsageLogRequest struct {
	InventoryID  string `json:"inventory" validate:"required,uuid"`
	QuantityUsed *int   `json:"quantity_used" validate:"required,gte=0,max=2147483647"`
	Notes        string `json:"notes"`
}

// BatchFilter narrows a batch listing
type BatchFilter struct {
	ProductID string
	Status    Status
}

// ProductFilter narrows a product listing
type ProductFilter struct {
	CategoryID string
	Search     string
}
