package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_DecodesNumbersAndStrings(t *testing.T) {
	var req struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
		D Amount `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 2.5, "b": "3.10", "c": null, "d": "abc"}`), &req))

	assert.Equal(t, Amount{Raw: "2.5", Set: true}, req.A)
	assert.Equal(t, Amount{Raw: "3.10", Set: true}, req.B)
	assert.False(t, req.C.Set)
	assert.Equal(t, "abc", req.D.Raw)
}

func TestAmount_Parse(t *testing.T) {
	tests := []struct {
		raw     Amount
		want    string
		wantMsg string
	}{
		{Amount{Raw: "2.5", Set: true}, "2.5", ""},
		{Amount{Raw: " 0 ", Set: true}, "0", ""},
		{Amount{Raw: "1.500", Set: true}, "1.5", ""},
		{Amount{}, "", "this field is required"},
		{Amount{Raw: "", Set: true}, "", "this field is required"},
		{Amount{Raw: "abc", Set: true}, "", "must be a valid number"},
		{Amount{Raw: "-1", Set: true}, "", "must be greater than or equal to 0"},
		{Amount{Raw: "1.234", Set: true}, "", "must have no more than 2 decimal places"},
		{Amount{Raw: "100000000", Set: true}, "", "must have no more than 10 digits"},
	}

	for _, tt := range tests {
		t.Run(tt.raw.Raw, func(t *testing.T) {
			d, msg := tt.raw.Parse()
			assert.Equal(t, tt.wantMsg, msg)
			if tt.wantMsg == "" {
				assert.Equal(t, tt.want, d.String())
			}
		})
	}
}

func TestDateInput_Parse(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)

	got, msg := DateInput{Raw: "2025-06-15T10:00:00Z", Set: true}.Parse(loc)
	assert.Empty(t, msg)
	assert.True(t, got.Equal(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)))

	got, msg = DateInput{Raw: "2025-06-15", Set: true}.Parse(loc)
	assert.Empty(t, msg)
	assert.True(t, got.Equal(time.Date(2025, 6, 15, 0, 0, 0, 0, loc)))

	_, msg = DateInput{Raw: "not a date", Set: true}.Parse(loc)
	assert.Equal(t, "must be a valid date", msg)

	_, msg = DateInput{}.Parse(loc)
	assert.Equal(t, "this field is required", msg)
}

func TestIngestRequest_NormalizeAppliesDefaults(t *testing.T) {
	body := `{
		"product": {"barcode": " 0001 ", "name": "Milk", "unit_price": 2.5},
		"quantity": 2,
		"purchase_date": "2025-06-10T08:00:00Z",
		"expiry_date": "2025-06-15T08:00:00Z",
		"supplier": "Dairy Co",
		"cost_price": "1.50"
	}`
	var req IngestRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	in, details := req.Normalize("Food & Beverages", time.UTC)
	assert.Empty(t, details)
	assert.Equal(t, "Food & Beverages", in.CategoryName)
	assert.Equal(t, "0001", in.Product.Barcode)
	assert.Equal(t, DefaultShelfLifeDays, in.Product.ShelfLifeDays)
	assert.Equal(t, "2.50", in.Product.UnitPrice.StringFixed(2))
	assert.Equal(t, 2, in.Batch.Quantity)
	assert.Equal(t, "1.50", in.Batch.CostPrice.StringFixed(2))
	assert.Nil(t, in.Batch.BatchNumber)
	assert.Equal(t, 15, in.Batch.ExpiryDate.Day())
}

func TestIngestRequest_NormalizeReportsFieldProblems(t *testing.T) {
	body := `{
		"product": {"barcode": "0001", "name": "Milk", "unit_price": "abc", "category": "Dairy", "shelf_life_days": 3},
		"quantity": 1,
		"purchase_date": "yesterday-ish",
		"supplier": "Dairy Co",
		"cost_price": -2,
		"batch_number": "L-7"
	}`
	var req IngestRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	in, details := req.Normalize("Food & Beverages", time.UTC)
	assert.Equal(t, map[string]string{
		"product.unit_price": "must be a valid number",
		"cost_price":         "must be greater than or equal to 0",
		"purchase_date":      "must be a valid date",
		"expiry_date":        "this field is required",
	}, details)
	assert.Equal(t, "Dairy", in.CategoryName)
	assert.Equal(t, 3, in.Product.ShelfLifeDays)
	require.NotNil(t, in.Batch.BatchNumber)
	assert.Equal(t, "L-7", *in.Batch.BatchNumber)
}

func TestProductRequest_Normalize(t *testing.T) {
	req := ProductRequest{Name: "Eggs", Barcode: "0002", UnitPrice: Amount{Raw: "4", Set: true}}
	p, details := req.Normalize()
	assert.Empty(t, details)
	assert.Equal(t, "4.00", p.UnitPrice.StringFixed(2))
	assert.Equal(t, DefaultShelfLifeDays, p.ShelfLifeDays)

	_, details = (&ProductRequest{Name: "Eggs", Barcode: "0002"}).Normalize()
	assert.Equal(t, "this field is required", details["unit_price"])
}
