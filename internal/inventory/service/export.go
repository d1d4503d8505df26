package service

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/gocarina/gocsv"
)

const exportDateLayout = "2006-01-02"

// BatchExportRow is one line of the batch CSV export
type BatchExportRow struct {
	ID              string `csv:"id"`
	ProductName     string `csv:"product_name"`
	ProductBarcode  string `csv:"product_barcode"`
	Quantity        int    `csv:"quantity"`
	PurchaseDate    string `csv:"purchase_date"`
	ExpiryDate      string `csv:"expiry_date"`
	DaysUntilExpiry string `csv:"days_until_expiry"`
	Status          string `csv:"status"`
	BatchNumber     string `csv:"batch_number"`
	Supplier        string `csv:"supplier"`
	CostPrice       string `csv:"cost_price"`
	IsExpired       bool   `csv:"is_expired"`
}

// ExportBatches writes every batch matching filter to w as CSV
func (s *InventoryService) ExportBatches(ctx context.Context, filter domain.BatchFilter, w io.Writer) error {
	batches, _, err := s.ListBatches(ctx, filter, 0, 0)
	if err != nil {
		return err
	}

	rows := make([]*BatchExportRow, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, exportRow(b, s.cfg.Location))
	}
	return gocsv.Marshal(rows, w)
}

func exportRow(b *domain.BatchView, loc *time.Location) *BatchExportRow {
	row := &BatchExportRow{
		ID:             b.ID,
		ProductName:    b.ProductName,
		ProductBarcode: b.ProductBarcode,
		Quantity:       b.Quantity,
		PurchaseDate:   b.PurchaseDate.In(loc).Format(exportDateLayout),
		ExpiryDate:     b.ExpiryDate.In(loc).Format(exportDateLayout),
		Status:         string(b.Status),
		Supplier:       b.Supplier,
		CostPrice:      b.CostPrice.StringFixed(2),
		IsExpired:      b.IsExpired,
	}
	if b.DaysUntilExpiry != nil {
		row.DaysUntilExpiry = strconv.Itoa(*b.DaysUntilExpiry)
	}
	if b.BatchNumber != nil {
		row.BatchNumber = *b.BatchNumber
	}
	return row
}
