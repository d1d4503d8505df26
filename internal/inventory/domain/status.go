package domain

import "time"

// Status is the expiry classification of a batch
type Status string

const (
	StatusExpired      Status = "expired"
	StatusExpiringSoon Status = "expiring_soon"
	StatusGood         Status = "good"
)

// ExpiringSoonThreshold is the number of days ahead that counts as expiring soon
const ExpiringSoonThreshold = 7

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusExpired, StatusExpiringSoon, StatusGood:
		return true
	}
	return false
}

// DaysUntilExpiry returns the number of calendar days from now to expiry,
// both taken as dates in now's location. Nil when expiry is nil.
func DaysUntilExpiry(expiry *time.Time, now time.Time) *int {
	if expiry == nil {
		return nil
	}
	loc := now.Location()
	e := expiry.In(loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC)
	days := int(to.Sub(from).Hours() / 24)
	return &days
}

// IsExpiringSoon reports whether days falls in (0, ExpiringSoonThreshold].
// Today (0) and past dates are not expiring soon.
func IsExpiringSoon(days *int) bool {
	return days != nil && *days > 0 && *days <= ExpiringSoonThreshold
}

// ClassifyStatus derives the status from the stored flag and the day count.
// The flag wins; a past expiry date alone does not make a batch expired.
func ClassifyStatus(isExpired bool, days *int) Status {
	switch {
	case isExpired:
		return StatusExpired
	case IsExpiringSoon(days):
		return StatusExpiringSoon
	default:
		return StatusGood
	}
}

// BatchView is a batch as returned to callers, with product details and
// the computed expiry fields
type BatchView struct {
	Batch
	ProductName     string `json:"product_name"`
	ProductBarcode  string `json:"product_barcode"`
	DaysUntilExpiry *int   `json:"days_until_expiry"`
	Status          Status `json:"status"`
}

// NewBatchView builds the read model of batch at now
func NewBatchView(batch *Batch, product *Product, now time.Time) *BatchView {
	expiry := batch.ExpiryDate
	days := DaysUntilExpiry(&expiry, now)

	view := &BatchView{
		Batch:           *batch,
		DaysUntilExpiry: days,
		Status:          ClassifyStatus(batch.IsExpired, days),
	}
	if product != nil {
		view.ProductName = product.Name
		view.ProductBarcode = product.Barcode
	}
	return view
}
