package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "cheftrack"

// Ingestion outcomes
const (
	OutcomeCreated  = "created"
	OutcomeExisting = "existing"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
)

// InventoryMetrics counts barcode ingestions and cache lookups.
type InventoryMetrics struct {
	ingestions   *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	expiring     prometheus.Gauge
}

// NewInventoryMetrics registers the inventory metrics on reg. A nil
// registerer yields a collector whose methods do nothing.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	ingestions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingestions_total",
		Help:      "Barcode scan ingestions by outcome.",
	}, []string{"outcome"})
	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "barcode_cache_lookups_total",
		Help:      "Barcode cache lookups by result.",
	}, []string{"result"})
	expiring := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "batches_expiring_soon",
		Help:      "Batches found expiring soon by the last expiry scan.",
	})
	reg.MustRegister(ingestions, cacheLookups, expiring)
	return &InventoryMetrics{
		ingestions:   ingestions,
		cacheLookups: cacheLookups,
		expiring:     expiring,
	}
}

// IncIngestion counts one ingestion with the given outcome.
func (m *InventoryMetrics) IncIngestion(outcome string) {
	if m == nil || m.ingestions == nil {
		return
	}
	m.ingestions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncCacheLookup counts a barcode cache hit or miss.
func (m *InventoryMetrics) IncCacheLookup(hit bool) {
	if m == nil || m.cacheLookups == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// SetExpiringSoon records the size of the last expiry scan.
func (m *InventoryMetrics) SetExpiringSoon(n int) {
	if m == nil || m.expiring == nil {
		return
	}
	m.expiring.Set(float64(n))
}
