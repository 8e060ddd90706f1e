// internal/monitoring/metrics.go
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Page outcome labels.
const (
	PageExtracted    = "extracted"
	PageNoData       = "no_structured_data"
	PageNavFailed    = "navigation_failed"
	PageParseFailed  = "parse_failed"
	RejectUnparsable = "unparseable_price"
	RejectThreshold  = "below_threshold"
)

// MetricsManager owns the run's Prometheus collectors on a private registry.
// A nil *MetricsManager is valid and records nothing.
type MetricsManager struct {
	registry *prometheus.Registry

	pagesTotal       *prometheus.CounterVec
	pageDuration     prometheus.Histogram
	listingsTotal    *prometheus.CounterVec
	variantsTotal    prometheus.Counter
	offersRejected   *prometheus.CounterVec
	uniqueRecords    prometheus.Gauge
	duplicateRecords prometheus.Gauge
	upsertsTotal     *prometheus.CounterVec
	outputErrors     *prometheus.CounterVec
}

// MetricsConfig configuration for metrics
type MetricsConfig struct {
	Namespace       string
	Subsystem       string
	EnableGoMetrics bool
}

// NewMetricsManager creates a new metrics manager
func NewMetricsManager(config MetricsConfig) *MetricsManager {
	if config.Namespace == "" {
		config.Namespace = "productscrapexter"
	}
	if config.Subsystem == "" {
		config.Subsystem = "pipeline"
	}

	reg := prometheus.NewRegistry()
	if config.EnableGoMetrics {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	factory := promauto.With(reg)
	ns, sub := config.Namespace, config.Subsystem

	return &MetricsManager{
		registry: reg,
		pagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "pages_total",
			Help: "Product pages processed, by outcome",
		}, []string{"status"}),
		pageDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: sub,
			Name:    "page_duration_seconds",
			Help:    "Time spent loading and extracting one product page",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		listingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "product_links_total",
			Help: "Product links discovered, by category",
		}, []string{"category"}),
		variantsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "variants_total",
			Help: "Variant records admitted",
		}),
		offersRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "offers_rejected_total",
			Help: "Offers dropped before becoming variant records",
		}, []string{"reason"}),
		uniqueRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub,
			Name: "unique_records",
			Help: "Distinct identity keys in the current run",
		}),
		duplicateRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub,
			Name: "duplicate_records",
			Help: "Records that replaced an earlier record with the same identity key",
		}),
		upsertsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "upserts_total",
			Help: "Document store upserts, by collection and result",
		}, []string{"collection", "result"}),
		outputErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "output_errors_total",
			Help: "Export or persistence failures, by target",
		}, []string{"target"}),
	}
}

// Registry exposes the collectors for HTTP export.
func (mm *MetricsManager) Registry() *prometheus.Registry {
	if mm == nil {
		return prometheus.NewRegistry()
	}
	return mm.registry
}

func (mm *MetricsManager) RecordPage(status string, duration time.Duration) {
	if mm == nil {
		return
	}
	mm.pagesTotal.WithLabelValues(status).Inc()
	mm.pageDuration.Observe(duration.Seconds())
}

func (mm *MetricsManager) RecordListing(category string, links int) {
	if mm == nil {
		return
	}
	mm.listingsTotal.WithLabelValues(category).Add(float64(links))
}

func (mm *MetricsManager) RecordVariants(accepted, unparseable, belowThreshold int) {
	if mm == nil {
		return
	}
	mm.variantsTotal.Add(float64(accepted))
	mm.offersRejected.WithLabelValues(RejectUnparsable).Add(float64(unparseable))
	mm.offersRejected.WithLabelValues(RejectThreshold).Add(float64(belowThreshold))
}

func (mm *MetricsManager) SetRecordSet(unique, duplicates int) {
	if mm == nil {
		return
	}
	mm.uniqueRecords.Set(float64(unique))
	mm.duplicateRecords.Set(float64(duplicates))
}

func (mm *MetricsManager) RecordUpsert(collection string, inserted bool) {
	if mm == nil {
		return
	}
	result := "updated"
	if inserted {
		result = "inserted"
	}
	mm.upsertsTotal.WithLabelValues(collection, result).Inc()
}

func (mm *MetricsManager) RecordOutputError(target string) {
	if mm == nil {
		return
	}
	mm.outputErrors.WithLabelValues(target).Inc()
}
