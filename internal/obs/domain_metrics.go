package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// InvoiceComputeTotal counts totals computations by source and outcome.
	InvoiceComputeTotal *prometheus.CounterVec
	// TotalsCacheTotal counts totals cache lookups by result.
	TotalsCacheTotal *prometheus.CounterVec
	// InvoicesFinalizedTotal counts invoices persisted successfully.
	InvoicesFinalizedTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		InvoiceComputeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_compute_total",
			Help:      "Count of invoice totals computations by source and outcome.",
		}, []string{"source", "result"})
		TotalsCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_totals_cache_total",
			Help:      "Count of totals cache lookups by result.",
		}, []string{"result"})
		InvoicesFinalizedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_finalized_total",
			Help:      "Number of invoices finalized and persisted.",
		})

		mustRegisterCollector(reg, InvoiceComputeTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				InvoiceComputeTotal = v
			}
		})
		mustRegisterCollector(reg, TotalsCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				TotalsCacheTotal = v
			}
		})
		mustRegisterCollector(reg, InvoicesFinalizedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				InvoicesFinalizedTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
