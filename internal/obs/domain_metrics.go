package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartMutationsTotal counts cart mutation outcomes by operation.
	CartMutationsTotal *prometheus.CounterVec
	// TierResolutionsTotal counts tier lookups, split by whether a configured
	// tier matched or the base price fallback applied.
	TierResolutionsTotal *prometheus.CounterVec
	// DomainEventsTotal counts emitted domain events per topic.
	DomainEventsTotal *prometheus.CounterVec
	// CartExpirySweepsTotal counts background expiry sweep outcomes.
	CartExpirySweepsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Count of cart mutation outcomes by operation.",
		}, []string{"op", "result"})
		TierResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_resolutions_total",
			Help:      "Count of tier price lookups by outcome.",
		}, []string{"outcome"})
		DomainEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Count of emitted domain events per topic.",
		}, []string{"topic"})
		CartExpirySweepsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_expiry_sweeps_total",
			Help:      "Count of background cart expiry sweep outcomes.",
		}, []string{"result"})

		mustRegisterCollector(reg, CartMutationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartMutationsTotal = v
			}
		})
		mustRegisterCollector(reg, TierResolutionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				TierResolutionsTotal = v
			}
		})
		mustRegisterCollector(reg, DomainEventsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DomainEventsTotal = v
			}
		})
		mustRegisterCollector(reg, CartExpirySweepsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartExpirySweepsTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, replace func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			replace(are.ExistingCollector)
			return
		}
		panic(err)
	}
}
