package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the registry.
type Metrics struct {
	IdentitiesRegistered   prometheus.Counter
	CredentialsIssued      prometheus.Counter
	CredentialsInvalidated prometheus.Counter
	ProfileUpserts         *prometheus.CounterVec
	RequestDuration        *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		IdentitiesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vc_registry_identities_registered_total",
			Help: "Total number of identities registered.",
		}),
		CredentialsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vc_registry_credentials_issued_total",
			Help: "Total number of credentials issued.",
		}),
		CredentialsInvalidated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vc_registry_credentials_invalidated_total",
			Help: "Total number of credentials invalidated.",
		}),
		ProfileUpserts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vc_registry_profile_upserts_total",
			Help: "Total number of profile upserts by kind.",
		}, []string{"kind"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vc_registry_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
