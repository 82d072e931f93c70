package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	CodesIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "soidc_codes_issued_total",
		Help: "Total number of authorization codes issued.",
	})
	TokensIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "soidc_tokens_issued_total",
		Help: "Total number of token pairs issued.",
	})
	ExchangeFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "soidc_exchange_failures_total",
		Help: "Total number of rejected token requests by reason.",
	}, []string{"reason"})
	UserInfoRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "soidc_userinfo_requests_total",
		Help: "Total number of userinfo requests by result.",
	}, []string{"result"})
)

// Register adds the provider metrics to reg. It should be called once at
// startup; collectors are usable before registration.
func Register(reg prometheus.Registerer) {
	if reg == nil {
		log.Error().Msg("Prometheus registry is nil, cannot register custom metrics.")
		return
	}

	for _, c := range []prometheus.Collector{
		CodesIssuedTotal,
		TokensIssuedTotal,
		ExchangeFailuresTotal,
		UserInfoRequestsTotal,
	} {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Msg("Failed to register metric")
		}
	}

	log.Info().Msg("Custom Prometheus metrics registered.")
}
