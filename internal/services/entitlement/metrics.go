package entitlement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var usageChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "usage_checks_total",
	Help: "Number of entitlement checks by result.",
}, []string{"result"})
