package trial

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var trialsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "trials_expired_total",
	Help: "Number of trials transitioned to expired by the sweep.",
})
