package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Successful increments partitioned by target (latest row or a specific id)
var countIncrementsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "count_increments_total",
		Help: "Total number of successful count increments",
	},
	[]string{"target"},
)
