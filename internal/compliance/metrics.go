package compliance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Values of the source label on checksTotal.
const (
	sourceAnalyzer = "analyzer"
	sourceCache    = "cache"
	sourceFallback = "fallback"
)

var checksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "listingshield_compliance_checks_total",
		Help: "Compliance checks by verdict status and where the verdict came from",
	},
	[]string{"status", "source"},
)
