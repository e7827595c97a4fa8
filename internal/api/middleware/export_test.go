package middleware

import "github.com/prometheus/client_golang/prometheus"

// RequestsCounter exposes the request counter to tests.
func RequestsCounter() *prometheus.CounterVec { return httpRequestsTotal }
