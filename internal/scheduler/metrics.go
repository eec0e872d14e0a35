package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Diagnostics only, never consulted for correctness.
var refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "mycollection",
	Subsystem: "smartsync",
	Name:      "refresh_total",
	Help:      "Entity refresh outcomes per smart sync run.",
}, []string{"result"})
