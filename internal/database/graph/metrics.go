package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "neo4jpg",
		Subsystem: "graph",
		Name:      "sessions_open",
		Help:      "number of query sessions currently open",
	})

	queryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "neo4jpg",
		Subsystem: "graph",
		Name:      "query_errors_total",
		Help:      "number of failed query executions by error kind",
	}, []string{"kind"})
)
