package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PollTicks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_poll_ticks_total",
		Help: "Chat poll ticks by outcome (ok, fallback).",
	}, []string{"outcome"})

	Mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_mutations_total",
		Help: "Optimistic chat mutations by operation and outcome.",
	}, []string{"op", "outcome"})

	OpenSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_open_sessions",
		Help: "Chat sessions currently polling a task.",
	})

	Searches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_search_requests_total",
		Help: "Keyword searches by record type.",
	}, []string{"type"})

	registerOnce sync.Once
)

// Register adds the collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(PollTicks, Mutations, OpenSessions, Searches)
	})
}

// Handler returns an http.Handler for Prometheus scraping
func Handler() http.Handler {
	return promhttp.Handler()
}
