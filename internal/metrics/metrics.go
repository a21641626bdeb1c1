package metrics

import (
	"errors"
	"net/http"

	"tornbot/pkg/torn"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tornbot"

// Metrics holds the bot collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	commands    *prometheus.CounterVec
	upstream    *prometheus.CounterVec
	ticks       *prometheus.CounterVec
	messages    *prometheus.CounterVec
	subscribers prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Slash commands handled, by outcome.",
			},
			[]string{"command", "outcome"},
		),

		upstream: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Requests sent to the Torn API.",
			},
			[]string{"category", "selection", "outcome"},
		),

		ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "broadcast",
				Name:      "ticks_total",
				Help:      "Stock broadcast ticks, by outcome.",
			},
			[]string{"outcome"},
		),

		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "broadcast",
				Name:      "messages_total",
				Help:      "Stock messages created, edited or recreated.",
			},
			[]string{"action"},
		),

		subscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "broadcast",
				Name:      "subscribers",
				Help:      "Guilds currently receiving stock messages.",
			},
		),
	}

	m.Registry.MustRegister(
		m.commands,
		m.upstream,
		m.ticks,
		m.messages,
		m.subscribers,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveCommand(command, outcome string) {
	m.commands.WithLabelValues(command, outcome).Inc()
}

// ObserveUpstream matches torn.Observer.
func (m *Metrics) ObserveUpstream(ep torn.Endpoint, err error) {
	m.upstream.WithLabelValues(ep.Category, ep.Selection, upstreamOutcome(err)).Inc()
}

func (m *Metrics) ObserveTick(outcome string) {
	m.ticks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveMessage(action string) {
	m.messages.WithLabelValues(action).Inc()
}

func (m *Metrics) SetSubscribers(n int) {
	m.subscribers.Set(float64(n))
}

func upstreamOutcome(err error) string {
	var apiErr *torn.APIError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &apiErr):
		return "api_error"
	default:
		return "error"
	}
}
