package metrics

import (
	"time"

	"xapi-connector/src/helpers"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "xapi"

// -----------------------------------------------------------------------------

// CommandMetrics counts xAPI exchanges by command and error kind. It is
// handed to xapi.WithObserver.
type CommandMetrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	loggedIn prometheus.Gauge
	ticks    prometheus.Counter
}

// NewCommandMetrics registers its collectors on a fresh registry, together
// with the Go and process collectors.
func NewCommandMetrics() *CommandMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &CommandMetrics{
		registry: reg,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "commands_total",
				Help:      "Commands sent to the xAPI server by outcome",
			},
			[]string{"command", "result"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "command_duration_seconds",
				Help:      "Round trip time of xAPI commands, rate limiting included",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10},
			},
			[]string{"command"},
		),
		loggedIn: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "logged_in",
			Help:      "1 while the gateway holds an authenticated session",
		}),
		ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "ticks_total",
			Help:      "New quotes fetched by the tick poller",
		}),
	}
}

// -----------------------------------------------------------------------------

// ObserveCommand implements interfaces.ICommandObserver. result is "ok" or
// the error kind (socket, api, decode, other).
func (m *CommandMetrics) ObserveCommand(command string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = helpers.ErrorKind(err)
	}
	m.requests.WithLabelValues(command, result).Inc()
	m.duration.WithLabelValues(command).Observe(d.Seconds())
}

func (m *CommandMetrics) SetLoggedIn(v bool) {
	if v {
		m.loggedIn.Set(1)
		return
	}
	m.loggedIn.Set(0)
}

func (m *CommandMetrics) AddTicks(n int) {
	m.ticks.Add(float64(n))
}

// Registry is served on /metrics.
func (m *CommandMetrics) Registry() *prometheus.Registry {
	return m.registry
}
