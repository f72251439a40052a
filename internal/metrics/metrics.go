// Package metrics exposes Prometheus metrics for the compiler service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Compilation outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeCacheHit    = "cache_hit"
	OutcomeClientError = "client_error"
	OutcomeServerError = "server_error"
)

type BuildInfo struct {
	Version  string
	Revision string
}

type Config struct {
	Build BuildInfo
}

// Provider owns a private registry so tests and embedded servers never
// collide on the global one.
type Provider struct {
	reg       *prometheus.Registry
	buildInfo *prometheus.GaugeVec

	compilations *prometheus.CounterVec
	ignored      *prometheus.CounterVec
	duration     prometheus.Histogram
}

func Init(cfg Config) *Provider {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	build := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sparqlc_build_info",
			Help: "Build info for this binary (value is always 1).",
		},
		[]string{"version", "revision"},
	)
	v := cfg.Build
	if v.Version == "" {
		v.Version = "dev"
	}
	build.WithLabelValues(v.Version, v.Revision).Set(1)

	p := &Provider{
		reg:       reg,
		buildInfo: build,
		compilations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparqlc_compilations_total",
				Help: "Compilations by outcome.",
			},
			[]string{"outcome"},
		),
		ignored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparqlc_ignored_filters_total",
				Help: "Filter clauses that produced no output, by reason.",
			},
			[]string{"reason"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sparqlc_compile_duration_seconds",
			Help:    "Time spent compiling one request, cache lookups included.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	reg.MustRegister(build, p.compilations, p.ignored, p.duration)
	return p
}

func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

func (p *Provider) Register(cs ...prometheus.Collector) {
	for _, c := range cs {
		p.reg.MustRegister(c)
	}
}

func (p *Provider) Registerer() prometheus.Registerer { return p.reg }

// ObserveCompile records one compilation. A nil Provider records nothing.
func (p *Provider) ObserveCompile(outcome string, elapsed time.Duration) {
	if p == nil {
		return
	}
	p.compilations.WithLabelValues(outcome).Inc()
	p.duration.Observe(elapsed.Seconds())
}

// ObserveIgnored counts one ignored filter clause.
func (p *Provider) ObserveIgnored(reason string) {
	if p == nil {
		return
	}
	p.ignored.WithLabelValues(reason).Inc()
}

// Compilations returns the counter for outcome, for assertions.
func (p *Provider) Compilations(outcome string) prometheus.Counter {
	return p.compilations.WithLabelValues(outcome)
}

// Ignored returns the counter for reason, for assertions.
func (p *Provider) Ignored(reason string) prometheus.Counter {
	return p.ignored.WithLabelValues(reason)
}
