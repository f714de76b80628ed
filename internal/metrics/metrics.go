// Package metrics exposes prometheus counters and gauges for the ingest
// pipeline: TS packets read, sections assembled and rejected, EIT events
// ingested, and EPG database size, plus an HTTP handler to serve them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every metric this daemon reports. Zero value is not
// usable; use New.
type Registry struct {
	reg *prometheus.Registry

	PacketsRead      prometheus.Counter
	PacketsDropped   prometheus.Counter
	SectionsAssembled *prometheus.CounterVec
	SectionsRejected  *prometheus.CounterVec
	EventsIngested    *prometheus.CounterVec
	ServicesTracked   prometheus.Gauge
	ScheduleComplete  *prometheus.GaugeVec
}

// New builds a Registry with every metric registered under the isdb_epgd
// namespace.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	r := &Registry{
		reg: reg,
		PacketsRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "isdb_epgd",
			Name:      "ts_packets_read_total",
			Help:      "Transport stream packets read from the source.",
		}),
		PacketsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "isdb_epgd",
			Name:      "ts_packets_dropped_total",
			Help:      "Transport stream packets dropped due to bad sync or truncation.",
		}),
		SectionsAssembled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "isdb_epgd",
			Name:      "sections_assembled_total",
			Help:      "PSI/SI sections successfully reassembled, by table name.",
		}, []string{"table"}),
		SectionsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "isdb_epgd",
			Name:      "sections_rejected_total",
			Help:      "PSI/SI sections dropped due to CRC failure or malformed length, by table name.",
		}, []string{"table"}),
		EventsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "isdb_epgd",
			Name:      "epg_events_ingested_total",
			Help:      "EIT events folded into the EPG database, by classification (basic/extended/pf).",
		}, []string{"class"}),
		ServicesTracked: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "isdb_epgd",
			Name:      "epg_services_tracked",
			Help:      "Number of distinct services currently tracked in the EPG database.",
		}),
		ScheduleComplete: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "isdb_epgd",
			Name:      "epg_schedule_complete",
			Help:      "1 if a service's schedule EIT is currently complete, else 0, by service key and extended flag.",
		}, []string{"service", "extended"}),
	}
	return r
}

// Handler returns the HTTP handler to mount at /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
