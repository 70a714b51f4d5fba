// Package metric provides Prometheus metrics for the bil client.
package metric

import "github.com/prometheus/client_golang/prometheus"

// ContextState is the session context exposed by the collector.
type ContextState struct {
	ProjectID  int64
	PayGroupID int64
	ReadOnly   bool
}

// Collector exposes the active session context as gauges, read at
// gather time.
type Collector struct {
	state func() ContextState

	projectDesc  *prometheus.Desc
	groupDesc    *prometheus.Desc
	readOnlyDesc *prometheus.Desc
}

// NewCollector creates a collector reading the context from state.
func NewCollector(state func() ContextState) *Collector {
	return &Collector{
		state: state,
		projectDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "active_project"),
			"Active project id, 0 when none is selected",
			nil, nil,
		),
		groupDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "active_paygroup"),
			"Active pay group id, 0 when none is selected",
			nil, nil,
		),
		readOnlyDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "read_only"),
			"1 when the session views a historical snapshot",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.projectDesc
	ch <- c.groupDesc
	ch <- c.readOnlyDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.state()

	readOnly := 0.0
	if s.ReadOnly {
		readOnly = 1
	}

	ch <- prometheus.MustNewConstMetric(c.projectDesc, prometheus.GaugeValue, float64(s.ProjectID))
	ch <- prometheus.MustNewConstMetric(c.groupDesc, prometheus.GaugeValue, float64(s.PayGroupID))
	ch <- prometheus.MustNewConstMetric(c.readOnlyDesc, prometheus.GaugeValue, readOnly)
}
