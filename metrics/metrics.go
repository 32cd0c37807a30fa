// Package metrics registers named meters, timers and gauges and exports them
// to Prometheus.
//
// Metrics are declared as package level variables at their call sites:
//
//	var accountUpdatedMeter = metrics.NewRegisteredMeter("state/update/account", nil)
//
// Updates are dropped until Enable is called, so declaring a metric is free
// for processes that never export them.
package metrics

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var enabled atomic.Bool

// Enable turns on metric collection for the whole process.
func Enable() { enabled.Store(true) }

// Enabled reports whether updates are being recorded.
func Enabled() bool { return enabled.Load() }

// Meter counts events.
type Meter struct {
	count atomic.Int64
	prom  prometheus.Counter
}

// Mark records n events.
func (m *Meter) Mark(n int64) {
	if !Enabled() || n <= 0 {
		return
	}
	m.count.Add(n)
	m.prom.Add(float64(n))
}

// Count returns the number of events recorded.
func (m *Meter) Count() int64 { return m.count.Load() }

// Timer records durations.
type Timer struct {
	count atomic.Int64
	total atomic.Int64
	prom  prometheus.Histogram
}

// Update records d.
func (t *Timer) Update(d time.Duration) {
	if !Enabled() {
		return
	}
	t.count.Add(1)
	t.total.Add(int64(d))
	t.prom.Observe(d.Seconds())
}

// UpdateSince records the time elapsed since start.
func (t *Timer) UpdateSince(start time.Time) { t.Update(time.Since(start)) }

// Count returns the number of recorded durations.
func (t *Timer) Count() int64 { return t.count.Load() }

// Total returns the sum of recorded durations.
func (t *Timer) Total() time.Duration { return time.Duration(t.total.Load()) }

// Gauge holds a single value.
type Gauge struct {
	value atomic.Int64
	prom  prometheus.Gauge
}

// Update sets the gauge to v.
func (g *Gauge) Update(v int64) {
	if !Enabled() {
		return
	}
	g.value.Store(v)
	g.prom.Set(float64(v))
}

// Value returns the current value.
func (g *Gauge) Value() int64 { return g.value.Load() }

// NewRegisteredMeter creates a meter under name in r, or returns the one
// already registered there. A nil registry selects DefaultRegistry.
func NewRegisteredMeter(name string, r *Registry) *Meter {
	r = orDefault(r)
	return r.getOrRegister(name, func() (interface{}, prometheus.Collector) {
		m := &Meter{prom: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: r.namespace,
			Name:      promName(name) + "_total",
			Help:      name,
		})}
		return m, m.prom
	}).(*Meter)
}

// NewRegisteredTimer creates a timer under name in r, or returns the one
// already registered there.
func NewRegisteredTimer(name string, r *Registry) *Timer {
	r = orDefault(r)
	return r.getOrRegister(name, func() (interface{}, prometheus.Collector) {
		t := &Timer{prom: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: r.namespace,
			Name:      promName(name) + "_seconds",
			Help:      name,
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1},
		})}
		return t, t.prom
	}).(*Timer)
}

// NewRegisteredGauge creates a gauge under name in r, or returns the one
// already registered there.
func NewRegisteredGauge(name string, r *Registry) *Gauge {
	r = orDefault(r)
	return r.getOrRegister(name, func() (interface{}, prometheus.Collector) {
		g := &Gauge{prom: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: r.namespace,
			Name:      promName(name),
			Help:      name,
		})}
		return g, g.prom
	}).(*Gauge)
}

// promName turns "state/update/account" into "state_update_account".
func promName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
