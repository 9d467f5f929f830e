package obs

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics records optimizer and repair activity. A nil
// *DispatchMetrics is valid and records nothing.
type DispatchMetrics struct {
	restarts     *prometheus.CounterVec
	improvements *prometheus.CounterVec
	swaps        *prometheus.CounterVec
	violations   prometheus.Gauge
	routeMiles   *prometheus.GaugeVec
	duration     prometheus.Histogram
}

// NewDispatchMetrics registers dispatch collectors on reg. If reg is nil the
// default registerer is used. Collectors that are already registered are reused.
func NewDispatchMetrics(reg prometheus.Registerer) (*DispatchMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &DispatchMetrics{
		restarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wgups_optimizer_restarts_total",
			Help: "Route optimizer restarts run per truck",
		}, []string{"truck"}),
		improvements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wgups_route_improvements_total",
			Help: "Restarts whose route replaced the truck's best route",
		}, []string{"truck"}),
		swaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wgups_repair_swaps_total",
			Help: "Package swaps tried during deadline repair",
		}, []string{"outcome"}),
		violations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wgups_deadline_violations",
			Help: "Packages projected to miss their deadline after the last dispatch",
		}),
		routeMiles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wgups_route_miles",
			Help: "Total miles of each truck's stored route",
		}, []string{"truck"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wgups_dispatch_duration_seconds",
			Help:    "Wall time of a full dispatch cycle",
			Buckets: prometheus.DefBuckets,
		}),
	}

	var err error
	if m.restarts, err = register(reg, m.restarts); err != nil {
		return nil, err
	}
	if m.improvements, err = register(reg, m.improvements); err != nil {
		return nil, err
	}
	if m.swaps, err = register(reg, m.swaps); err != nil {
		return nil, err
	}
	if m.violations, err = register(reg, m.violations); err != nil {
		return nil, err
	}
	if m.routeMiles, err = register(reg, m.routeMiles); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}

	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *DispatchMetrics) Restart(truckID int, improved bool) {
	if m == nil {
		return
	}
	label := strconv.Itoa(truckID)
	m.restarts.WithLabelValues(label).Inc()
	if improved {
		m.improvements.WithLabelValues(label).Inc()
	}
}

func (m *DispatchMetrics) Swap(kept bool) {
	if m == nil {
		return
	}
	outcome := "reverted"
	if kept {
		outcome = "kept"
	}
	m.swaps.WithLabelValues(outcome).Inc()
}

func (m *DispatchMetrics) Violations(n int) {
	if m == nil {
		return
	}
	m.violations.Set(float64(n))
}

func (m *DispatchMetrics) RouteMiles(truckID int, miles float64) {
	if m == nil {
		return
	}
	m.routeMiles.WithLabelValues(strconv.Itoa(truckID)).Set(miles)
}

func (m *DispatchMetrics) Observe(d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}

// MustRegisterMetrics registers dispatch metrics on reg and panics on a
// registration conflict.
func MustRegisterMetrics(reg prometheus.Registerer) *DispatchMetrics {
	m, err := NewDispatchMetrics(reg)
	if err != nil {
		panic(err)
	}
	return m
}
