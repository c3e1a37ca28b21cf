package engine

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	reg          *prometheus.Registry
	ticks        prometheus.Counter
	tickSeconds  prometheus.Histogram
	lightsDrawn  prometheus.Counter
	lightsCulled prometheus.Counter
	particles    prometheus.Gauge
	animations   prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		reg: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "systematic",
			Name:      "ticks_total",
			Help:      "Simulation ticks run.",
		}),
		tickSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "systematic",
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent in one tick.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		lightsDrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "systematic",
			Subsystem: "lighting",
			Name:      "lights_drawn_total",
			Help:      "Lights rasterised into the lightmap.",
		}),
		lightsCulled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "systematic",
			Subsystem: "lighting",
			Name:      "lights_culled_total",
			Help:      "Lights skipped by viewport culling.",
		}),
		particles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "systematic",
			Subsystem: "fx",
			Name:      "particles",
			Help:      "Live particles after the last tick.",
		}),
		animations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "systematic",
			Subsystem: "level",
			Name:      "tile_animations",
			Help:      "Tile animations still running after the last tick.",
		}),
	}
	m.reg.MustRegister(m.ticks, m.tickSeconds, m.lightsDrawn, m.lightsCulled, m.particles, m.animations)
	return m
}
