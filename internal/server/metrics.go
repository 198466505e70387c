package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cradle",
		Subsystem: "server",
		Name:      "connections_active",
		Help:      "Open websocket connections, one session each",
	})

	sessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cradle",
		Subsystem: "server",
		Name:      "sessions_total",
		Help:      "Sessions created since start",
	})

	// Labels: type (pointer_down, pointer_move, ..., invalid)
	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cradle",
		Subsystem: "server",
		Name:      "messages_total",
		Help:      "Client messages received by type",
	}, []string{"type"})

	collisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cradle",
		Subsystem: "sim",
		Name:      "collisions_total",
		Help:      "Bob collisions across all sessions",
	})

	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cradle",
		Subsystem: "server",
		Name:      "frames_dropped_total",
		Help:      "Frames not sent because a client fell behind",
	})

	frameBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cradle",
		Subsystem: "server",
		Name:      "frame_bytes",
		Help:      "Size of encoded frames",
		Buckets:   prometheus.ExponentialBuckets(256, 2, 8),
	})

	settingsReloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cradle",
		Subsystem: "server",
		Name:      "settings_reloads_total",
		Help:      "Default settings reloaded from disk",
	})
)
