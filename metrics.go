package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics with bounded cardinality, no per-player labels
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shipwars_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.0167, 0.05},
	})

	shipsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shipwars_ships",
		Help: "Ships currently seated in the arena",
	})

	projectilesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shipwars_projectiles",
		Help: "Cannonballs currently in flight",
	})

	sinksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipwars_sinks_total",
		Help: "Ships sunk, by cause",
	}, []string{"cause"}) // hit, ramming, grounding

	respawnFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipwars_respawn_fallback_total",
		Help: "Respawns placed at sea center after sampling gave up",
	})

	framesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipwars_frames_total",
		Help: "Frames encoded and broadcast",
	})

	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shipwars_websocket_connections",
		Help: "Currently open WebSocket connections",
	})

	messagesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipwars_inbound_dropped_total",
		Help: "Inbound client messages dropped",
	}, []string{"reason"}) // rate_limit, malformed

	tickPanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipwars_tick_panics_total",
		Help: "Ticks skipped after a panic in the simulation",
	})

	rankingDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipwars_ranking_dropped_total",
		Help: "Ranking updates dropped because the worker queue was full",
	})
)
