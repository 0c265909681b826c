// Package observability wires Prometheus metrics and a localhost-only
// pprof/debug server for the relay's domain: tick duration, room/peer
// counts, and snapshot broadcast rate.
package observability

import (
	"log"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "relay_tick_duration_seconds",
		Help:    "Time spent in one host simulation tick",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.02, 0.05},
	})

	roomCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_room_count",
		Help: "Currently active rooms",
	})

	peerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_peer_count",
		Help: "Currently connected peers across all rooms",
	})

	snapshotBroadcastTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_snapshot_broadcast_total",
		Help: "Total snapshot messages broadcast to clients",
	})

	inputMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_input_messages_total",
		Help: "Total input messages relayed to a host",
	})

	connectionRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	eventLogDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_event_log_dropped_total",
		Help: "Events dropped from the bounded event log due to backpressure",
	})
)

// Config configures the debug server.
type Config struct {
	Enabled    bool
	ListenAddr string // should stay on localhost; see StartDebugServer
}

// DefaultConfig returns safe defaults: enabled, bound to localhost only.
func DefaultConfig() Config {
	return Config{Enabled: true, ListenAddr: "127.0.0.1:6060"}
}

// StartDebugServer starts the pprof + Prometheus metrics server. Binds to
// localhost only; the relay's public surface is the asset-store/WS router
// in cmd/relayserver, never this one.
func StartDebugServer(cfg Config) {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	go func() {
		log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()
}

// RecordTick records one host tick's processing time.
func RecordTick(d time.Duration) { tickDuration.Observe(d.Seconds()) }

// SetRoomCount updates the active-room gauge.
func SetRoomCount(n int) { roomCount.Set(float64(n)) }

// SetPeerCount updates the connected-peer gauge.
func SetPeerCount(n int) { peerCount.Set(float64(n)) }

// RecordSnapshotBroadcast increments the snapshot counter.
func RecordSnapshotBroadcast() { snapshotBroadcastTotal.Inc() }

// RecordInputMessage increments the relayed-input counter.
func RecordInputMessage() { inputMessagesTotal.Inc() }

// RecordConnectionRejected increments the rejection counter for reason.
func RecordConnectionRejected(reason string) { connectionRejectedTotal.WithLabelValues(reason).Inc() }

// SetWSConnectionsActive updates the active WS connection gauge.
func SetWSConnectionsActive(n int) { wsConnectionsActive.Set(float64(n)) }

// RecordEventDropped increments the event-log backpressure counter.
func RecordEventDropped() { eventLogDroppedTotal.Inc() }
