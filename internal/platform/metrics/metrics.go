// Package metrics provides observability for the identity resolution engine:
// index builds, match outcomes, translation warnings and bridge traffic.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers engine counters.
type Collector struct {
	// Index build metrics
	IndexBuilds      int64
	SpritesHashed    int64
	IndexEntries     int64
	IndexCollisions  int64
	IndexBuildLatSum int64 // nanoseconds
	IndexBuildLatMax int64
	LastIndexBuild   time.Time

	// Match metrics
	MatchExact     int64
	MatchHash      int64
	MatchCollision int64
	MatchNone      int64

	// Translation metrics
	LoadUnmapped int64
	SaveUnmapped int64

	// Payload metrics
	PayloadsEncoded  int64
	PayloadsRejected int64
	MalformedRecords int64

	// Bridge metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordIndexBuild records one completed fingerprint index build.
func (c *Collector) RecordIndexBuild(sprites, entries, collisions int, latency time.Duration) {
	atomic.AddInt64(&c.IndexBuilds, 1)
	atomic.AddInt64(&c.SpritesHashed, int64(sprites))
	atomic.StoreInt64(&c.IndexEntries, int64(entries))
	atomic.StoreInt64(&c.IndexCollisions, int64(collisions))
	atomic.AddInt64(&c.IndexBuildLatSum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.IndexBuildLatMax) {
		atomic.StoreInt64(&c.IndexBuildLatMax, int64(latency))
	}

	c.mu.Lock()
	c.LastIndexBuild = time.Now()
	c.mu.Unlock()
}

// RecordMatch records one resolved transfer record by outcome kind.
func (c *Collector) RecordMatch(kind string) {
	switch kind {
	case "exact":
		atomic.AddInt64(&c.MatchExact, 1)
	case "hash":
		atomic.AddInt64(&c.MatchHash, 1)
	case "collision":
		atomic.AddInt64(&c.MatchCollision, 1)
	default:
		atomic.AddInt64(&c.MatchNone, 1)
	}
}

// RecordUnmapped records a boundary translation miss.
func (c *Collector) RecordUnmapped(onLoad bool) {
	if onLoad {
		atomic.AddInt64(&c.LoadUnmapped, 1)
	} else {
		atomic.AddInt64(&c.SaveUnmapped, 1)
	}
}

// RecordPayloadEncoded records a produced clipboard payload.
func (c *Collector) RecordPayloadEncoded() {
	atomic.AddInt64(&c.PayloadsEncoded, 1)
}

// RecordPayloadRejected records a payload refused for schema mismatch or
// structural corruption.
func (c *Collector) RecordPayloadRejected() {
	atomic.AddInt64(&c.PayloadsRejected, 1)
}

// RecordMalformedRecords adds per-record decode failures.
func (c *Collector) RecordMalformedRecords(n int) {
	atomic.AddInt64(&c.MalformedRecords, int64(n))
}

// RecordWSConnection records bridge connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records bridge messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a bridge error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	builds := atomic.LoadInt64(&c.IndexBuilds)
	var buildAvg float64
	if builds > 0 {
		buildAvg = float64(atomic.LoadInt64(&c.IndexBuildLatSum)) / float64(builds) / 1e6 // ms
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"index": map[string]interface{}{
			"builds":         builds,
			"sprites_hashed": atomic.LoadInt64(&c.SpritesHashed),
			"entries":        atomic.LoadInt64(&c.IndexEntries),
			"collisions":     atomic.LoadInt64(&c.IndexCollisions),
			"avg_build_ms":   buildAvg,
			"max_build_ms":   float64(atomic.LoadInt64(&c.IndexBuildLatMax)) / 1e6,
			"last_build":     c.LastIndexBuild.Format(time.RFC3339),
		},

		"match": map[string]interface{}{
			"exact":     atomic.LoadInt64(&c.MatchExact),
			"hash":      atomic.LoadInt64(&c.MatchHash),
			"collision": atomic.LoadInt64(&c.MatchCollision),
			"none":      atomic.LoadInt64(&c.MatchNone),
		},

		"translate": map[string]interface{}{
			"load_unmapped": atomic.LoadInt64(&c.LoadUnmapped),
			"save_unmapped": atomic.LoadInt64(&c.SaveUnmapped),
		},

		"payload": map[string]interface{}{
			"encoded":           atomic.LoadInt64(&c.PayloadsEncoded),
			"rejected":          atomic.LoadInt64(&c.PayloadsRejected),
			"malformed_records": atomic.LoadInt64(&c.MalformedRecords),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP crossid_index_builds Total fingerprint index builds\n")
		fmt.Fprintf(w, "# TYPE crossid_index_builds counter\n")
		fmt.Fprintf(w, "crossid_index_builds %d\n\n", atomic.LoadInt64(&c.IndexBuilds))

		fmt.Fprintf(w, "# HELP crossid_sprites_hashed Total sprites fingerprinted\n")
		fmt.Fprintf(w, "# TYPE crossid_sprites_hashed counter\n")
		fmt.Fprintf(w, "crossid_sprites_hashed %d\n\n", atomic.LoadInt64(&c.SpritesHashed))

		fmt.Fprintf(w, "# HELP crossid_index_collisions Fingerprints shared by multiple items\n")
		fmt.Fprintf(w, "# TYPE crossid_index_collisions gauge\n")
		fmt.Fprintf(w, "crossid_index_collisions %d\n\n", atomic.LoadInt64(&c.IndexCollisions))

		fmt.Fprintf(w, "# HELP crossid_matches_total Resolved transfer records by outcome\n")
		fmt.Fprintf(w, "# TYPE crossid_matches_total counter\n")
		fmt.Fprintf(w, "crossid_matches_total{kind=\"exact\"} %d\n", atomic.LoadInt64(&c.MatchExact))
		fmt.Fprintf(w, "crossid_matches_total{kind=\"hash\"} %d\n", atomic.LoadInt64(&c.MatchHash))
		fmt.Fprintf(w, "crossid_matches_total{kind=\"collision\"} %d\n", atomic.LoadInt64(&c.MatchCollision))
		fmt.Fprintf(w, "crossid_matches_total{kind=\"none\"} %d\n\n", atomic.LoadInt64(&c.MatchNone))

		fmt.Fprintf(w, "# HELP crossid_unmapped_total Boundary translation misses\n")
		fmt.Fprintf(w, "# TYPE crossid_unmapped_total counter\n")
		fmt.Fprintf(w, "crossid_unmapped_total{side=\"load\"} %d\n", atomic.LoadInt64(&c.LoadUnmapped))
		fmt.Fprintf(w, "crossid_unmapped_total{side=\"save\"} %d\n\n", atomic.LoadInt64(&c.SaveUnmapped))

		fmt.Fprintf(w, "# HELP crossid_ws_connections Active bridge connections\n")
		fmt.Fprintf(w, "# TYPE crossid_ws_connections gauge\n")
		fmt.Fprintf(w, "crossid_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP crossid_ws_messages_total Total bridge messages\n")
		fmt.Fprintf(w, "# TYPE crossid_ws_messages_total counter\n")
		fmt.Fprintf(w, "crossid_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "crossid_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
