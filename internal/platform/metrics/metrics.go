// Package metrics provides observability for the game server.
// Counters for the economy loop, persistence and websocket traffic.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Frame loop metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Economy metrics
	ClicksAccepted    int64
	ClicksRejected    int64
	Purchases         int64
	PurchasesRejected int64
	AutoCredits       int64
	Unlocks           int64

	// Persistence metrics
	SavesWritten int64
	SaveErrors   int64

	// WebSocket metrics
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

// RecordTick records a frame cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordClick records a manual click attempt.
func (c *Collector) RecordClick(accepted bool) {
	if accepted {
		atomic.AddInt64(&c.ClicksAccepted, 1)
	} else {
		atomic.AddInt64(&c.ClicksRejected, 1)
	}
}

// RecordPurchase records a shop purchase attempt.
func (c *Collector) RecordPurchase(success bool) {
	if success {
		atomic.AddInt64(&c.Purchases, 1)
	} else {
		atomic.AddInt64(&c.PurchasesRejected, 1)
	}
}

// RecordAutoCredit records one applied passive income tick.
func (c *Collector) RecordAutoCredit() {
	atomic.AddInt64(&c.AutoCredits, 1)
}

// RecordUnlock records an achievement unlock.
func (c *Collector) RecordUnlock() {
	atomic.AddInt64(&c.Unlocks, 1)
}

// RecordSave records a save-file write.
func (c *Collector) RecordSave(err error) {
	atomic.AddInt64(&c.SavesWritten, 1)
	if err != nil {
		atomic.AddInt64(&c.SaveErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)

	var tickAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"frame": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"economy": map[string]interface{}{
			"clicks_accepted":    atomic.LoadInt64(&c.ClicksAccepted),
			"clicks_rejected":    atomic.LoadInt64(&c.ClicksRejected),
			"purchases":          atomic.LoadInt64(&c.Purchases),
			"purchases_rejected": atomic.LoadInt64(&c.PurchasesRejected),
			"auto_credits":       atomic.LoadInt64(&c.AutoCredits),
			"unlocks":            atomic.LoadInt64(&c.Unlocks),
		},

		"persistence": map[string]interface{}{
			"saves_written": atomic.LoadInt64(&c.SavesWritten),
			"save_errors":   atomic.LoadInt64(&c.SaveErrors),
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
