package services

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics tracks relay throughput and drop reasons.
type Metrics struct {
	// Connection metrics
	activeConnections int64
	totalConnections  int64
	participants      int64

	// Message metrics
	messagesReceived int64
	messagesSent     int64
	rosterBroadcasts int64
	lastMessageTime  int64 // Unix timestamp

	// Signaling metrics
	signalsForwarded   int64
	signalsForbidden   int64
	signalsUnrouteable int64
	signalsRateLimited int64

	// Error metrics
	connectionErrors int64
	broadcastErrors  int64
	floodViolations  int64
	malformedFrames  int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

func (m *Metrics) IncrementConnections() {
	atomic.AddInt64(&m.activeConnections, 1)
	atomic.AddInt64(&m.totalConnections, 1)
}

func (m *Metrics) DecrementConnections() {
	atomic.AddInt64(&m.activeConnections, -1)
}

func (m *Metrics) IncrementParticipants() {
	atomic.AddInt64(&m.participants, 1)
}

func (m *Metrics) DecrementParticipants() {
	atomic.AddInt64(&m.participants, -1)
}

func (m *Metrics) IncrementMessagesReceived() {
	atomic.AddInt64(&m.messagesReceived, 1)
	atomic.StoreInt64(&m.lastMessageTime, time.Now().Unix())
}

func (m *Metrics) IncrementMessagesSent() {
	atomic.AddInt64(&m.messagesSent, 1)
}

func (m *Metrics) IncrementRosterBroadcasts() {
	atomic.AddInt64(&m.rosterBroadcasts, 1)
}

func (m *Metrics) IncrementSignalsForwarded() {
	atomic.AddInt64(&m.signalsForwarded, 1)
}

func (m *Metrics) IncrementSignalsForbidden() {
	atomic.AddInt64(&m.signalsForbidden, 1)
}

func (m *Metrics) IncrementSignalsUnrouteable() {
	atomic.AddInt64(&m.signalsUnrouteable, 1)
}

func (m *Metrics) IncrementSignalsRateLimited() {
	atomic.AddInt64(&m.signalsRateLimited, 1)
}

func (m *Metrics) IncrementConnectionErrors() {
	atomic.AddInt64(&m.connectionErrors, 1)
}

func (m *Metrics) IncrementBroadcastErrors() {
	atomic.AddInt64(&m.broadcastErrors, 1)
}

func (m *Metrics) IncrementFloodViolations() {
	atomic.AddInt64(&m.floodViolations, 1)
}

func (m *Metrics) IncrementMalformedFrames() {
	atomic.AddInt64(&m.malformedFrames, 1)
}

// MetricsSnapshot is a point-in-time view of all counters.
type MetricsSnapshot struct {
	ActiveConnections int64 `json:"active_connections"`
	TotalConnections  int64 `json:"total_connections"`
	Participants      int64 `json:"participants"`

	MessagesReceived  int64   `json:"messages_received"`
	MessagesSent      int64   `json:"messages_sent"`
	RosterBroadcasts  int64   `json:"roster_broadcasts"`
	MessagesPerSecond float64 `json:"messages_per_second"`
	LastMessageTime   string  `json:"last_message_time"`

	SignalsForwarded   int64 `json:"signals_forwarded"`
	SignalsForbidden   int64 `json:"signals_forbidden"`
	SignalsUnrouteable int64 `json:"signals_unrouteable"`
	SignalsRateLimited int64 `json:"signals_rate_limited"`

	ConnectionErrors int64 `json:"connection_errors"`
	BroadcastErrors  int64 `json:"broadcast_errors"`
	FloodViolations  int64 `json:"flood_violations"`
	MalformedFrames  int64 `json:"malformed_frames"`

	UptimeSeconds int64  `json:"uptime_seconds"`
	MemoryUsageMB uint64 `json:"memory_usage_mb"`
	NumGoroutines int    `json:"num_goroutines"`
	HealthStatus  string `json:"health_status"`
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	uptime := time.Since(m.startTime)
	messagesPerSec := float64(atomic.LoadInt64(&m.messagesReceived)) / uptime.Seconds()

	lastMsgTime := atomic.LoadInt64(&m.lastMessageTime)
	lastMsgTimeStr := "never"
	if lastMsgTime > 0 {
		lastMsgTimeStr = time.Unix(lastMsgTime, 0).Format(time.RFC3339)
	}

	return MetricsSnapshot{
		ActiveConnections:  atomic.LoadInt64(&m.activeConnections),
		TotalConnections:   atomic.LoadInt64(&m.totalConnections),
		Participants:       atomic.LoadInt64(&m.participants),
		MessagesReceived:   atomic.LoadInt64(&m.messagesReceived),
		MessagesSent:       atomic.LoadInt64(&m.messagesSent),
		RosterBroadcasts:   atomic.LoadInt64(&m.rosterBroadcasts),
		MessagesPerSecond:  messagesPerSec,
		LastMessageTime:    lastMsgTimeStr,
		SignalsForwarded:   atomic.LoadInt64(&m.signalsForwarded),
		SignalsForbidden:   atomic.LoadInt64(&m.signalsForbidden),
		SignalsUnrouteable: atomic.LoadInt64(&m.signalsUnrouteable),
		SignalsRateLimited: atomic.LoadInt64(&m.signalsRateLimited),
		ConnectionErrors:   atomic.LoadInt64(&m.connectionErrors),
		BroadcastErrors:    atomic.LoadInt64(&m.broadcastErrors),
		FloodViolations:    atomic.LoadInt64(&m.floodViolations),
		MalformedFrames:    atomic.LoadInt64(&m.malformedFrames),
		UptimeSeconds:      int64(uptime.Seconds()),
		MemoryUsageMB:      memStats.Alloc / 1024 / 1024,
		NumGoroutines:      runtime.NumGoroutine(),
		HealthStatus:       m.calculateHealthStatus(),
	}
}

// calculateHealthStatus flags the relay once connection counts or error
// totals get close to single-instance limits.
func (m *Metrics) calculateHealthStatus() string {
	activeConns := atomic.LoadInt64(&m.activeConnections)
	errors := atomic.LoadInt64(&m.connectionErrors) + atomic.LoadInt64(&m.broadcastErrors)

	if activeConns > 9000 {
		return "critical"
	}
	if activeConns > 8000 || errors > 100 {
		return "warning"
	}
	return "healthy"
}
