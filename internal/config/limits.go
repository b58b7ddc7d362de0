package config

import "time"

// Connection limits and protocol tuning.
const (
	// Per-connection flood protection
	MaxMessagesPerSecond = 10
	FloodWindow          = time.Second

	// Per-identity signaling budget
	SignalLimit  = 50
	SignalWindow = 10 * time.Second

	// Timeouts
	WriteTimeout = 10 * time.Second

	// Synthetic latency probe sent to web clients after identification
	PingInterval = time.Second

	// Channel buffers
	ClientSendBufferSize = 256
	HubInboundBufferSize = 256

	// Inbound frame size cap
	MaxMessageBytes = 32 * 1024
)

// Default hearing radii. Voice routing and the UI hearing-list projection
// deliberately use different radii; both are overridable from the
// environment.
const (
	DefaultVoiceRadius = 10.0
	DefaultHearRadius  = 32.0
)

// DefaultProximityInterval paces the proximity_update fan-out.
const DefaultProximityInterval = 200 * time.Millisecond
