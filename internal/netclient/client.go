// Package netclient implements the client half of the relay protocol:
// identification handshake, heartbeat-driven liveness, reconnection with
// exponential backoff, and outbound throttling. The server has no memory
// of a previous connection, so every reconnect re-runs the handshake
// under the same client id.
package netclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/Subcero232117/voice/internal/models"
	"github.com/Subcero232117/voice/internal/security"
)

// ErrReconnectExhausted is returned by Run once every reconnect attempt
// has failed.
var ErrReconnectExhausted = errors.New("netclient: reconnect attempts exhausted")

// Outbound send intervals. Sends arriving faster than these are dropped,
// not queued.
const (
	micInterval    = 200 * time.Millisecond
	teamvInterval  = 200 * time.Millisecond
	volumeInterval = 100 * time.Millisecond
	nameInterval   = time.Second
	signalInterval = 50 * time.Millisecond
)

// Handlers are the application callbacks for server events. All fields
// are optional.
type Handlers struct {
	OnRoom         func(roomID string)
	OnPlayers      func(list map[string]models.Participant)
	OnSignal       func(from, action string, payload json.RawMessage)
	OnTeamVoice    func(enabled bool)
	OnPing         func(smoothedMs int)
	OnNotification func(message, level string)
	OnDisconnect   func()
}

// Options configures a Client.
type Options struct {
	// URL of the relay WebSocket endpoint, e.g. ws://127.0.0.1:8000/ws.
	URL string

	// ClientID is the self-assigned identity; generated when empty.
	ClientID string

	// Name is sent after each successful handshake when non-empty.
	Name string

	// PingInterval paces the liveness probe; PingTimeout must be
	// strictly greater. Zero values take the defaults (3s and 10s).
	PingInterval time.Duration
	PingTimeout  time.Duration

	Backoff  Backoff
	Handlers Handlers
}

// Client is a reconnecting relay connection.
type Client struct {
	opts Options

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool

	intentional atomic.Bool
	lastPong    atomic.Int64 // unix milliseconds

	throttle *security.Throttle
	smoother *PingSmoother
}

// New creates a client. Run starts it.
func New(opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, errors.New("netclient: URL is required")
	}
	if opts.ClientID == "" {
		opts.ClientID = "cli_" + uuid.NewString()[:8]
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 3 * time.Second
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 10 * time.Second
	}
	if opts.PingTimeout <= opts.PingInterval {
		return nil, fmt.Errorf("netclient: ping timeout %v must exceed interval %v", opts.PingTimeout, opts.PingInterval)
	}
	if opts.Backoff.MaxAttempts == 0 {
		opts.Backoff = DefaultBackoff()
	}

	return &Client{
		opts:     opts,
		throttle: security.NewThrottle(),
		smoother: NewPingSmoother(0.25),
	}, nil
}

// ClientID returns the identity used in the handshake.
func (c *Client) ClientID() string {
	return c.opts.ClientID
}

// IsPolite reports this client's collision-resolution role against a
// peer: when both sides offer at once, the polite side rolls back. The
// role is derived from id comparison so both ends agree without a
// coordinator.
func (c *Client) IsPolite(peerID string) bool {
	return c.opts.ClientID > peerID
}

// Run connects and serves until ctx is cancelled, Disconnect is called,
// or the reconnect schedule is exhausted.
func (c *Client) Run(ctx context.Context) error {
	attempts := 0
	for {
		if ctx.Err() != nil || c.intentional.Load() {
			return nil
		}

		established, err := c.runOnce(ctx)
		if ctx.Err() != nil || c.intentional.Load() {
			return nil
		}
		if err != nil {
			log.Printf("netclient: session ended: %v", err)
		}
		if established {
			// Any session that got as far as a live connection resets
			// the schedule; only consecutive failed dials count toward
			// giving up.
			attempts = 0
		}

		if c.opts.Backoff.Exhausted(attempts) {
			return ErrReconnectExhausted
		}

		delay := c.opts.Backoff.Delay(attempts)
		attempts++
		log.Printf("netclient: reconnecting in %v (attempt %d)", delay, attempts)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// Disconnect closes the connection intentionally and suppresses any
// reconnect.
func (c *Client) Disconnect() {
	c.intentional.Store(true)
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "client disconnect")
	}
}

// runOnce performs one dial-handshake-serve cycle. It reports whether a
// connection was established, regardless of how the session later ended.
func (c *Client) runOnce(ctx context.Context) (bool, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.Dial(dialCtx, c.opts.URL, nil)
	cancel()
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.smoother.Reset()
	c.throttle.Reset()
	c.lastPong.Store(time.Now().UnixMilli())

	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.connected = false
		c.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "")
		if c.opts.Handlers.OnDisconnect != nil {
			c.opts.Handlers.OnDisconnect()
		}
	}()

	// Identification handshake, then the pending name.
	if err := c.write(ctx, map[string]any{
		"type":     models.MsgTypeHelloWeb,
		"clientId": c.opts.ClientID,
	}); err != nil {
		return true, fmt.Errorf("handshake: %w", err)
	}
	if c.opts.Name != "" {
		c.EmitName(c.opts.Name)
	}

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go c.heartbeat(hbCtx, conn)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return true, nil
			}
			return true, fmt.Errorf("read: %w", err)
		}
		c.handleFrame(data)
	}
}

// heartbeat emits liveness probes and closes the connection once the
// server has been silent past the timeout, which unblocks the read loop
// and triggers reconnection.
func (c *Client) heartbeat(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().UnixMilli()
			if now-c.lastPong.Load() > c.opts.PingTimeout.Milliseconds() {
				log.Printf("netclient: heartbeat timeout, dropping connection")
				_ = conn.Close(websocket.StatusGoingAway, "heartbeat timeout")
				return
			}
			_ = c.write(ctx, map[string]any{
				"type":      models.MsgTypePing,
				"timestamp": now,
			})
		}
	}
}

// serverFrame covers every field a server frame may carry.
type serverFrame struct {
	Type      string                        `json:"type"`
	Value     json.RawMessage               `json:"value"`
	Timestamp int64                         `json:"timestamp"`
	Enabled   bool                          `json:"enabled"`
	List      map[string]models.Participant `json:"list"`
	From      string                        `json:"from"`
	Action    string                        `json:"action"`
	Payload   json.RawMessage               `json:"payload"`
	Message   string                        `json:"message"`
	Level     string                        `json:"level"`
}

func (c *Client) handleFrame(data []byte) {
	var frame serverFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return
	}

	h := c.opts.Handlers
	switch frame.Type {
	case models.MsgTypeRoom:
		var roomID string
		if json.Unmarshal(frame.Value, &roomID) == nil && h.OnRoom != nil {
			h.OnRoom(roomID)
		}

	case models.MsgTypePing:
		// Server-reported latency value; also counts as liveness.
		c.lastPong.Store(time.Now().UnixMilli())
		var value float64
		if json.Unmarshal(frame.Value, &value) == nil && h.OnPing != nil {
			h.OnPing(c.smoother.Observe(value))
		}

	case models.MsgTypePong:
		now := time.Now().UnixMilli()
		c.lastPong.Store(now)
		if h.OnPing != nil {
			h.OnPing(c.smoother.Observe(float64(now - frame.Timestamp)))
		}

	case models.MsgTypeTeamV:
		if h.OnTeamVoice != nil {
			h.OnTeamVoice(frame.Enabled)
		}

	case models.MsgTypePlayers:
		if h.OnPlayers != nil {
			h.OnPlayers(frame.List)
		}

	case models.MsgTypeSignal:
		if h.OnSignal != nil {
			h.OnSignal(frame.From, frame.Action, frame.Payload)
		}

	case models.MsgTypeError:
		if h.OnNotification != nil {
			h.OnNotification(frame.Message, "error")
		}

	case models.MsgTypeNotification:
		if h.OnNotification != nil {
			level := frame.Level
			if level == "" {
				level = "info"
			}
			h.OnNotification(frame.Message, level)
		}
	}
}

// EmitMicState reports the microphone toggle. Best-effort: throttled and
// dropped when offline.
func (c *Client) EmitMicState(on bool) {
	if !c.throttle.CanSend("mic", micInterval) {
		return
	}
	c.send(map[string]any{
		"type":     models.MsgTypeMic,
		"clientId": c.opts.ClientID,
		"state":    on,
	})
}

// EmitTeamVoice toggles team-only voice.
func (c *Client) EmitTeamVoice(enabled bool) {
	if !c.throttle.CanSend("teamv", teamvInterval) {
		return
	}
	c.send(map[string]any{
		"type":     models.MsgTypeTeamV,
		"clientId": c.opts.ClientID,
		"enabled":  enabled,
	})
}

// EmitVolume reports the local volume slider. The server currently
// ignores it; unknown types are tolerated by contract.
func (c *Client) EmitVolume(volume float64) {
	if !c.throttle.CanSend("volume", volumeInterval) {
		return
	}
	c.send(map[string]any{
		"type":     "volume",
		"clientId": c.opts.ClientID,
		"value":    volume,
	})
}

// EmitName updates the display name, sanitized the same way the server
// will.
func (c *Client) EmitName(name string) {
	c.opts.Name = name
	if !c.throttle.CanSend("name", nameInterval) {
		return
	}
	c.send(map[string]any{
		"type": models.MsgTypeSetName,
		"name": security.SanitizeDisplayName(name),
	})
}

// SendSignal forwards a session-negotiation payload to a peer, throttled
// per destination and action.
func (c *Client) SendSignal(to, action string, payload any) {
	if !c.throttle.CanSend("signal_"+to+"_"+action, signalInterval) {
		return
	}
	c.send(map[string]any{
		"type":    models.MsgTypeSignal,
		"from":    c.opts.ClientID,
		"to":      to,
		"action":  action,
		"payload": payload,
	})
}

// send marshals and writes when connected, dropping otherwise.
func (c *Client) send(message map[string]any) {
	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()

	if !connected || conn == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	_ = conn.Write(ctx, websocket.MessageText, data)
}

func (c *Client) write(ctx context.Context, message map[string]any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("netclient: not connected")
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
