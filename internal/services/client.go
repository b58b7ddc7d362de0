package services

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/Subcero232117/voice/internal/config"
	"github.com/Subcero232117/voice/internal/models"
)

// Conn is the subset of *websocket.Conn the relay uses. Tests substitute
// an in-memory implementation.
type Conn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, data []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// connState is the connection lifecycle: unidentified until the first
// identifying frame, then identified, then closed. Closed is terminal.
type connState int

const (
	stateUnidentified connState = iota
	stateIdentified
	stateClosed
)

// clientKind distinguishes the two handshake variants.
type clientKind int

const (
	kindUnknown clientKind = iota
	kindWeb
	kindGame
)

// Client owns one WebSocket connection: a read pump feeding the hub and a
// write pump draining a buffered send channel. The id, kind and state
// fields belong to the hub goroutine; the pumps never touch them.
type Client struct {
	conn    Conn
	hub     *Hub
	send    chan []byte
	connKey string

	// Hub-owned lifecycle state
	id    string
	kind  clientKind
	state connState

	// Read by the write pump once the hub enables latency probes
	probing atomic.Bool

	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
	closeMu sync.Mutex
}

// NewClient wraps an accepted connection. Start must be called to begin
// the pumps.
func NewClient(conn Conn, hub *Hub) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		conn:    conn,
		hub:     hub,
		send:    make(chan []byte, config.ClientSendBufferSize),
		connKey: uuid.NewString(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// ID returns the bound participant id, empty until identification.
func (c *Client) ID() string {
	return c.id
}

// Start begins the client's read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) writePump() {
	ticker := time.NewTicker(config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				_ = c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}

			writeCtx, cancel := context.WithTimeout(c.ctx, config.WriteTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()

			if err != nil {
				log.Printf("write error (participant=%s): %v", c.connKey, err)
				c.hub.metrics.IncrementBroadcastErrors()
				return
			}
			c.hub.metrics.IncrementMessagesSent()

		case <-ticker.C:
			// Synthetic latency probe for identified web clients. The
			// value stands in for a measured RTT until the game bridge
			// reports real ones.
			if !c.probing.Load() {
				continue
			}
			data, err := json.Marshal(models.NewPingValue(20 + rand.Intn(80)))
			if err != nil {
				continue
			}
			pingCtx, cancel := context.WithTimeout(c.ctx, config.WriteTimeout)
			err = c.conn.Write(pingCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) readPump() {
	defer c.hub.Detach(c)

	for {
		_, message, err := c.conn.Read(c.ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && c.ctx.Err() == nil {
				c.hub.metrics.IncrementConnectionErrors()
			}
			return
		}

		if len(message) > config.MaxMessageBytes {
			continue
		}

		if !c.hub.floodLimiter.Allow(c.connKey) {
			c.hub.metrics.IncrementFloodViolations()
			c.SendJSON(models.NewErrorMessage("Rate limit exceeded. Please slow down."))
			continue
		}

		c.hub.metrics.IncrementMessagesReceived()
		c.hub.Inbound(c, message)
	}
}

// Send queues a raw frame for delivery. A client whose buffer is full is
// too slow to keep and gets closed instead of blocking the hub.
func (c *Client) Send(message []byte) bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- message:
		return true
	default:
		// connKey, not id: Send is reachable from the read pump and id
		// belongs to the hub goroutine.
		log.Printf("send buffer full, closing slow client (conn=%s)", c.connKey)
		c.hub.metrics.IncrementBroadcastErrors()
		go c.Close()
		return false
	}
}

// SendJSON marshals v and queues it for delivery.
func (c *Client) SendJSON(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return false
	}
	return c.Send(data)
}

// Close shuts the connection down. Safe to call more than once.
func (c *Client) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.cancel()
	close(c.send)
	_ = c.conn.Close(websocket.StatusNormalClosure, "")
}
