package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Subcero232117/voice/internal/config"
	"github.com/Subcero232117/voice/internal/models"
	"github.com/Subcero232117/voice/internal/security"
)

// Hub is the single owner of all shared relay state. Every inbound frame
// and lifecycle event is funneled through Run's select loop and handled to
// completion before the next, so the store, registry and limiters need no
// locks of their own. The pumps on each client only ever talk to the hub
// through channels and the client's buffered send queue.
type Hub struct {
	store    *ParticipantStore
	registry *ConnectionRegistry
	auth     *AuthorizationEngine
	router   *SignalingRouter
	metrics  *Metrics
	cfg      *config.Config

	floodLimiter  *security.FixedWindow
	signalLimiter *security.FixedWindow

	inbound chan inboundFrame
	closing chan *Client
}

type inboundFrame struct {
	client *Client
	raw    []byte
}

// NewHub wires the relay core together.
func NewHub(cfg *config.Config, metrics *Metrics) *Hub {
	store := NewParticipantStore()
	registry := NewConnectionRegistry()
	auth := NewAuthorizationEngine(store)

	return &Hub{
		store:         store,
		registry:      registry,
		auth:          auth,
		router:        NewSignalingRouter(registry, auth, metrics, cfg.VoiceRadius, cfg.RequireMutualAuth),
		metrics:       metrics,
		cfg:           cfg,
		floodLimiter:  security.NewFixedWindow(config.MaxMessagesPerSecond, config.FloodWindow),
		signalLimiter: security.NewFixedWindow(config.SignalLimit, config.SignalWindow),
		inbound:       make(chan inboundFrame, config.HubInboundBufferSize),
		closing:       make(chan *Client, config.HubInboundBufferSize),
	}
}

// Store exposes the participant store for read-side consumers.
func (h *Hub) Store() *ParticipantStore { return h.store }

// Auth exposes the authorization engine for read-side consumers.
func (h *Hub) Auth() *AuthorizationEngine { return h.auth }

// Run processes connection events until ctx is cancelled. All state
// mutation happens here.
func (h *Hub) Run(ctx context.Context) {
	var proximity <-chan time.Time
	if h.cfg.ProximityEnabled {
		ticker := time.NewTicker(h.cfg.ProximityInterval)
		defer ticker.Stop()
		proximity = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case frame := <-h.inbound:
			h.dispatch(frame.client, frame.raw)

		case client := <-h.closing:
			h.handleClose(client)

		case <-proximity:
			h.broadcastProximity()
		}
	}
}

// Attach registers a freshly accepted connection. It stays invisible to
// other participants until it identifies.
func (h *Hub) Attach(client *Client) {
	h.metrics.IncrementConnections()
	client.Start()
}

// Inbound hands a raw frame to the hub loop.
func (h *Hub) Inbound(client *Client, raw []byte) {
	h.inbound <- inboundFrame{client: client, raw: raw}
}

// Detach reports a connection whose read pump has ended.
func (h *Hub) Detach(client *Client) {
	h.closing <- client
}

// dispatch is one run-to-completion unit of work for an inbound frame.
func (h *Hub) dispatch(client *Client, raw []byte) {
	if client.state == stateClosed {
		return
	}

	decoded, err := models.Decode(raw)
	if err != nil {
		// Unparsable body: drop, keep the connection.
		h.metrics.IncrementMalformedFrames()
		return
	}

	if client.state == stateUnidentified {
		if !h.identify(client, decoded) {
			return
		}
		if _, ok := decoded.Msg.(models.Hello); ok {
			return
		}
		// Game clients identify on a frame that also carries a regular
		// message; fall through and process it.
	}

	switch msg := decoded.Msg.(type) {
	case models.Hello:
		// Already identified; a repeated hello is a no-op.

	case models.StateUpdate:
		h.applyVoiceState(client.id, msg.State)
		h.broadcastRoster()

	case models.MicToggle:
		h.store.SetMuted(client.id, !msg.On)
		h.broadcastRoster()

	case models.MuteSet:
		h.store.SetMuted(client.id, msg.Muted)
		h.broadcastRoster()

	case models.TeamVoice:
		mode := models.ModeGlobal
		if msg.Enabled {
			mode = models.ModeTeam
		}
		h.store.SetVoiceMode(client.id, mode)
		if client.kind == kindWeb {
			client.SendJSON(models.NewTeamVoiceAck(msg.Enabled))
		}
		h.broadcastRoster()

	case models.TeamSet:
		h.store.SetTeam(client.id, models.NormalizeTeam(msg.Color))
		h.broadcastRoster()

	case models.NameSet:
		name := security.SanitizeDisplayName(msg.Name)
		if name == "" {
			return
		}
		h.store.SetName(client.id, name)
		h.broadcastRoster()

	case models.PosUpdate:
		// Position updates are frequent and do not change the roster
		// shape, so they are not rebroadcast.
		h.store.SetPosition(client.id, msg.Pos)

	case models.SignalRequest:
		if !h.signalLimiter.Allow(client.id) {
			h.metrics.IncrementSignalsRateLimited()
			log.Printf("signal rate limit exceeded (participant=%s)", client.id)
			return
		}
		h.router.Forward(client.id, msg)

	case models.PingProbe:
		client.SendJSON(models.NewPong(msg.Timestamp))

	case models.UnknownMessage:
		// Forward compatibility: never an error.
	}
}

// identify runs the single identification transition. It accepts either a
// web hello with a self-assigned id or any game frame carrying a player
// name, and reports whether the connection is now identified.
func (h *Hub) identify(client *Client, decoded models.Decoded) bool {
	if hello, ok := decoded.Msg.(models.Hello); ok {
		if hello.ClientID == "" {
			return false
		}
		h.register(client, hello.ClientID, kindWeb, Patch{})
		client.SendJSON(models.NewRoomAssigned(h.cfg.RoomID, client.id))
		client.probing.Store(true)
		h.broadcastRoster()
		log.Printf("web client connected: %s", client.id)
		return true
	}

	if decoded.Player != "" {
		name := security.SanitizeDisplayName(decoded.Player)
		if name == "" {
			return false
		}
		h.register(client, h.cfg.GamePrefix+":"+name, kindGame, Patch{Name: &name})
		h.broadcastRoster()
		log.Printf("game client connected: %s", client.id)
		return true
	}

	// Anything else before identification is silently discarded.
	return false
}

// register binds the id, seeds the participant record with defaults plus
// the given patch, and flags takeovers.
func (h *Hub) register(client *Client, id string, kind clientKind, patch Patch) {
	client.id = id
	client.kind = kind
	client.state = stateIdentified

	if old := h.registry.Bind(id, client); old != nil {
		// Takeover: the newer connection wins the registry slot. The
		// stale transport gets a farewell and is left to time out; its
		// close is harmless because Release is guarded by identity.
		old.SendJSON(models.NewNotification("signed in from another connection", "warning"))
		old.state = stateClosed
		log.Printf("duplicate registration for %s, replacing previous connection", id)
	} else {
		h.metrics.IncrementParticipants()
	}

	h.store.Upsert(id, Patch{})
	h.store.Upsert(id, patch)
}

// applyVoiceState folds a reported state block into the store.
func (h *Hub) applyVoiceState(id string, state models.VoiceState) {
	h.store.SetVoiceMode(id, models.ModeFromState(state.Mute, state.Team))
	if state.TeamColor != "" {
		h.store.SetTeam(id, models.NormalizeTeam(state.TeamColor))
	}
}

// handleClose tears a connection down: timers cancelled, participant and
// registry entries removed, departure broadcast — one unit of work, so no
// observer ever sees a half-removed participant.
func (h *Hub) handleClose(client *Client) {
	if client.state == stateClosed && client.id == "" {
		return
	}

	wasIdentified := client.state == stateIdentified
	client.state = stateClosed
	client.Close()
	h.floodLimiter.Forget(client.connKey)
	h.metrics.DecrementConnections()

	if !wasIdentified {
		return
	}

	if h.registry.Release(client.id, client) {
		h.store.Remove(client.id)
		h.signalLimiter.Forget(client.id)
		h.metrics.DecrementParticipants()
		h.broadcastRoster()
		log.Printf("client disconnected: %s", client.id)
	}
}

// broadcastRoster serializes a store snapshot once and fans it out to
// every identified connection.
func (h *Hub) broadcastRoster() {
	data, err := json.Marshal(models.NewRosterUpdate(h.store.Snapshot()))
	if err != nil {
		log.Printf("roster marshal error: %v", err)
		return
	}

	h.registry.Each(func(_ string, client *Client) {
		client.Send(data)
	})
	h.metrics.IncrementRosterBroadcasts()
}

// broadcastProximity fans out the hearing-list projection.
func (h *Hub) broadcastProximity() {
	if h.registry.Len() == 0 {
		return
	}

	data, err := json.Marshal(models.NewProximityUpdate(h.auth.HearEntries(h.cfg.HearRadius)))
	if err != nil {
		return
	}

	h.registry.Each(func(_ string, client *Client) {
		client.Send(data)
	})
}
