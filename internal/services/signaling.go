package services

import (
	"log"

	"github.com/Subcero232117/voice/internal/models"
)

// DropReason is the internal-only explanation for an undelivered signal.
// It feeds metrics and logs and is never sent back to the origin, so a
// rejected sender cannot probe who is online or who refuses them.
type DropReason string

const (
	DropNone      DropReason = ""
	DropInvalid   DropReason = "invalid"
	DropForbidden DropReason = "forbidden"
	DropClosed    DropReason = "closed"
)

// SessionAction values are opaque to the relay except for offer, which
// starts a session and is the one place the mutual-authorization policy
// can apply.
const SessionActionOffer = "offer"

// SignalingRouter validates and forwards opaque session-negotiation
// frames between authorized pairs. Delivery is fire-and-forget: no
// acknowledgement, no retry, no ordering across actions. The peers'
// negotiation layer resolves simultaneous offers with a polite/impolite
// role derived from comparing the two ids.
type SignalingRouter struct {
	registry *ConnectionRegistry
	auth     *AuthorizationEngine
	metrics  *Metrics

	// voiceRadius is the hearing radius applied to signaling
	// authorization, matching voice routing.
	voiceRadius float64

	// requireMutual additionally demands the reverse direction before an
	// offer may pass. Policy knob: a one-way check lets a session start
	// that only ever carries audio one way.
	requireMutual bool
}

// NewSignalingRouter creates a router over the given registry and engine.
func NewSignalingRouter(registry *ConnectionRegistry, auth *AuthorizationEngine, metrics *Metrics, voiceRadius float64, requireMutual bool) *SignalingRouter {
	return &SignalingRouter{
		registry:      registry,
		auth:          auth,
		metrics:       metrics,
		voiceRadius:   voiceRadius,
		requireMutual: requireMutual,
	}
}

// Forward delivers req.Payload verbatim to req.To, tagged with the true
// origin, when the destination currently accepts audio from the origin.
func (sr *SignalingRouter) Forward(fromID string, req models.SignalRequest) DropReason {
	if req.To == "" || req.Action == "" {
		return DropInvalid
	}

	if !sr.auth.CanHear(req.To, fromID, sr.voiceRadius) {
		sr.drop(fromID, req.To, DropForbidden)
		return DropForbidden
	}
	if sr.requireMutual && req.Action == SessionActionOffer && !sr.auth.CanHear(fromID, req.To, sr.voiceRadius) {
		sr.drop(fromID, req.To, DropForbidden)
		return DropForbidden
	}

	target, ok := sr.registry.Get(req.To)
	if !ok {
		sr.drop(fromID, req.To, DropClosed)
		return DropClosed
	}

	if !target.SendJSON(models.NewSignalDelivery(fromID, req.Action, req.Payload)) {
		sr.drop(fromID, req.To, DropClosed)
		return DropClosed
	}

	sr.metrics.IncrementSignalsForwarded()
	return DropNone
}

func (sr *SignalingRouter) drop(from, to string, reason DropReason) {
	log.Printf("signal dropped %s -> %s (%s)", from, to, reason)
	switch reason {
	case DropForbidden:
		sr.metrics.IncrementSignalsForbidden()
	case DropClosed:
		sr.metrics.IncrementSignalsUnrouteable()
	}
}
