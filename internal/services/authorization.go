package services

import (
	"math"
	"sort"

	"github.com/Subcero232117/voice/internal/models"
)

// AuthorizationEngine answers "may listener hear speaker". The decision is
// asymmetric and driven by the speaker's declared mode, so CanHear(a, b)
// and CanHear(b, a) can disagree whenever the two sides are in different
// modes. Anything deciding a two-way session must check both directions.
type AuthorizationEngine struct {
	store *ParticipantStore
}

// NewAuthorizationEngine creates an engine reading from store.
func NewAuthorizationEngine(store *ParticipantStore) *AuthorizationEngine {
	return &AuthorizationEngine{store: store}
}

// CanHear reports whether listener may hear speaker within maxDistance.
//
// Mute and dead speakers are inaudible to everyone. Team mode is a hard
// partition: same non-none team or nothing, regardless of distance or
// dimension. Global mode never crosses dimensions when both are known,
// and otherwise compares horizontal distance (altitude ignored) against
// maxDistance, inclusive.
func (a *AuthorizationEngine) CanHear(listenerID, speakerID string, maxDistance float64) bool {
	listener, ok := a.store.Get(listenerID)
	if !ok {
		return false
	}
	speaker, ok := a.store.Get(speakerID)
	if !ok {
		return false
	}

	if models.IsInaudible(speaker.VoiceMode) {
		return false
	}

	if speaker.VoiceMode == models.ModeTeam {
		return models.SameTeam(listener.Team, speaker.Team)
	}

	if speaker.Pos.Dim != "" && listener.Pos.Dim != "" && speaker.Pos.Dim != listener.Pos.Dim {
		return false
	}

	dx := listener.Pos.X - speaker.Pos.X
	dz := listener.Pos.Z - speaker.Pos.Z
	return math.Sqrt(dx*dx+dz*dz) <= maxDistance
}

// HearMap computes, for every participant, the display names of the peers
// audible to them within maxDistance. This is the UI hearing-list
// projection: full 3-D distance within the same dimension, without the
// mode rules that gate actual voice routing.
func (a *AuthorizationEngine) HearMap(maxDistance float64) map[string][]string {
	snap := a.store.Snapshot()
	ids := make([]string, 0, len(snap))
	for id := range snap {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make(map[string][]string, len(ids))
	for _, id := range ids {
		me := snap[id]
		hear := []string{}
		for _, oid := range ids {
			if oid == id {
				continue
			}
			other := snap[oid]
			if me.Pos.Dim != "" && other.Pos.Dim != "" && me.Pos.Dim != other.Pos.Dim {
				continue
			}
			dx := me.Pos.X - other.Pos.X
			dy := me.Pos.Y - other.Pos.Y
			dz := me.Pos.Z - other.Pos.Z
			if dx*dx+dy*dy+dz*dz <= maxDistance*maxDistance {
				name := other.Name
				if name == "" {
					name = oid
				}
				hear = append(hear, name)
			}
		}
		result[id] = hear
	}
	return result
}

// HearEntries flattens HearMap into broadcastable entries, ordered by id.
func (a *AuthorizationEngine) HearEntries(maxDistance float64) []models.HearEntry {
	hearMap := a.HearMap(maxDistance)
	ids := make([]string, 0, len(hearMap))
	for id := range hearMap {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]models.HearEntry, 0, len(ids))
	for _, id := range ids {
		p, _ := a.store.Get(id)
		name := p.Name
		if name == "" {
			name = id
		}
		entries = append(entries, models.HearEntry{ID: id, Name: name, Hear: hearMap[id]})
	}
	return entries
}
