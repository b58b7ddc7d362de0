package services

import (
	"github.com/Subcero232117/voice/internal/models"
)

// ParticipantStore is the authoritative map of per-participant voice
// state. It is owned by the hub goroutine and is deliberately not
// self-locking: every mutation happens inside one run-to-completion unit
// of work on that goroutine.
type ParticipantStore struct {
	participants map[string]models.Participant
}

// NewParticipantStore creates an empty store.
func NewParticipantStore() *ParticipantStore {
	return &ParticipantStore{
		participants: make(map[string]models.Participant),
	}
}

// Patch is a partial participant update. Nil fields leave the existing
// value untouched.
type Patch struct {
	Name      *string
	Team      *models.TeamColor
	VoiceMode *models.VoiceMode
	Pos       *models.Position
}

// Upsert shallow-merges patch into the record for id, creating one with
// defaults when absent. Upserting an empty patch never changes an
// existing record.
func (s *ParticipantStore) Upsert(id string, patch Patch) {
	p, ok := s.participants[id]
	if !ok {
		p = models.NewParticipant(id)
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Team != nil {
		p.Team = *patch.Team
	}
	if patch.VoiceMode != nil {
		p.VoiceMode = *patch.VoiceMode
	}
	if patch.Pos != nil {
		p.Pos = *patch.Pos
	}

	s.participants[id] = p
}

// SetTeam updates a participant's team, normalizing unknown colors to none.
func (s *ParticipantStore) SetTeam(id string, color models.TeamColor) {
	if !models.IsValidTeam(color) {
		color = models.TeamNone
	}
	s.Upsert(id, Patch{Team: &color})
}

// SetVoiceMode updates a participant's voice mode. Unknown modes are
// ignored rather than normalized so a garbled update cannot unmute anyone.
func (s *ParticipantStore) SetVoiceMode(id string, mode models.VoiceMode) {
	if !models.IsValidMode(mode) {
		return
	}
	s.Upsert(id, Patch{VoiceMode: &mode})
}

// SetMuted flips between mute and global. It intentionally discards a
// previous team mode: unmuting returns the participant to global voice,
// matching the mic button's behavior.
func (s *ParticipantStore) SetMuted(id string, muted bool) {
	mode := models.ModeGlobal
	if muted {
		mode = models.ModeMute
	}
	s.SetVoiceMode(id, mode)
}

// SetName updates the display name. The caller sanitizes first.
func (s *ParticipantStore) SetName(id, name string) {
	s.Upsert(id, Patch{Name: &name})
}

// SetPosition updates the reported position and dimension.
func (s *ParticipantStore) SetPosition(id string, pos models.Position) {
	s.Upsert(id, Patch{Pos: &pos})
}

// Remove deletes the record for id, if any.
func (s *ParticipantStore) Remove(id string) {
	delete(s.participants, id)
}

// Get returns a copy of the record for id.
func (s *ParticipantStore) Get(id string) (models.Participant, bool) {
	p, ok := s.participants[id]
	return p, ok
}

// Len returns the number of live records.
func (s *ParticipantStore) Len() int {
	return len(s.participants)
}

// Snapshot returns a point-in-time copy of every record. Participants are
// value types, so later store mutation cannot reach into a snapshot a
// broadcast is still serializing.
func (s *ParticipantStore) Snapshot() map[string]models.Participant {
	snap := make(map[string]models.Participant, len(s.participants))
	for id, p := range s.participants {
		snap[id] = p
	}
	return snap
}
