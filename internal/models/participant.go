package models

import "strings"

// VoiceMode governs who may hear a speaker.
type VoiceMode string

const (
	ModeGlobal VoiceMode = "global" // audible to everyone in range
	ModeTeam   VoiceMode = "team"   // audible to own team only
	ModeMute   VoiceMode = "mute"   // emits no audio
	ModeDead   VoiceMode = "dead"   // spectator/dead, emits no audio
)

// TeamColor partitions participants for team-only voice.
type TeamColor string

const (
	TeamNone   TeamColor = "none"
	TeamRed    TeamColor = "red"
	TeamBlue   TeamColor = "blue"
	TeamGreen  TeamColor = "green"
	TeamYellow TeamColor = "yellow"
	TeamPurple TeamColor = "purple"
	TeamOrange TeamColor = "orange"
)

var validTeams = map[TeamColor]bool{
	TeamNone:   true,
	TeamRed:    true,
	TeamBlue:   true,
	TeamGreen:  true,
	TeamYellow: true,
	TeamPurple: true,
	TeamOrange: true,
}

var validModes = map[VoiceMode]bool{
	ModeGlobal: true,
	ModeTeam:   true,
	ModeMute:   true,
	ModeDead:   true,
}

// NormalizeTeam lowercases the color and falls back to none for anything
// outside the known palette.
func NormalizeTeam(color string) TeamColor {
	c := TeamColor(strings.ToLower(strings.TrimSpace(color)))
	if c == "" || !validTeams[c] {
		return TeamNone
	}
	return c
}

// IsValidTeam reports whether color is one of the known team colors.
func IsValidTeam(color TeamColor) bool {
	return validTeams[color]
}

// IsValidMode reports whether mode is one of the known voice modes.
func IsValidMode(mode VoiceMode) bool {
	return validModes[mode]
}

// IsInaudible reports whether a speaker in this mode emits no audio at all.
func IsInaudible(mode VoiceMode) bool {
	return mode == ModeMute || mode == ModeDead
}

// ModeFromState derives a voice mode from the mute/team flags reported by
// game clients: mute wins over team, team wins over global.
func ModeFromState(mute, team bool) VoiceMode {
	switch {
	case mute:
		return ModeMute
	case team:
		return ModeTeam
	default:
		return ModeGlobal
	}
}

// SameTeam reports whether two colors are the same real team. The none
// color never matches anything, including itself.
func SameTeam(a, b TeamColor) bool {
	return a == b && a != TeamNone
}

// Position is a participant's reported location. Dim identifies the
// dimension/zone; an empty Dim means the zone is unknown.
type Position struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
	Dim string  `json:"dim,omitempty"`
}

// Participant is one connected identity with its voice routing state.
type Participant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Team      TeamColor `json:"team"`
	VoiceMode VoiceMode `json:"voiceMode"`
	Pos       Position  `json:"pos"`
}

// NewParticipant returns a participant with routing defaults: no team,
// global voice, origin position.
func NewParticipant(id string) Participant {
	return Participant{
		ID:        id,
		Name:      id,
		Team:      TeamNone,
		VoiceMode: ModeGlobal,
	}
}
