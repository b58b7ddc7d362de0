package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Subcero232117/voice/internal/models"
)

func TestNormalizeTeam(t *testing.T) {
	tests := []struct {
		input string
		want  models.TeamColor
	}{
		{"red", models.TeamRed},
		{"RED", models.TeamRed},
		{"  Blue ", models.TeamBlue},
		{"chartreuse", models.TeamNone},
		{"", models.TeamNone},
		{"none", models.TeamNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, models.NormalizeTeam(tt.input), "input=%q", tt.input)
	}
}

func TestModeFromState(t *testing.T) {
	assert.Equal(t, models.ModeMute, models.ModeFromState(true, true), "mute wins over team")
	assert.Equal(t, models.ModeMute, models.ModeFromState(true, false))
	assert.Equal(t, models.ModeTeam, models.ModeFromState(false, true))
	assert.Equal(t, models.ModeGlobal, models.ModeFromState(false, false))
}

func TestIsInaudible(t *testing.T) {
	assert.True(t, models.IsInaudible(models.ModeMute))
	assert.True(t, models.IsInaudible(models.ModeDead))
	assert.False(t, models.IsInaudible(models.ModeGlobal))
	assert.False(t, models.IsInaudible(models.ModeTeam))
}

func TestSameTeam(t *testing.T) {
	assert.True(t, models.SameTeam(models.TeamRed, models.TeamRed))
	assert.False(t, models.SameTeam(models.TeamRed, models.TeamBlue))
	assert.False(t, models.SameTeam(models.TeamNone, models.TeamNone), "none never matches, even itself")
}

func TestNewParticipantDefaults(t *testing.T) {
	p := models.NewParticipant("mc:Steve")

	assert.Equal(t, "mc:Steve", p.ID)
	assert.Equal(t, "mc:Steve", p.Name)
	assert.Equal(t, models.TeamNone, p.Team)
	assert.Equal(t, models.ModeGlobal, p.VoiceMode)
	assert.Equal(t, models.Position{}, p.Pos)
}
