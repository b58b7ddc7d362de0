package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Subcero232117/voice/internal/models"
	"github.com/Subcero232117/voice/internal/services"
)

func seed(store *services.ParticipantStore, id string, team models.TeamColor, mode models.VoiceMode, pos models.Position) {
	store.Upsert(id, services.Patch{
		Team:      &team,
		VoiceMode: &mode,
		Pos:       &pos,
	})
}

func TestCanHear_UnknownParticipants(t *testing.T) {
	store := services.NewParticipantStore()
	auth := services.NewAuthorizationEngine(store)
	seed(store, "known", models.TeamNone, models.ModeGlobal, models.Position{})

	assert.False(t, auth.CanHear("known", "ghost", 100))
	assert.False(t, auth.CanHear("ghost", "known", 100))
	assert.False(t, auth.CanHear("ghost", "phantom", 100))
}

func TestCanHear_MutedAndDeadSpeakersAreInaudible(t *testing.T) {
	store := services.NewParticipantStore()
	auth := services.NewAuthorizationEngine(store)

	// Same team, same spot: nothing should make a mute/dead speaker heard.
	seed(store, "listener", models.TeamRed, models.ModeGlobal, models.Position{})
	for _, mode := range []models.VoiceMode{models.ModeMute, models.ModeDead} {
		seed(store, "speaker", models.TeamRed, mode, models.Position{})
		for _, d := range []float64{0, 1, 1000} {
			assert.False(t, auth.CanHear("listener", "speaker", d),
				"mode=%s distance=%v", mode, d)
		}
	}
}

func TestCanHear_TeamModeIsAHardPartition(t *testing.T) {
	store := services.NewParticipantStore()
	auth := services.NewAuthorizationEngine(store)

	tests := []struct {
		name         string
		listenerTeam models.TeamColor
		speakerTeam  models.TeamColor
		want         bool
	}{
		{"same team", models.TeamRed, models.TeamRed, true},
		{"different teams", models.TeamBlue, models.TeamRed, false},
		{"both teamless", models.TeamNone, models.TeamNone, false},
		{"speaker teamless", models.TeamRed, models.TeamNone, false},
		{"listener teamless", models.TeamNone, models.TeamRed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Distant positions and different dimensions: team mode
			// ignores both.
			seed(store, "listener", tt.listenerTeam, models.ModeGlobal, models.Position{X: 9999, Dim: "nether"})
			seed(store, "speaker", tt.speakerTeam, models.ModeTeam, models.Position{Dim: "overworld"})

			assert.Equal(t, tt.want, auth.CanHear("listener", "speaker", 0))
		})
	}
}

func TestCanHear_GlobalModeCrossDimension(t *testing.T) {
	store := services.NewParticipantStore()
	auth := services.NewAuthorizationEngine(store)

	seed(store, "listener", models.TeamNone, models.ModeGlobal, models.Position{Dim: "overworld"})
	seed(store, "speaker", models.TeamNone, models.ModeGlobal, models.Position{Dim: "nether"})
	assert.False(t, auth.CanHear("listener", "speaker", 1e9),
		"cross-zone audio is never authorized")

	t.Run("unknown dimension does not block", func(t *testing.T) {
		seed(store, "speaker", models.TeamNone, models.ModeGlobal, models.Position{Dim: ""})
		assert.True(t, auth.CanHear("listener", "speaker", 10))
	})
}

func TestCanHear_GlobalModeHorizontalDistance(t *testing.T) {
	store := services.NewParticipantStore()
	auth := services.NewAuthorizationEngine(store)

	tests := []struct {
		name        string
		speakerPos  models.Position
		maxDistance float64
		want        bool
	}{
		{"in range", models.Position{X: 5, Dim: "o"}, 10, true},
		{"boundary is inclusive", models.Position{X: 10, Dim: "o"}, 10, true},
		{"out of range", models.Position{X: 20, Dim: "o"}, 10, false},
		{"altitude ignored", models.Position{Y: 500, Dim: "o"}, 10, true},
		{"diagonal", models.Position{X: 3, Z: 4, Dim: "o"}, 5, true},
		{"diagonal out of range", models.Position{X: 3, Z: 4, Dim: "o"}, 4.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed(store, "listener", models.TeamNone, models.ModeGlobal, models.Position{Dim: "o"})
			seed(store, "speaker", models.TeamNone, models.ModeGlobal, tt.speakerPos)

			assert.Equal(t, tt.want, auth.CanHear("listener", "speaker", tt.maxDistance))
		})
	}
}

func TestCanHear_IsAsymmetric(t *testing.T) {
	store := services.NewParticipantStore()
	auth := services.NewAuthorizationEngine(store)

	// A speaks globally, B speaks team-only; they are close but not
	// teamed, so A can be heard by B while B cannot be heard by A.
	seed(store, "a", models.TeamNone, models.ModeGlobal, models.Position{})
	seed(store, "b", models.TeamRed, models.ModeTeam, models.Position{X: 1})

	assert.True(t, auth.CanHear("b", "a", 10))
	assert.False(t, auth.CanHear("a", "b", 10))
}

func TestCanHear_TeamScenario(t *testing.T) {
	store := services.NewParticipantStore()
	auth := services.NewAuthorizationEngine(store)

	seed(store, "A", models.TeamRed, models.ModeTeam, models.Position{})
	seed(store, "B", models.TeamRed, models.ModeGlobal, models.Position{})
	seed(store, "C", models.TeamBlue, models.ModeGlobal, models.Position{})

	assert.True(t, auth.CanHear("B", "A", 10))
	assert.False(t, auth.CanHear("C", "A", 10))
}

func TestCanHear_MovementScenario(t *testing.T) {
	store := services.NewParticipantStore()
	auth := services.NewAuthorizationEngine(store)

	seed(store, "X", models.TeamNone, models.ModeGlobal, models.Position{Dim: "o"})
	seed(store, "Y", models.TeamNone, models.ModeGlobal, models.Position{X: 5, Dim: "o"})
	assert.True(t, auth.CanHear("X", "Y", 10))

	store.SetPosition("Y", models.Position{X: 20, Dim: "o"})
	assert.False(t, auth.CanHear("X", "Y", 10))
}

func TestHearMap_Projection(t *testing.T) {
	store := services.NewParticipantStore()
	auth := services.NewAuthorizationEngine(store)

	name := func(s string) *string { return &s }
	store.Upsert("a", services.Patch{Name: name("Anna"), Pos: &models.Position{Dim: "o"}})
	store.Upsert("b", services.Patch{Name: name("Ben"), Pos: &models.Position{X: 10, Dim: "o"}})
	store.Upsert("c", services.Patch{Name: name("Cleo"), Pos: &models.Position{X: 0, Y: 100, Dim: "o"}})
	store.Upsert("d", services.Patch{Name: name("Dan"), Pos: &models.Position{Dim: "nether"}})

	hearMap := auth.HearMap(32)

	assert.ElementsMatch(t, []string{"Ben"}, hearMap["a"], "vertical distance counts in the projection")
	assert.ElementsMatch(t, []string{"Anna"}, hearMap["b"])
	assert.Empty(t, hearMap["c"])
	assert.Empty(t, hearMap["d"], "other dimension is out of the projection")
}

func TestHearEntries_OrderedAndNamed(t *testing.T) {
	store := services.NewParticipantStore()
	auth := services.NewAuthorizationEngine(store)

	store.Upsert("b", services.Patch{})
	store.Upsert("a", services.Patch{})

	entries := auth.HearEntries(32)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
}
