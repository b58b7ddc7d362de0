package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Subcero232117/voice/internal/models"
	"github.com/Subcero232117/voice/internal/services"
)

func strPtr(s string) *string { return &s }
func teamPtr(t models.TeamColor) *models.TeamColor { return &t }
func modePtr(m models.VoiceMode) *models.VoiceMode { return &m }
func posPtr(p models.Position) *models.Position { return &p }

func TestParticipantStore_UpsertCreatesWithDefaults(t *testing.T) {
	store := services.NewParticipantStore()

	store.Upsert("p1", services.Patch{})

	p, ok := store.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "p1", p.Name)
	assert.Equal(t, models.TeamNone, p.Team)
	assert.Equal(t, models.ModeGlobal, p.VoiceMode)
	assert.Equal(t, models.Position{}, p.Pos)
}

func TestParticipantStore_UpsertShallowMerge(t *testing.T) {
	store := services.NewParticipantStore()

	store.Upsert("p1", services.Patch{
		Name: strPtr("Steve"),
		Team: teamPtr(models.TeamRed),
	})
	store.Upsert("p1", services.Patch{
		VoiceMode: modePtr(models.ModeTeam),
	})

	p, _ := store.Get("p1")
	assert.Equal(t, "Steve", p.Name, "field absent from patch stays untouched")
	assert.Equal(t, models.TeamRed, p.Team)
	assert.Equal(t, models.ModeTeam, p.VoiceMode)
}

func TestParticipantStore_UpsertIdempotence(t *testing.T) {
	store := services.NewParticipantStore()

	store.Upsert("p1", services.Patch{
		Name: strPtr("Alex"),
		Pos:  posPtr(models.Position{X: 1, Z: 2, Dim: "o"}),
	})
	before, _ := store.Get("p1")

	t.Run("empty patch never changes a record", func(t *testing.T) {
		store.Upsert("p1", services.Patch{})
		after, _ := store.Get("p1")
		assert.Equal(t, before, after)
	})

	t.Run("identical patch applied twice equals once", func(t *testing.T) {
		patch := services.Patch{
			Team:      teamPtr(models.TeamBlue),
			VoiceMode: modePtr(models.ModeMute),
		}
		store.Upsert("p1", patch)
		once, _ := store.Get("p1")
		store.Upsert("p1", patch)
		twice, _ := store.Get("p1")
		assert.Equal(t, once, twice)
	})
}

func TestParticipantStore_SetTeamNormalizesUnknownColors(t *testing.T) {
	store := services.NewParticipantStore()

	store.SetTeam("p1", models.TeamColor("chartreuse"))
	p, _ := store.Get("p1")
	assert.Equal(t, models.TeamNone, p.Team)

	store.SetTeam("p1", models.TeamGreen)
	p, _ = store.Get("p1")
	assert.Equal(t, models.TeamGreen, p.Team)
}

func TestParticipantStore_SetVoiceModeIgnoresUnknownModes(t *testing.T) {
	store := services.NewParticipantStore()
	store.SetVoiceMode("p1", models.ModeMute)

	store.SetVoiceMode("p1", models.VoiceMode("shouting"))

	p, _ := store.Get("p1")
	assert.Equal(t, models.ModeMute, p.VoiceMode, "garbled update must not unmute")
}

func TestParticipantStore_SetMuted(t *testing.T) {
	store := services.NewParticipantStore()

	store.SetMuted("p1", true)
	p, _ := store.Get("p1")
	assert.Equal(t, models.ModeMute, p.VoiceMode)

	store.SetMuted("p1", false)
	p, _ = store.Get("p1")
	assert.Equal(t, models.ModeGlobal, p.VoiceMode)
}

func TestParticipantStore_Remove(t *testing.T) {
	store := services.NewParticipantStore()
	store.Upsert("p1", services.Patch{})

	store.Remove("p1")

	_, ok := store.Get("p1")
	assert.False(t, ok)
	assert.Zero(t, store.Len())

	// Removing a missing id is harmless.
	store.Remove("p1")
}

func TestParticipantStore_SnapshotReflectsLatestMergedStates(t *testing.T) {
	store := services.NewParticipantStore()

	store.Upsert("a", services.Patch{Team: teamPtr(models.TeamRed), VoiceMode: modePtr(models.ModeTeam)})
	store.Upsert("b", services.Patch{Pos: posPtr(models.Position{X: 5, Dim: "nether"})})
	store.Upsert("c", services.Patch{Name: strPtr("Carol")})
	store.Upsert("a", services.Patch{Name: strPtr("Anna")})

	snap := store.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, models.TeamRed, snap["a"].Team)
	assert.Equal(t, models.ModeTeam, snap["a"].VoiceMode)
	assert.Equal(t, "Anna", snap["a"].Name)
	assert.Equal(t, models.Position{X: 5, Dim: "nether"}, snap["b"].Pos)
	assert.Equal(t, "Carol", snap["c"].Name)
}

func TestParticipantStore_SnapshotIsolation(t *testing.T) {
	store := services.NewParticipantStore()
	store.Upsert("a", services.Patch{Team: teamPtr(models.TeamRed)})

	snap := store.Snapshot()
	store.SetTeam("a", models.TeamBlue)
	store.Remove("a")

	assert.Equal(t, models.TeamRed, snap["a"].Team, "snapshot must not observe later mutation")
	assert.Contains(t, snap, "a")
}
