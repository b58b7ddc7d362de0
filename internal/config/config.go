package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config carries the runtime settings of the relay.
type Config struct {
	Addr              string
	RoomID            string
	AllowedOrigins    []string
	GamePrefix        string
	VoiceRadius       float64
	HearRadius        float64
	RequireMutualAuth bool
	ProximityEnabled  bool
	ProximityInterval time.Duration
}

// Load reads settings from the environment, consulting a .env file when
// one is present. Unset values get working defaults; ROOM_ID defaults to
// a fresh identifier per process since no state outlives it anyway.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:              ":" + envOr("PORT", "8000"),
		RoomID:            envOr("ROOM_ID", "room-"+uuid.NewString()[:8]),
		AllowedOrigins:    splitList(envOr("ALLOWED_ORIGINS", "*")),
		GamePrefix:        envOr("GAME_PREFIX", "mc"),
		VoiceRadius:       envFloat("VOICE_RADIUS", DefaultVoiceRadius),
		HearRadius:        envFloat("HEAR_RADIUS", DefaultHearRadius),
		RequireMutualAuth: envBool("REQUIRE_MUTUAL_AUTH", false),
		ProximityEnabled:  envBool("PROXIMITY_RELAY", false),
		ProximityInterval: envDuration("PROXIMITY_INTERVAL", DefaultProximityInterval),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
