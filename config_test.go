package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultGameConfig(), cfg.Game)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "shipwars.db", cfg.Ranking.DBPath)
	assert.Equal(t, 10, cfg.Ranking.TopN)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SHIPWARS_GAME_MAX_PLAYERS", "4")
	t.Setenv("SHIPWARS_SERVER_ADDR", ":9000")
	t.Setenv("SHIPWARS_AUTH_TOKEN_TTL", "90m")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Game.MaxPlayers)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipwars.yaml")
	content := `
game:
  sea_width: 800
  sea_height: 600
ranking:
  top_n: 5
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 800.0, cfg.Game.SeaWidth)
	assert.Equal(t, 600.0, cfg.Game.SeaHeight)
	assert.Equal(t, DefaultGameConfig().ShipWidth, cfg.Game.ShipWidth)
	assert.Equal(t, 5, cfg.Ranking.TopN)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsInvalidRules(t *testing.T) {
	for _, env := range []string{
		"SHIPWARS_GAME_MAX_PLAYERS",
		"SHIPWARS_GAME_FIRE_LOAD_SPEED",
		"SHIPWARS_GAME_RESPAWN_ATTEMPTS",
	} {
		t.Run(env, func(t *testing.T) {
			t.Setenv(env, "0")
			_, err := LoadConfig("")
			assert.Error(t, err)
		})
	}
}

func TestGameConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GameConfig)
	}{
		{"zero sea", func(g *GameConfig) { g.SeaWidth = 0 }},
		{"zero ship width", func(g *GameConfig) { g.ShipWidth = 0 }},
		{"zero tick rate", func(g *GameConfig) { g.TickRate = 0 }},
		{"inverted hp", func(g *GameConfig) { g.MinHP = g.MaxHP }},
		{"inverted fp", func(g *GameConfig) { g.MinFP = g.MaxFP + 1 }},
		{"inverted speed", func(g *GameConfig) { g.MinSpeed = g.MaxSpeed + 1 }},
		{"fire minimum too large", func(g *GameConfig) { g.FireLoadMinimum = g.MaxFP + 1 }},
		{"bad name bounds", func(g *GameConfig) { g.NameMinChars = 20 }},
		{"zero fire load speed", func(g *GameConfig) { g.FireLoadSpeed = 0 }},
		{"negative fp regeneration", func(g *GameConfig) { g.FireLoadIncreasing = -0.1 }},
		{"negative repair ratio", func(g *GameConfig) { g.RepairRatio = -1 }},
		{"zero acceleration", func(g *GameConfig) { g.Acceleration = 0 }},
		{"negative turn step", func(g *GameConfig) { g.TurnStep = -2 }},
		{"zero projectile speed", func(g *GameConfig) { g.ProjectileSpeed = 0 }},
		{"no respawn attempts", func(g *GameConfig) { g.RespawnAttempts = 0 }},
	}

	require.NoError(t, DefaultGameConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := DefaultGameConfig()
			tt.mutate(&g)
			assert.Error(t, g.Validate())
		})
	}
}

func TestDerivedConfig(t *testing.T) {
	g := DefaultGameConfig()
	assert.Equal(t, 40.0, g.ShipDiameter())
	assert.Equal(t, time.Second/60, g.TickDuration())
}
