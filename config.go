package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Game    GameConfig    `mapstructure:"game"`
	Ranking RankingConfig `mapstructure:"ranking"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds transport settings
type ServerConfig struct {
	Addr              string  `mapstructure:"addr"`
	ClientDir         string  `mapstructure:"client_dir"`
	PublicURL         string  `mapstructure:"public_url"`
	MaxConnsPerIP     int     `mapstructure:"max_conns_per_ip"`
	MaxTotalConns     int     `mapstructure:"max_total_conns"`
	MessagesPerSecond float64 `mapstructure:"messages_per_second"`
	MessageBurst      int     `mapstructure:"message_burst"`
}

// GameConfig holds every simulation constant
type GameConfig struct {
	SeaWidth           float64 `mapstructure:"sea_width"`
	SeaHeight          float64 `mapstructure:"sea_height"`
	ShipWidth          float64 `mapstructure:"ship_width"`
	TickRate           int     `mapstructure:"tick_rate"`
	MaxPlayers         int     `mapstructure:"max_players"`
	MinHP              float64 `mapstructure:"min_hp"`
	MaxHP              float64 `mapstructure:"max_hp"`
	MinFP              float64 `mapstructure:"min_fp"`
	MaxFP              float64 `mapstructure:"max_fp"`
	MinSpeed           float64 `mapstructure:"min_speed"`
	MaxSpeed           float64 `mapstructure:"max_speed"`
	Acceleration       float64 `mapstructure:"acceleration"`
	TurnStep           float64 `mapstructure:"turn_step"`            // degrees per tick
	FireLoadMinimum    float64 `mapstructure:"fire_load_minimum"`    // smallest charge a shot can have
	FireLoadSpeed      float64 `mapstructure:"fire_load_speed"`      // charge (and fp) per tick
	FireLoadIncreasing float64 `mapstructure:"fire_load_increasing"` // fp regeneration per tick
	RepairRatio        float64 `mapstructure:"repair_ratio"`
	ProjectileSpeed    float64 `mapstructure:"projectile_speed"`
	RespawnAttempts    int     `mapstructure:"respawn_attempts"`
	NameMinChars       int     `mapstructure:"name_min_chars"`
	NameMaxChars       int     `mapstructure:"name_max_chars"`
}

// RankingConfig configures the ranking store
type RankingConfig struct {
	DBPath string `mapstructure:"db_path"`
	TopN   int    `mapstructure:"top_n"`
}

// AuthConfig configures resume tokens and the debug console
type AuthConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret"`
	TokenTTL            time.Duration `mapstructure:"token_ttl"`
	ConsolePasswordHash string        `mapstructure:"console_password_hash"`
}

// LogConfig configures zerolog output
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// DefaultGameConfig returns the stock arena rules
func DefaultGameConfig() GameConfig {
	return GameConfig{
		SeaWidth:           1200,
		SeaHeight:          800,
		ShipWidth:          10,
		TickRate:           60,
		MaxPlayers:         8,
		MinHP:              0,
		MaxHP:              100,
		MinFP:              0,
		MaxFP:              100,
		MinSpeed:           0,
		MaxSpeed:           4,
		Acceleration:       0.1,
		TurnStep:           2,
		FireLoadMinimum:    10,
		FireLoadSpeed:      1,
		FireLoadIncreasing: 0.2,
		RepairRatio:        0.5,
		ProjectileSpeed:    6,
		RespawnAttempts:    200,
		NameMinChars:       2,
		NameMaxChars:       16,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.client_dir", "")
	v.SetDefault("server.public_url", "http://localhost:3000/")
	v.SetDefault("server.max_conns_per_ip", 5)
	v.SetDefault("server.max_total_conns", 1000)
	v.SetDefault("server.messages_per_second", 60.0)
	v.SetDefault("server.message_burst", 120)

	g := DefaultGameConfig()
	v.SetDefault("game.sea_width", g.SeaWidth)
	v.SetDefault("game.sea_height", g.SeaHeight)
	v.SetDefault("game.ship_width", g.ShipWidth)
	v.SetDefault("game.tick_rate", g.TickRate)
	v.SetDefault("game.max_players", g.MaxPlayers)
	v.SetDefault("game.min_hp", g.MinHP)
	v.SetDefault("game.max_hp", g.MaxHP)
	v.SetDefault("game.min_fp", g.MinFP)
	v.SetDefault("game.max_fp", g.MaxFP)
	v.SetDefault("game.min_speed", g.MinSpeed)
	v.SetDefault("game.max_speed", g.MaxSpeed)
	v.SetDefault("game.acceleration", g.Acceleration)
	v.SetDefault("game.turn_step", g.TurnStep)
	v.SetDefault("game.fire_load_minimum", g.FireLoadMinimum)
	v.SetDefault("game.fire_load_speed", g.FireLoadSpeed)
	v.SetDefault("game.fire_load_increasing", g.FireLoadIncreasing)
	v.SetDefault("game.repair_ratio", g.RepairRatio)
	v.SetDefault("game.projectile_speed", g.ProjectileSpeed)
	v.SetDefault("game.respawn_attempts", g.RespawnAttempts)
	v.SetDefault("game.name_min_chars", g.NameMinChars)
	v.SetDefault("game.name_max_chars", g.NameMaxChars)

	v.SetDefault("ranking.db_path", "shipwars.db")
	v.SetDefault("ranking.top_n", 10)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.console_password_hash", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// LoadConfig reads defaults, an optional config file and SHIPWARS_* environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("shipwars")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Game.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects rule sets the simulation cannot run with
func (g GameConfig) Validate() error {
	switch {
	case g.SeaWidth <= 0 || g.SeaHeight <= 0:
		return errors.New("game: sea size must be positive")
	case g.ShipWidth <= 0:
		return errors.New("game: ship width must be positive")
	case g.TickRate <= 0:
		return errors.New("game: tick rate must be positive")
	case g.MaxPlayers <= 0:
		return errors.New("game: max players must be positive")
	case g.MinHP >= g.MaxHP:
		return errors.New("game: min hp must be below max hp")
	case g.MinFP >= g.MaxFP:
		return errors.New("game: min fp must be below max fp")
	case g.MinSpeed > g.MaxSpeed:
		return errors.New("game: min speed exceeds max speed")
	case g.FireLoadMinimum <= 0 || g.FireLoadMinimum > g.MaxFP-g.MinFP:
		return errors.New("game: fire load minimum out of fp range")
	case g.FireLoadSpeed <= 0:
		return errors.New("game: fire load speed must be positive")
	case g.FireLoadIncreasing < 0:
		return errors.New("game: fp regeneration must not be negative")
	case g.RepairRatio < 0:
		return errors.New("game: repair ratio must not be negative")
	case g.Acceleration <= 0:
		return errors.New("game: acceleration must be positive")
	case g.TurnStep < 0:
		return errors.New("game: turn step must not be negative")
	case g.ProjectileSpeed <= 0:
		return errors.New("game: projectile speed must be positive")
	case g.RespawnAttempts <= 0:
		return errors.New("game: respawn attempts must be positive")
	case g.NameMinChars <= 0 || g.NameMinChars > g.NameMaxChars:
		return errors.New("game: invalid name length bounds")
	}
	return nil
}

// ShipDiameter is the hull length of every ship
func (g GameConfig) ShipDiameter() float64 {
	return g.ShipWidth * 4
}

// TickDuration is the nominal interval between ticks
func (g GameConfig) TickDuration() time.Duration {
	return time.Second / time.Duration(g.TickRate)
}
