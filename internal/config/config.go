// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all relay and simulation settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimulationConfig holds the host simulation's tick cadence and arena
// bounds.
type SimulationConfig struct {
	TickRate       int     // target ticks per second
	SnapshotHz     int     // snapshot emission rate, <= TickRate
	MaxDtMs        int     // per-tick dt clamp, milliseconds
	ArenaHalfSizeM float64 // half-extent of the default square arena, metres
}

// DefaultSimulation returns the default simulation configuration.
func DefaultSimulation() SimulationConfig {
	return SimulationConfig{
		TickRate:       60,
		SnapshotHz:     20,
		MaxDtMs:        50,
		ArenaHalfSizeM: 40,
	}
}

// SimulationFromEnv returns simulation configuration with environment
// variable overrides.
func SimulationFromEnv() SimulationConfig {
	cfg := DefaultSimulation()

	if tr := getEnvInt("SIM_TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if sh := getEnvInt("SIM_SNAPSHOT_HZ", 0); sh > 0 {
		cfg.SnapshotHz = sh
	}
	if dt := getEnvInt("SIM_MAX_DT_MS", 0); dt > 0 {
		cfg.MaxDtMs = dt
	}
	if half := getEnvFloat("SIM_ARENA_HALF_SIZE_M", -1); half > 0 {
		cfg.ArenaHalfSizeM = half
	}

	return cfg
}

// =============================================================================
// ROOM RESOURCE LIMITS
// =============================================================================

// RoomLimits holds operator defaults for room/match resource bounds.
// cmd/relayserver loads and logs them; room.Settings.Clamp still bounds
// each room's own settings (2 to 8 players) whatever is configured here.
type RoomLimits struct {
	DefaultMaxPlayers  int
	DefaultRoundsToWin int
	DefaultKillLimit   int
	MaxActiveRooms     int // 0 means unbounded
}

// DefaultRoomLimits returns the default room resource limits.
func DefaultRoomLimits() RoomLimits {
	return RoomLimits{
		DefaultMaxPlayers:  8,
		DefaultRoundsToWin: 3,
		DefaultKillLimit:   20,
		MaxActiveRooms:     0,
	}
}

// RoomLimitsFromEnv returns room limits with environment variable
// overrides.
func RoomLimitsFromEnv() RoomLimits {
	cfg := DefaultRoomLimits()

	if mp := getEnvInt("ROOM_DEFAULT_MAX_PLAYERS", 0); mp > 0 {
		cfg.DefaultMaxPlayers = mp
	}
	if rw := getEnvInt("ROOM_DEFAULT_ROUNDS_TO_WIN", 0); rw > 0 {
		cfg.DefaultRoundsToWin = rw
	}
	if kl := getEnvInt("ROOM_DEFAULT_KILL_LIMIT", 0); kl > 0 {
		cfg.DefaultKillLimit = kl
	}
	if mar := getEnvInt("ROOM_MAX_ACTIVE", 0); mar > 0 {
		cfg.MaxActiveRooms = mar
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP/WebSocket server settings.
type ServerConfig struct {
	Port           int
	AssetsDir      string
	EventLogPath   string // "" disables disk persistence for the relay event log
	MaxWSConnTotal int
	MaxWSConnPerIP int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:           8080,
		AssetsDir:      "./assets-data",
		EventLogPath:   "./relay-events.log",
		MaxWSConnTotal: 500,
		MaxWSConnPerIP: 10,
	}
}

// ServerFromEnv returns server configuration with environment variable
// overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if dir := os.Getenv("ASSETS_DIR"); dir != "" {
		cfg.AssetsDir = dir
	}
	if path := os.Getenv("EVENT_LOG_PATH"); path != "" {
		cfg.EventLogPath = path
	}
	if t := getEnvInt("MAX_WS_CONN_TOTAL", 0); t > 0 {
		cfg.MaxWSConnTotal = t
	}
	if pi := getEnvInt("MAX_WS_CONN_PER_IP", 0); pi > 0 {
		cfg.MaxWSConnPerIP = pi
	}

	return cfg
}

// =============================================================================
// OBSERVABILITY CONFIGURATION
// =============================================================================

// ObservabilityConfig controls the debug/metrics server.
type ObservabilityConfig struct {
	Enabled    bool
	ListenAddr string
}

// DefaultObservability returns safe defaults: enabled, localhost-only.
func DefaultObservability() ObservabilityConfig {
	return ObservabilityConfig{Enabled: true, ListenAddr: "127.0.0.1:6060"}
}

// ObservabilityFromEnv returns observability configuration with
// environment variable overrides.
func ObservabilityFromEnv() ObservabilityConfig {
	cfg := DefaultObservability()

	if os.Getenv("DEBUG_SERVER_DISABLED") == "true" {
		cfg.Enabled = false
	}
	if addr := os.Getenv("DEBUG_SERVER_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Simulation    SimulationConfig
	Rooms         RoomLimits
	Server        ServerConfig
	Observability ObservabilityConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Simulation:    SimulationFromEnv(),
		Rooms:         RoomLimitsFromEnv(),
		Server:        ServerFromEnv(),
		Observability: ObservabilityFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
