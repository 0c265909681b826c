package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lanarena/relay/internal/room"
)

//go:embed presets.yaml
var defaultPresetsYAML []byte

// RoomPreset names a bundle of room.Settings an operator can hand a client
// at createRoom time (e.g. "competitive" vs "casual"), instead of every
// client hardcoding rounds/kill-limit/player-cap combinations.
type RoomPreset struct {
	Name     string        `yaml:"name"`
	Settings room.Settings `yaml:"settings"`
}

// presetsFile is the top-level shape of presets.yaml.
type presetsFile struct {
	Presets []RoomPreset `yaml:"presets"`
}

// LoadRoomPresets parses the built-in preset roster, or the file at path
// if path is non-empty.
func LoadRoomPresets(path string) ([]RoomPreset, error) {
	raw := defaultPresetsYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read room presets %s: %w", path, err)
		}
		raw = b
	}

	var pf presetsFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("parse room presets: %w", err)
	}
	for i := range pf.Presets {
		pf.Presets[i].Settings = pf.Presets[i].Settings.Clamp()
	}
	return pf.Presets, nil
}
