package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the file the process reads at startup (spec §6.3).
const DefaultPath = "./game-config.yaml"

// Load parses path into an immutable Config. Unknown top-level fields are
// rejected per spec §6.3; viper then performs the actual decode so the
// config document benefits from its richer type coercion for the rest of
// the tree (spec §4.K).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := rejectUnknownFields(data); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	vp := viper.New()
	vp.SetConfigType("yaml")
	if err := vp.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg := &Config{}
	if err := vp.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

// rejectUnknownFields decodes data into a Config with strict field checking,
// discarding the result: viper's Unmarshal silently drops unknown keys,
// which spec §6.3 forbids at the top level.
func rejectUnknownFields(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var probe Config
	if err := dec.Decode(&probe); err != nil {
		return fmt.Errorf("unknown or malformed field: %w", err)
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.MapSize <= 0 {
		return fmt.Errorf("mapSize must be positive, got %v", cfg.MapSize)
	}
	if len(cfg.Maps) == 0 {
		return fmt.Errorf("at least one map must be defined")
	}
	for _, p := range cfg.Prefabs {
		if p.Kind != PrefabKindProp && p.Kind != PrefabKindFixture {
			return fmt.Errorf("prefab %q: invalid kind %q", p.ID, p.Kind)
		}
	}
	return nil
}
