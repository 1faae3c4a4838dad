package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the authenticator configuration file.
type Config struct {
	Lock        *bool              `yaml:"lock"`
	Log         LogConfig          `yaml:"log"`
	Simulate    *SimulateConfig    `yaml:"simulate"`
	Controllers []ControllerConfig `yaml:"controllers"`
}

// ---- LOGGING ----

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json, dev
}

// ---- SIMULATED CARD ----

type SimulateConfig struct {
	Controller  uint8 `yaml:"controller"`
	Counterfeit bool  `yaml:"counterfeit"`
}

// ---- KEY TABLES ----

// ControllerConfig adds or overrides the key tables of one controller type.
// Tables are hex strings; whitespace is ignored.
type ControllerConfig struct {
	Type   uint8  `yaml:"type"`
	Table1 string `yaml:"table1"`
	Table2 string `yaml:"table2"`
	Table3 string `yaml:"table3"`
}

// Load reads and decodes the configuration file at path. Unknown fields are
// rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes a configuration document from r.
func Decode(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
