package config

import (
	"fmt"
	"log/slog"

	"github.com/ardnew/cardauth/auth"
	"github.com/ardnew/cardauth/pkg"
)

// Normalize applies defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Lock == nil {
		lock := true
		cfg.Lock = &lock
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = slog.LevelWarn.String()
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = pkg.LogFormatText.String()
	}
}

// Registry builds a key table registry holding the built-in controllers
// plus the configured ones. Configured tables replace built-in tables of
// the same type.
func (cfg *Config) Registry() (*auth.Registry, error) {
	reg := auth.DefaultRegistry()
	for _, c := range cfg.Controllers {
		var kt auth.KeyTable
		var err error
		if kt.T1, err = decodeTable(c.Table1); err != nil {
			return nil, fmt.Errorf("controller %d table1: %w", c.Type, err)
		}
		if kt.T2, err = decodeTable(c.Table2); err != nil {
			return nil, fmt.Errorf("controller %d table2: %w", c.Type, err)
		}
		if kt.T3, err = decodeTable(c.Table3); err != nil {
			return nil, fmt.Errorf("controller %d table3: %w", c.Type, err)
		}
		if err := reg.Register(auth.ControllerType(c.Type), kt); err != nil {
			return nil, err
		}
		pkg.LogDebug(pkg.ComponentConfig, "registered controller key tables", "type", c.Type)
	}
	return reg, nil
}
