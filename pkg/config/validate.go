package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ardnew/cardauth/pkg"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", pkg.ErrInvalidParameter)
	}

	if _, err := pkg.ParseLogLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := pkg.ParseLogFormat(cfg.Log.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}

	seen := make(map[uint8]bool)
	for i, c := range cfg.Controllers {
		if seen[c.Type] {
			return fmt.Errorf("controllers[%d]: duplicate controller type %d", i, c.Type)
		}
		seen[c.Type] = true

		for n, table := range []string{c.Table1, c.Table2, c.Table3} {
			if _, err := decodeTable(table); err != nil {
				return fmt.Errorf("controllers[%d] (type %d): table%d: %w", i, c.Type, n+1, err)
			}
		}
	}

	return nil
}

// decodeTable decodes a hex key table, ignoring whitespace.
func decodeTable(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return nil, pkg.ErrInvalidKeyTable
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrInvalidKeyTable, err)
	}
	return b, nil
}
