package config

import (
	"errors"
	"fmt"

	"dircore/pkg/domain"
)

// Validate checks a parsed configuration for structural problems. Provider
// settings values are not checked here; each provider validates its own
// settings when it is installed or reloaded.
//
// Ensures:
//   - Suffix is set and parses as a DN
//   - Storage.Driver and Archive.Driver name known backends
//   - every provider entry has a name and a syntactically valid attribute
//   - no two providers claim the same virtual attribute
func Validate(cfg Config) error {
	if cfg.Suffix == "" {
		return errors.New("suffix must be set")
	}
	if _, err := domain.ParseDN(cfg.Suffix); err != nil {
		return fmt.Errorf("invalid suffix %q: %w", cfg.Suffix, err)
	}

	switch cfg.Storage.Driver {
	case "", "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage.driver %q", cfg.Storage.Driver)
	}
	switch cfg.Archive.Driver {
	case "", "fs", "s3", "memory":
	default:
		return fmt.Errorf("unknown archive.driver %q", cfg.Archive.Driver)
	}

	seen := map[string]int{}
	for i, p := range cfg.Providers {
		if p.Name == "" {
			return fmt.Errorf("providers[%d]: name must be set", i)
		}
		if err := domain.ValidateName("attribute", p.Attribute); err != nil {
			return fmt.Errorf("providers[%d]: %w", i, err)
		}
		if prev, ok := seen[p.Attribute]; ok {
			return fmt.Errorf("providers[%d]: attribute %q already claimed by providers[%d]", i, p.Attribute, prev)
		}
		seen[p.Attribute] = i
	}
	return nil
}
