// Package providerapi provides a stable surface for virtual attribute
// provider authors by re-exporting selected domain concepts and defining the
// provider lifecycle contract.
package providerapi

import (
	"context"
	"log/slog"

	"dircore/pkg/domain"
)

// API version understood by the host.
const Version = "v1"

// Settings holds a provider's configuration values keyed by argument name.
// A Settings map is treated as immutable once handed to a provider; reloads
// build a fresh map and apply it atomically.
type Settings map[string]string

// Get returns the value for name, or "" when unset.
func (s Settings) Get(name string) string { return s[name] }

// Argument declares a configuration key a provider consumes. The host
// validates required presence and the name grammar before Initialize or
// Apply ever see the values.
type Argument struct {
	// Name is the configuration key, e.g. "source-attribute".
	Name string
	// Description is surfaced in configuration error messages and docs.
	Description string
	// Required arguments must be present and non-empty.
	Required bool
	// ValidateName restricts the value to the shared attribute/class name
	// grammar (leading letter, then letters, digits, or hyphens).
	ValidateName bool
}

// Descriptor carries the capability flags a provider exposes to its host.
type Descriptor struct {
	// MultiValued indicates the generated attribute may carry more than
	// one value.
	MultiValued bool
	// Reusable indicates generated values are safe to reuse for repeated
	// requests against the same entry within one logical operation.
	Reusable bool
}

// OperationContext is the per-request capability bundle the host hands to
// Generate: the directory-query surface, the hierarchy root, and a logger
// scoped to the operation.
type OperationContext interface {
	domain.Searcher
	Suffix() domain.DN
	Logger() *slog.Logger
}

// Provider computes a virtual attribute for directory entries. Lifecycle:
// the host calls Arguments to learn the configuration surface, Initialize
// once with the validated initial settings, Acceptable to vet a candidate
// reload without applying it, Apply to swap settings in atomically, and
// Close on teardown. Generate is called once per attribute evaluation and
// must be safe for concurrent use across entries and operations.
type Provider interface {
	Name() string
	Version() string
	Descriptor() Descriptor
	Arguments() []Argument
	Initialize(settings Settings) error
	Acceptable(settings Settings) error
	Apply(settings Settings) error
	// Generate returns the derived attribute for entry, or nil when no
	// attribute is produced. Request-time failures are absorbed and
	// logged; Generate never returns an error.
	Generate(ctx context.Context, octx OperationContext, entry domain.Entry, attributeName string) *domain.Attribute
	Close() error
}

// ValidateSettings checks a settings map against a provider's declared
// arguments. It is the single gate for configuration errors: required keys
// must be present and name-grammar values must match.
func ValidateSettings(args []Argument, settings Settings) error {
	for _, arg := range args {
		val := settings.Get(arg.Name)
		if val == "" {
			if arg.Required {
				return domain.InvalidNameError{Field: arg.Name}
			}
			continue
		}
		if arg.ValidateName {
			if err := domain.ValidateName(arg.Name, val); err != nil {
				return err
			}
		}
	}
	return nil
}
