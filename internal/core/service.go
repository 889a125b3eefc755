package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"dircore/pkg/domain"
	"dircore/pkg/providerapi"
)

// Service exposes transactional entry operations and hosts the installed
// virtual attribute providers.
type Service struct {
	store   domain.PersistentStore
	logger  *slog.Logger
	metrics MetricsRecorder

	mu        sync.RWMutex
	providers map[string]installedProvider
}

type installedProvider struct {
	attribute string
	provider  providerapi.Provider
}

// ProviderMetadata describes an installed virtual attribute provider.
type ProviderMetadata struct {
	Attribute  string
	Name       string
	Version    string
	Descriptor providerapi.Descriptor
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger sets the logger used for service and provider diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the recorder observing generation outcomes.
func WithMetrics(rec MetricsRecorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:     store,
		logger:    slog.Default(),
		metrics:   NopMetricsRecorder{},
		providers: make(map[string]installedProvider),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store rooted
// at suffix with the given rules engine.
func NewInMemoryService(suffix DN, engine *RulesEngine, opts ...Option) *Service {
	return NewService(newMemoryStore(suffix, engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore { return s.store }

// Suffix returns the hierarchy root the service serves.
func (s *Service) Suffix() DN { return s.store.Suffix() }

// AddEntry persists a new entry.
func (s *Service) AddEntry(ctx context.Context, entry Entry) (Entry, Result, error) {
	var created Entry
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.AddEntry(entry)
		return err
	})
	return created, res, err
}

// ModifyEntry mutates an entry's attributes using the provided mutator.
func (s *Service) ModifyEntry(ctx context.Context, dn DN, mutator func(*Entry) error) (Entry, Result, error) {
	var updated Entry
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.ModifyEntry(dn, mutator)
		return err
	})
	return updated, res, err
}

// DeleteEntry removes a leaf entry.
func (s *Service) DeleteEntry(ctx context.Context, dn DN) (Result, error) {
	return s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteEntry(dn)
	})
}

// GetEntry returns the stored entry at dn without virtual attributes.
func (s *Service) GetEntry(dn DN) (Entry, bool) { return s.store.GetEntry(dn) }

// Search executes a search against the underlying store.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]Entry, error) {
	return s.store.Search(ctx, req)
}

// InstallProvider registers a virtual attribute provider for the given
// attribute name and initializes it with the supplied settings. The
// attribute name must satisfy the shared name grammar, and only one provider
// may serve a given attribute.
func (s *Service) InstallProvider(attribute string, provider providerapi.Provider, settings providerapi.Settings) (ProviderMetadata, error) {
	if provider == nil {
		return ProviderMetadata{}, fmt.Errorf("provider cannot be nil")
	}
	if err := domain.ValidateName("virtual-attribute", attribute); err != nil {
		return ProviderMetadata{}, err
	}
	key := strings.ToLower(attribute)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[key]; ok {
		return ProviderMetadata{}, fmt.Errorf("attribute %s already served by a provider", attribute)
	}
	if err := provider.Initialize(settings); err != nil {
		return ProviderMetadata{}, err
	}
	s.providers[key] = installedProvider{attribute: attribute, provider: provider}
	return s.metadataLocked(key), nil
}

// ReloadProvider validates candidate settings and applies them atomically to
// the provider serving attribute. On validation failure nothing changes and
// the previous configuration stays active.
func (s *Service) ReloadProvider(attribute string, settings providerapi.Settings) error {
	s.mu.RLock()
	installed, ok := s.providers[strings.ToLower(attribute)]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no provider serves attribute %s", attribute)
	}
	if err := installed.provider.Acceptable(settings); err != nil {
		return fmt.Errorf("reload %s: %w", attribute, err)
	}
	return installed.provider.Apply(settings)
}

// Reconfigure applies new settings to several providers at once, keyed by
// attribute name. Every candidate is validated before any is applied, so a
// rejected settings map leaves all providers on their previous configuration.
func (s *Service) Reconfigure(settings map[string]providerapi.Settings) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	targets := make([]installedProvider, 0, len(settings))
	candidates := make([]providerapi.Settings, 0, len(settings))
	for attribute, candidate := range settings {
		installed, ok := s.providers[strings.ToLower(attribute)]
		if !ok {
			return fmt.Errorf("no provider serves attribute %s", attribute)
		}
		if err := installed.provider.Acceptable(candidate); err != nil {
			return fmt.Errorf("reload %s: %w", attribute, err)
		}
		targets = append(targets, installed)
		candidates = append(candidates, candidate)
	}
	for i, installed := range targets {
		if err := installed.provider.Apply(candidates[i]); err != nil {
			return fmt.Errorf("reload %s: %w", installed.attribute, err)
		}
	}
	return nil
}

// InstalledProviders returns metadata describing installed providers, sorted
// by attribute name.
func (s *Service) InstalledProviders() []ProviderMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ProviderMetadata, 0, len(s.providers))
	for key := range s.providers {
		out = append(out, s.metadataLocked(key))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Attribute < out[j].Attribute })
	return out
}

func (s *Service) metadataLocked(key string) ProviderMetadata {
	installed := s.providers[key]
	return ProviderMetadata{
		Attribute:  installed.attribute,
		Name:       installed.provider.Name(),
		Version:    installed.provider.Version(),
		Descriptor: installed.provider.Descriptor(),
	}
}

// GenerateVirtual evaluates the provider serving attribute against entry.
// It returns nil when no provider is installed for the attribute or the
// provider produced no attribute; it never returns an error.
func (s *Service) GenerateVirtual(ctx context.Context, entry Entry, attribute string) *Attribute {
	s.mu.RLock()
	installed, ok := s.providers[strings.ToLower(attribute)]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	octx := operationContext{store: s.store, logger: s.logger.With("provider", installed.provider.Name())}
	start := time.Now()
	attr := installed.provider.Generate(ctx, octx, entry, installed.attribute)
	outcome := OutcomeAbsent
	if attr != nil {
		outcome = OutcomeEmitted
	}
	s.metrics.Observe(ctx, installed.provider.Name(), outcome, time.Since(start))
	return attr
}

// VirtualAttributes evaluates every installed provider against entry and
// returns the produced attributes in attribute-name order.
func (s *Service) VirtualAttributes(ctx context.Context, entry Entry) []Attribute {
	var out []Attribute
	for _, meta := range s.InstalledProviders() {
		if attr := s.GenerateVirtual(ctx, entry, meta.Attribute); attr != nil {
			out = append(out, *attr)
		}
	}
	return out
}

// WithVirtual returns a copy of entry with virtual attributes merged in.
// A stored attribute with the same name wins over the generated one.
func (s *Service) WithVirtual(ctx context.Context, entry Entry) Entry {
	merged := entry.Clone()
	for _, attr := range s.VirtualAttributes(ctx, entry) {
		if merged.HasAttribute(attr.Name) {
			continue
		}
		merged.Attributes = append(merged.Attributes, attr)
	}
	return merged
}

// Close tears down installed providers and releases the store.
func (s *Service) Close() error {
	s.mu.Lock()
	providers := s.providers
	s.providers = make(map[string]installedProvider)
	s.mu.Unlock()

	var firstErr error
	for _, installed := range providers {
		if err := installed.provider.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// operationContext is the per-request capability bundle handed to providers.
type operationContext struct {
	store  domain.PersistentStore
	logger *slog.Logger
}

func (o operationContext) Search(ctx context.Context, req SearchRequest) ([]Entry, error) {
	return o.store.Search(ctx, req)
}

func (o operationContext) Suffix() DN { return o.store.Suffix() }

func (o operationContext) Logger() *slog.Logger { return o.logger }
