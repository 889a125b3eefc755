// Package pibling implements the pibling virtual attribute provider: the
// generated attribute on an entry reflects one named attribute collected
// from the entry's generation — the children of its parent — filtered by a
// configured object class.
package pibling

import (
	"context"
	"fmt"
	"sync/atomic"

	"dircore/pkg/domain"
	"dircore/pkg/providerapi"
)

// Configuration argument names.
const (
	// ArgSourceAttribute names the attribute whose values are collected
	// from matching entries.
	ArgSourceAttribute = "source-attribute"
	// ArgSourceObjectClass names the object class matching entries must
	// declare.
	ArgSourceObjectClass = "source-objectclass"
)

// settings is one immutable configuration snapshot. Reloads swap the whole
// struct through an atomic pointer so an in-flight generation never observes
// a torn mix of attribute and class.
type settings struct {
	attribute string
	class     string
}

// Provider computes the pibling virtual attribute.
type Provider struct {
	cfg atomic.Pointer[settings]
}

// Compile-time contract assertion.
var _ providerapi.Provider = (*Provider)(nil)

// New constructs an unconfigured provider instance.
func New() *Provider {
	return &Provider{}
}

// Name returns the provider identifier.
func (*Provider) Name() string { return "pibling" }

// Version returns the provider semantic version.
func (*Provider) Version() string { return "1.0.0" }

// Descriptor reports capability flags: the attribute may carry several
// values, and generated values are a deterministic function of store state
// so hosts may reuse them within one logical operation.
func (*Provider) Descriptor() providerapi.Descriptor {
	return providerapi.Descriptor{MultiValued: true, Reusable: true}
}

// Arguments declares the configuration surface.
func (*Provider) Arguments() []providerapi.Argument {
	return []providerapi.Argument{
		{
			Name:         ArgSourceAttribute,
			Description:  "attribute collected from matching sibling-of-parent entries",
			Required:     true,
			ValidateName: true,
		},
		{
			Name:         ArgSourceObjectClass,
			Description:  "object class matching entries must declare",
			Required:     true,
			ValidateName: true,
		},
	}
}

// Initialize applies the validated initial settings.
func (p *Provider) Initialize(s providerapi.Settings) error {
	return p.Apply(s)
}

// Acceptable vets a candidate configuration without applying it.
func (p *Provider) Acceptable(s providerapi.Settings) error {
	_, err := p.parse(s)
	return err
}

// Apply validates and atomically swaps in a new configuration snapshot.
func (p *Provider) Apply(s providerapi.Settings) error {
	cfg, err := p.parse(s)
	if err != nil {
		return err
	}
	p.cfg.Store(&cfg)
	return nil
}

// Close releases the active configuration.
func (p *Provider) Close() error {
	p.cfg.Store(nil)
	return nil
}

func (p *Provider) parse(s providerapi.Settings) (settings, error) {
	if err := providerapi.ValidateSettings(p.Arguments(), s); err != nil {
		return settings{}, err
	}
	return settings{
		attribute: s.Get(ArgSourceAttribute),
		class:     s.Get(ArgSourceObjectClass),
	}, nil
}

// Generate derives the virtual attribute for entry. Every request-time
// failure degrades to "no attribute": the entry sitting at the hierarchy
// root, a failed search, zero matches, and matches without source values all
// yield nil. Query failures are logged at warning level exactly once; the
// other absent outcomes leave a debug trace.
func (p *Provider) Generate(ctx context.Context, octx providerapi.OperationContext, entry domain.Entry, attributeName string) *domain.Attribute {
	cfg := p.cfg.Load()
	if cfg == nil {
		octx.Logger().Warn("pibling provider invoked without configuration", "dn", entry.DN.String())
		return nil
	}

	req, err := plan(entry.DN, octx.Suffix(), *cfg)
	if err != nil {
		octx.Logger().Debug("no virtual attribute: entry has no parent", "dn", entry.DN.String())
		return nil
	}

	matches, err := octx.Search(ctx, req)
	if err != nil {
		octx.Logger().Warn("virtual attribute search failed",
			"dn", entry.DN.String(),
			"base", req.Base.String(),
			"filter", req.Filter.String(),
			"kind", string(domain.QueryKind(err)),
			"err", err,
		)
		return nil
	}
	if len(matches) == 0 {
		octx.Logger().Debug("no virtual attribute: no matching entries",
			"dn", entry.DN.String(), "filter", req.Filter.String())
		return nil
	}

	values := aggregate(matches, cfg.attribute)
	if values.Len() == 0 {
		octx.Logger().Debug("no virtual attribute: matches carry no source values",
			"dn", entry.DN.String(), "attribute", cfg.attribute)
		return nil
	}
	return domain.NewAttribute(attributeName, values)
}

// plan derives the search descriptor for an entry: base is the parent of the
// entry's DN bounded by the hierarchy root, scope is one level (the entry's
// siblings and itself), and the filter matches the configured class. Pure
// function of its inputs.
func plan(dn, suffix domain.DN, cfg settings) (domain.SearchRequest, error) {
	parent, ok := dn.ParentWithin(suffix)
	if !ok {
		return domain.SearchRequest{}, fmt.Errorf("plan %s: %w", dn, domain.ErrNoParent)
	}
	return domain.SearchRequest{
		Base:       parent,
		Scope:      domain.ScopeOneLevel,
		Filter:     domain.ClassFilter(cfg.class),
		Attributes: []string{cfg.attribute},
	}, nil
}

// aggregate folds the matched entries' source values into one deduplicated
// set. Iteration follows the order the store returned; within the merge, the
// first occurrence of a value fixes its position. Matches lacking the
// attribute contribute nothing.
func aggregate(matches []domain.Entry, attribute string) domain.ValueSet {
	var values domain.ValueSet
	for _, match := range matches {
		values.AddAll(match.GetValues(attribute))
	}
	return values
}
