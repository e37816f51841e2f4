// Package core has the risk engine: rules, policies, transforms and the policy registry.
package core

import (
	"fmt"
	"slices"

	"github.com/passagehealth/passage/schema"
)

// Registry holds validated policies by name, in registration order.
type Registry struct {
	policies map[string]*Policy
	order    []string
}

// NewRegistry validates and registers the presets followed by any custom policies.
// A custom policy may not reuse a preset name or another custom policy's name.
func NewRegistry(custom ...Policy) (*Registry, error) {
	r := &Registry{policies: make(map[string]*Policy)}
	for _, p := range Presets() {
		if err := r.register(p); err != nil {
			return nil, err
		}
	}
	for _, p := range custom {
		if err := r.register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, exists := r.policies[p.Name]; exists {
		return policyErrorf(p.Name, "name is already registered")
	}
	r.policies[p.Name] = &p
	r.order = append(r.order, p.Name)
	return nil
}

// Get returns the named policy or ErrUnknownPolicy.
func (r *Registry) Get(name string) (*Policy, error) {
	p, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownPolicy, name, r.order)
	}
	return p, nil
}

// Names lists registered policy names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// List returns the registered policies in registration order.
func (r *Registry) List() []*Policy {
	out := make([]*Policy, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.policies[name])
	}
	return out
}

// Engine assesses observations against the policies of a registry.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	registry      *Registry
	defaultPolicy string
}

// NewEngine returns an engine whose default policy must be registered.
func NewEngine(registry *Registry, defaultPolicy string) (*Engine, error) {
	if defaultPolicy == "" {
		defaultPolicy = DefaultPolicy
	}
	if _, err := registry.Get(defaultPolicy); err != nil {
		return nil, err
	}
	return &Engine{registry: registry, defaultPolicy: defaultPolicy}, nil
}

// DefaultPolicy returns the name used when AssessWith receives an empty name.
func (e *Engine) DefaultPolicy() string {
	return e.defaultPolicy
}

// Policy resolves a policy name, falling back to the default for an empty name.
func (e *Engine) Policy(name string) (*Policy, error) {
	if name == "" {
		name = e.defaultPolicy
	}
	return e.registry.Get(name)
}

// Policies returns every registered policy.
func (e *Engine) Policies() []*Policy {
	return e.registry.List()
}

// AssessWith scores obs under the named policy.
func (e *Engine) AssessWith(name string, obs schema.PatientObservation) (schema.RiskAssessment, error) {
	p, err := e.Policy(name)
	if err != nil {
		return schema.RiskAssessment{}, err
	}
	return Assess(obs, p)
}
