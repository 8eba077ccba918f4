package rules

import (
	"errors"
	"fmt"
)

// ErrDuplicateRule is returned by Registry.Register when a rule with the
// same name is already registered.
var ErrDuplicateRule = errors.New("duplicate rule name")

// Registry is a simple, ordered, in-memory rule registry.
// Registration order is the evaluation and report order.
//
// The registry is assembled once at engine construction and is read-only
// afterwards; a populated registry is safe to share across concurrent
// evaluations.
type Registry struct {
	rules []Rule
	index map[string]struct{}
}

// NewRegistry returns an empty registry ready for rule registration.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]struct{}),
	}
}

// NewRegistryWithRules builds a registry from rs in order.
// It fails on the first duplicate name, like repeated Register calls would.
func NewRegistryWithRules(rs ...Rule) (*Registry, error) {
	reg := NewRegistry()
	for _, r := range rs {
		if err := reg.Register(r); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register adds rule to the registry. A duplicate name is rejected with an
// error wrapping ErrDuplicateRule, and the registry is left exactly as it
// was before the call.
func (r *Registry) Register(rule Rule) error {
	if _, exists := r.index[rule.Name()]; exists {
		return fmt.Errorf("register rule: %w: %q", ErrDuplicateRule, rule.Name())
	}
	r.rules = append(r.rules, rule)
	r.index[rule.Name()] = struct{}{}
	return nil
}

// All returns the registered rules in registration order.
// The returned slice is the registry's own; callers must not modify it.
func (r *Registry) All() []Rule {
	return r.rules
}

// Names returns the registered rule names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		names = append(names, rule.Name())
	}
	return names
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}
