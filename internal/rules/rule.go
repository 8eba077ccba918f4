package rules

import "github.com/shayshab/workload-compliance/internal/models"

// Rule is a single deterministic compliance predicate over a workload
// descriptor.
//
// Rules must be stateless, independent, and safe to call concurrently:
// no rule may depend on another rule's result, mutate the descriptor, or
// touch shared mutable state. They must never make network calls or read
// external state; everything a rule needs is in the descriptor.
//
// Evaluation never errors. A descriptor missing the field a rule needs is a
// failing RuleResult whose Reason names the field, not an engine error.
type Rule interface {
	// Name returns the unique, stable identifier for this rule
	// (e.g. "container_security").
	Name() string

	// Description returns a short human-readable summary of what the rule
	// requires.
	Description() string

	// Evaluate inspects the descriptor and returns exactly one result.
	// d is never nil when invoked through the engine.
	Evaluate(d *models.WorkloadDescriptor) models.RuleResult
}
