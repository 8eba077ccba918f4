// Package engine evaluates workload descriptors against a registered rule
// set and assembles compliance reports.
//
// Evaluation is pure computation over an in-memory descriptor: no I/O, no
// network, no external processes. An Engine is immutable after construction
// and safe for any number of concurrent Evaluate calls.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/shayshab/workload-compliance/internal/models"
	"github.com/shayshab/workload-compliance/internal/rules"
)

// DefaultThreshold is the minimum passing ratio used when no threshold is
// configured: 8 of 10 baseline rules must pass.
const DefaultThreshold = 0.8

// ErrInvalidThreshold is returned by NewEngine for a threshold outside [0,1].
var ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")

// Engine runs every registered rule against a descriptor and scores the
// outcome against its threshold.
type Engine struct {
	registry  *rules.Registry
	threshold float64
}

// NewEngine constructs an Engine over the given registry with an explicit
// passing threshold in [0,1].
func NewEngine(registry *rules.Registry, threshold float64) (*Engine, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	return &Engine{registry: registry, threshold: threshold}, nil
}

// NewDefaultEngine constructs an Engine with DefaultThreshold.
func NewDefaultEngine(registry *rules.Registry) *Engine {
	return &Engine{registry: registry, threshold: DefaultThreshold}
}

// Threshold returns the engine's configured passing threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Evaluate runs each registered rule exactly once, in registration order,
// against d and returns the assembled report. It never short-circuits on a
// failing rule: callers need the full picture.
//
// Aside from the timestamp and report ID, Evaluate is a pure function of
// (rule set, descriptor, threshold); d is never mutated. A nil descriptor
// is evaluated as an empty one, so every rule fails with its
// missing-section reason.
func (e *Engine) Evaluate(d *models.WorkloadDescriptor) *models.ComplianceReport {
	if d == nil {
		d = &models.WorkloadDescriptor{}
	}

	all := e.registry.All()
	results := make([]models.RuleResult, 0, len(all))
	score := 0
	for _, rule := range all {
		res := rule.Evaluate(d)
		// The registered name is authoritative; this keeps the
		// one-result-per-rule invariant aligned with the registry even when
		// a rule mislabels its own result.
		res.RuleName = rule.Name()
		if res.Passed {
			score++
		}
		results = append(results, res)
	}

	total := len(results)
	return &models.ComplianceReport{
		ReportID:    fmt.Sprintf("compliance-%d", time.Now().UnixNano()),
		GeneratedAt: time.Now().UTC(),
		Results:     results,
		Score:       score,
		Total:       total,
		Threshold:   e.threshold,
		Passed:      passed(score, total, e.threshold),
	}
}

// passed applies the threshold policy: an empty rule set trivially passes;
// otherwise the passing ratio must meet the threshold.
func passed(score, total int, threshold float64) bool {
	if total == 0 {
		return true
	}
	return float64(score)/float64(total) >= threshold
}
