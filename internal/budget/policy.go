package budget

import (
	"fmt"
	"math"
	"strings"
)

// Policy selects how a child's depth budget is derived from its parent.
type Policy string

const (
	// PolicyLegacy divides the budget by 4 once any overflow was observed.
	PolicyLegacy Policy = "legacy"
	// PolicySeverity divides the budget by 4^overflow, compounding with
	// every overflow the parent has absorbed.
	PolicySeverity Policy = "severity"
)

// policyAliases maps accepted spellings to canonical policies.
var policyAliases = map[string]Policy{
	"legacy":          PolicyLegacy,
	"current":         PolicyLegacy,
	"severity":        PolicySeverity,
	"severity-scaled": PolicySeverity,
	"v2":              PolicySeverity,
}

// Policies returns the canonical policies in a stable order.
func Policies() []Policy {
	return []Policy{PolicyLegacy, PolicySeverity}
}

// ParsePolicy resolves a policy name. Matching is case-insensitive and
// accepts the aliases "current" (legacy) and "v2" / "severity-scaled".
func ParsePolicy(name string) (Policy, error) {
	p, ok := policyAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	return p, nil
}

// Valid reports whether p is a canonical policy.
func (p Policy) Valid() bool {
	return p == PolicyLegacy || p == PolicySeverity
}

// String implements fmt.Stringer.
func (p Policy) String() string {
	return string(p)
}

// ChildBudget returns the budget of a child spawned by a node holding
// available budget with the given overflow count. The caller only spawns
// from nodes with a non-zero budget; a zero budget yields zero.
func (p Policy) ChildBudget(available, overflow uint64) uint64 {
	if available == 0 {
		return 0
	}
	if overflow == 0 {
		return available - 1
	}
	switch p {
	case PolicySeverity:
		return available / saturatingPow4(overflow)
	default:
		return available / 4
	}
}

// saturatingPow4 returns 4^k, clamped to math.MaxUint64.
func saturatingPow4(k uint64) uint64 {
	// 4^32 = 2^64 is the first power that does not fit.
	if k >= 32 {
		return math.MaxUint64
	}
	return 1 << (2 * k)
}

// saturatingInc returns v+1, clamped to math.MaxUint64.
func saturatingInc(v uint64) uint64 {
	if v == math.MaxUint64 {
		return v
	}
	return v + 1
}

// Description returns a one-line summary of how p decays budgets.
func (p Policy) Description() string {
	switch p {
	case PolicyLegacy:
		return "children of an overflowed node get budget/4"
	case PolicySeverity:
		return "children of an overflowed node get budget/4^overflows"
	default:
		return "unknown policy"
	}
}
