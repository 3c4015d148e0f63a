package budget

import (
	"context"
	"fmt"
)

// DefaultCheckInterval is the number of spawn attempts between context checks.
const DefaultCheckInterval = 4096

// Result summarises one run.
type Result struct {
	Policy        Policy `json:"policy" yaml:"policy" toml:"policy"`
	Branching     uint64 `json:"branching" yaml:"branching" toml:"branching"`
	InitialBudget uint64 `json:"initial_budget" yaml:"initial_budget" toml:"initial_budget"`

	// Nodes counts successfully spawned nodes. The root is not counted.
	Nodes uint64 `json:"nodes" yaml:"nodes" toml:"nodes"`
	// Overflows counts spawn attempts made with a zero budget.
	Overflows uint64 `json:"overflows" yaml:"overflows" toml:"overflows"`
	// Propagations counts ancestor increments caused by overflow signals,
	// excluding the increment on the overflowing node itself.
	Propagations uint64 `json:"propagations" yaml:"propagations" toml:"propagations"`
	// MaxDepth is the depth of the deepest spawned node (root = 0).
	MaxDepth uint64 `json:"max_depth" yaml:"max_depth" toml:"max_depth"`
}

// Option configures RunContext.
type Option func(*runOptions)

type runOptions struct {
	checkInterval uint64
	nodeLimit     uint64
}

// WithCheckInterval sets how many spawn attempts pass between context
// checks. Zero restores the default.
func WithCheckInterval(attempts uint64) Option {
	return func(o *runOptions) {
		o.checkInterval = attempts
	}
}

// WithNodeLimit stops the run with ErrNodeLimitExceeded before it spawns
// more than limit nodes. Zero means no limit.
func WithNodeLimit(limit uint64) Option {
	return func(o *runOptions) {
		o.nodeLimit = limit
	}
}

// Run expands the tree for policy p with branching factor n from an initial
// budget d and returns the number of spawned nodes.
//
// Run is pure and deterministic. It panics if p is not a known policy; use
// RunContext to get an error instead.
func Run(p Policy, n, d uint64) uint64 {
	if !p.Valid() {
		panic(fmt.Sprintf("budget: %v: %q", ErrUnknownPolicy, string(p)))
	}
	res, _ := walk(context.Background(), p, n, d, runOptions{checkInterval: DefaultCheckInterval})
	return res.Nodes
}

// RunContext is Run with cancellation, an optional node limit and run
// statistics. On error the returned Result holds the partial counts.
func RunContext(ctx context.Context, p Policy, n, d uint64, opts ...Option) (Result, error) {
	if !p.Valid() {
		return Result{Policy: p, Branching: n, InitialBudget: d},
			fmt.Errorf("%w: %q", ErrUnknownPolicy, string(p))
	}

	o := runOptions{checkInterval: DefaultCheckInterval}
	for _, opt := range opts {
		opt(&o)
	}
	if o.checkInterval == 0 {
		o.checkInterval = DefaultCheckInterval
	}

	return walk(ctx, p, n, d, o)
}

// walk drives the depth-first expansion. Each node makes its n spawn
// attempts in order; a spawned child is pushed and fully explored before
// the parent's next attempt, so a child reads its parent's overflow count
// as left by all earlier siblings' subtrees.
func walk(ctx context.Context, p Policy, n, d uint64, o runOptions) (Result, error) {
	res := Result{Policy: p, Branching: n, InitialBudget: d}

	l := newLedger(d)
	l.push(d, n)

	var sinceCheck uint64
	for l.len() > 0 {
		depth := l.len() - 1
		cur := l.at(depth)
		if cur.attempts == 0 {
			l.pop()
			continue
		}
		cur.attempts--

		sinceCheck++
		if sinceCheck >= o.checkInterval {
			sinceCheck = 0
			if err := ctx.Err(); err != nil {
				return res, fmt.Errorf("run interrupted after %d nodes: %w", res.Nodes, err)
			}
		}

		if cur.available == 0 {
			res.Overflows++
			res.Propagations += l.signalOverflow(depth)
			continue
		}

		if o.nodeLimit > 0 && res.Nodes >= o.nodeLimit {
			return res, fmt.Errorf("%w: limit %d", ErrNodeLimitExceeded, o.nodeLimit)
		}

		res.Nodes++
		child := p.ChildBudget(cur.available, cur.overflow)
		if childDepth := uint64(l.push(child, n)); childDepth > res.MaxDepth {
			res.MaxDepth = childDepth
		}
	}

	return res, nil
}
