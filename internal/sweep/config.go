package sweep

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/depthbudget/internal/budget"
	"github.com/fyrsmithlabs/depthbudget/internal/config"
)

// Config selects what a sweep computes.
type Config struct {
	Policies    []string
	Branching   uint64
	From        uint64
	To          uint64 // exclusive
	Parallelism int    // 0 runs every policy at once
	NodeLimit   uint64 // per run, 0 = unlimited
}

// NewDefaultConfig returns the classic comparison: both policies, branching
// factor 3, budgets 0 through 511.
func NewDefaultConfig() Config {
	policies := budget.Policies()
	names := make([]string, len(policies))
	for i, p := range policies {
		names[i] = p.String()
	}
	return Config{
		Policies:  names,
		Branching: config.DefaultBranching,
		From:      0,
		To:        config.DefaultSweepTo,
	}
}

// FromSettings builds a Config from the sweep section of the application
// configuration.
func FromSettings(s config.SweepConfig) Config {
	return Config{
		Policies:    append([]string(nil), s.Policies...),
		Branching:   s.Branching,
		From:        s.From,
		To:          s.To,
		Parallelism: s.Parallelism,
		NodeLimit:   s.NodeLimit,
	}
}

// Width returns the number of budgets in the range.
func (c Config) Width() uint64 {
	if c.To <= c.From {
		return 0
	}
	return c.To - c.From
}

// Validate checks the configuration.
func (c Config) Validate() error {
	_, err := c.policies()
	return err
}

// policies parses and validates the configuration, returning the
// canonical policies in order with duplicates removed.
func (c Config) policies() ([]budget.Policy, error) {
	var errs []error
	if len(c.Policies) == 0 {
		errs = append(errs, errors.New("at least one policy is required"))
	}

	seen := make(map[budget.Policy]bool, len(c.Policies))
	out := make([]budget.Policy, 0, len(c.Policies))
	for _, name := range c.Policies {
		p, err := budget.ParsePolicy(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	if c.From >= c.To {
		errs = append(errs, fmt.Errorf("budget range [%d, %d) is empty", c.From, c.To))
	}
	if c.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("parallelism must be >= 0, got %d", c.Parallelism))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid sweep config: %w", err)
	}
	return out, nil
}
