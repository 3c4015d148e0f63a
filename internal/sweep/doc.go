// Package sweep compares budget policies across a range of initial budgets.
//
// A sweep runs the tree counter once per budget in [From, To) for each
// configured policy and records, per budget, the node count together with
// its change from the previous budget. Policies are independent series and
// run concurrently; budgets inside a series run in ascending order.
//
// Reports render as the classic line format, a terminal table, JSON, YAML
// or TOML:
//
//	runner := sweep.NewRunner(sweep.WithLogger(logger), sweep.WithTelemetry(tel))
//	report, err := runner.Sweep(ctx, sweep.NewDefaultConfig())
//	if err != nil {
//	    return err
//	}
//	return sweep.Render(os.Stdout, report, sweep.FormatText)
package sweep
