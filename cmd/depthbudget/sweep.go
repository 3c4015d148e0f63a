package main

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/depthbudget/internal/sweep"
	"github.com/spf13/cobra"
)

func newSweepCmd(a *app) *cobra.Command {
	var (
		policies    []string
		branching   uint64
		from, to    uint64
		parallelism int
		nodeLimit   uint64
		format      string
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Compare policies over a range of budgets",
		Long: `Run every policy once per budget in [from, to) and print, for each budget,
the node count with its difference and ratio to the previous budget.

Examples:
  # Classic comparison of both policies over budgets 0..511
  depthbudget sweep

  # Severity only, as a table
  depthbudget sweep --policy severity --to 64 --format table

  # Machine-readable
  depthbudget sweep --to 128 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := sweep.FromSettings(a.cfg.Sweep)
			flags := cmd.Flags()
			if flags.Changed("policy") {
				cfg.Policies = policies
			}
			if flags.Changed("branching") {
				cfg.Branching = branching
			}
			if flags.Changed("from") {
				cfg.From = from
			}
			if flags.Changed("to") {
				cfg.To = to
			}
			if flags.Changed("parallelism") {
				cfg.Parallelism = parallelism
			}
			if flags.Changed("node-limit") {
				cfg.NodeLimit = nodeLimit
			}
			if !flags.Changed("format") {
				format = a.cfg.Sweep.Format
			}
			if !validFormat(format) {
				return fmt.Errorf("%w: %q (want one of %s)", sweep.ErrUnknownFormat, format, strings.Join(sweep.Formats(), ", "))
			}

			report, err := a.runner.Sweep(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return sweep.Render(cmd.OutOrStdout(), report, format)
		},
	}

	cmd.Flags().StringSliceVarP(&policies, "policy", "p", nil, "policies to compare (repeatable)")
	cmd.Flags().Uint64VarP(&branching, "branching", "n", 3, "children attempted per node")
	cmd.Flags().Uint64Var(&from, "from", 0, "first budget")
	cmd.Flags().Uint64Var(&to, "to", 512, "end of the budget range (exclusive)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "concurrent policy series, 0 = all")
	cmd.Flags().Uint64Var(&nodeLimit, "node-limit", 0, "per-run node limit, 0 = unlimited")
	cmd.Flags().StringVarP(&format, "format", "f", sweep.FormatText, "output format: "+strings.Join(sweep.Formats(), ", "))
	return cmd
}

func validFormat(format string) bool {
	for _, f := range sweep.Formats() {
		if f == format {
			return true
		}
	}
	return false
}
