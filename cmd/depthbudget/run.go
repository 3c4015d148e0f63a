package main

import (
	"encoding/json"
	"fmt"

	"github.com/fyrsmithlabs/depthbudget/internal/budget"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		policy    string
		branching uint64
		depth     uint64
		nodeLimit uint64
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Count the nodes of one tree",
		Long: `Expand a single tree and print the number of spawned nodes.

Examples:
  # Legacy policy, ternary tree, budget 10
  depthbudget run --policy legacy --budget 10

  # Full statistics as JSON
  depthbudget run --policy severity --branching 2 --budget 64 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := budget.ParsePolicy(policy)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("branching") {
				branching = a.cfg.Sweep.Branching
			}
			if !cmd.Flags().Changed("node-limit") {
				nodeLimit = a.cfg.Sweep.NodeLimit
			}

			res, err := a.runner.Run(cmd.Context(), p, branching, depth, budget.WithNodeLimit(nodeLimit))
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Nodes)
			return err
		},
	}

	cmd.Flags().StringVarP(&policy, "policy", "p", string(budget.PolicyLegacy), "decay policy: legacy or severity")
	cmd.Flags().Uint64VarP(&branching, "branching", "n", 3, "children attempted per node")
	cmd.Flags().Uint64VarP(&depth, "budget", "d", 0, "initial depth budget")
	cmd.Flags().Uint64Var(&nodeLimit, "node-limit", 0, "stop after this many nodes, 0 = unlimited")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print full run statistics as JSON")
	_ = cmd.MarkFlagRequired("budget")
	return cmd
}
