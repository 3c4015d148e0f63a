package main

import (
	"fmt"

	"github.com/fyrsmithlabs/depthbudget/internal/budget"
	"github.com/spf13/cobra"
)

func newPoliciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "List decay policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, p := range budget.Policies() {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-9s %s\n", p, p.Description()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
