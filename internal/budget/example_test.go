package budget_test

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/depthbudget/internal/budget"
)

func ExampleRun() {
	fmt.Println(budget.Run(budget.PolicyLegacy, 3, 10))
	fmt.Println(budget.Run(budget.PolicySeverity, 3, 10))
	// Output:
	// 90
	// 60
}

func ExampleRunContext() {
	res, err := budget.RunContext(context.Background(), budget.PolicyLegacy, 3, 2)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("nodes=%d overflows=%d depth=%d\n", res.Nodes, res.Overflows, res.MaxDepth)
	// Output:
	// nodes=6 overflows=15 depth=2
}
