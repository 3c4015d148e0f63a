// Package budget implements budgeted recursive branching: a deterministic
// expansion of an n-ary tree of work items in which every child receives a
// smaller depth budget than its parent, and exhausting a budget throttles the
// rest of the branch.
//
// # Core Concepts
//
// Node: one work item. It holds its depth budget (fixed at construction), a
// local overflow count (starts at zero, only ever increases) and a non-owning
// link to its parent. Only the active root-to-leaf path is live at any time;
// nodes are frames of an arena indexed by depth, and a node's parent is the
// frame one level up.
//
// Overflow: a spawn attempt on a node whose budget is zero. The node's
// overflow count is incremented. If that was its first overflow, the signal
// travels to the parent, and on up through every ancestor that had not yet
// been notified. The first ancestor that was already notified absorbs one
// increment and stops the signal.
//
// Policy: maps a parent's budget and overflow count to the budget of the
// next child. Both policies decrement while no overflow was seen. After that,
// PolicyLegacy divides by 4 and PolicySeverity divides by 4^overflow
// (saturating, so large counts yield a zero budget).
//
// # Usage
//
// The pure entry point counts spawned nodes:
//
//	nodes := budget.Run(budget.PolicyLegacy, 3, 10) // 90
//
// RunContext runs the same algorithm with cancellation, a node limit and
// statistics:
//
//	res, err := budget.RunContext(ctx, budget.PolicySeverity, 3, 200,
//	    budget.WithNodeLimit(1_000_000))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Nodes, res.Overflows, res.MaxDepth)
//
// # Ordering
//
// The n spawn attempts of a node run in order, and each spawned child is
// explored completely before the next attempt. Overflow signals raised inside
// an earlier sibling's subtree therefore change the budget handed to later
// siblings. Counts depend on this ordering.
//
// # Concurrency
//
// A single run is strictly sequential and owns all of its state. Separate
// runs share nothing and may execute on different goroutines.
package budget
