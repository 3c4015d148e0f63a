package budget

// node is one frame of the active path. Its parent is the frame one level
// up in the ledger, so the link is an index and never outlives the parent.
type node struct {
	available uint64 // depth budget, fixed once pushed
	overflow  uint64 // monotonically non-decreasing
	attempts  uint64 // spawn attempts still to make
}

// ledger is a depth-indexed arena holding the root-to-leaf path of a run.
type ledger struct {
	nodes []node
}

// maxPrealloc caps the initial arena capacity for very large budgets.
const maxPrealloc = 1024

func newLedger(budget uint64) *ledger {
	capacity := budget + 1
	if capacity == 0 || capacity > maxPrealloc {
		capacity = maxPrealloc
	}
	return &ledger{nodes: make([]node, 0, capacity)}
}

// push appends a fresh node with zero overflow and returns its depth.
func (l *ledger) push(available, attempts uint64) int {
	l.nodes = append(l.nodes, node{available: available, attempts: attempts})
	return len(l.nodes) - 1
}

// pop discards the deepest node once its subtree is finished.
func (l *ledger) pop() {
	l.nodes = l.nodes[:len(l.nodes)-1]
}

func (l *ledger) len() int {
	return len(l.nodes)
}

// at returns the node at depth. The pointer is invalidated by push.
func (l *ledger) at(depth int) *node {
	return &l.nodes[depth]
}

// signalOverflow records an overflow on the node at depth. A node's first
// overflow is forwarded to its parent, repeating upward until an ancestor
// that had already overflowed (which still gets its increment) or the root.
// It returns how many ancestors were incremented.
func (l *ledger) signalOverflow(depth int) uint64 {
	var propagated uint64
	for {
		n := &l.nodes[depth]
		prior := n.overflow
		n.overflow = saturatingInc(prior)
		if prior != 0 || depth == 0 {
			return propagated
		}
		depth--
		propagated++
	}
}
