package budget

import "errors"

// Policy errors.
var (
	ErrUnknownPolicy = errors.New("unknown decay policy")
)

// Run errors.
var (
	ErrNodeLimitExceeded = errors.New("node limit exceeded")
)
