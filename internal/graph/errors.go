package graph

import "errors"

// Common errors. All of them are contract violations by the caller and are
// surfaced immediately; none are retryable.
var (
	// ErrInvalidTopology reports an edge endpoint outside [0, numNodes).
	ErrInvalidTopology = errors.New("edge endpoint out of range")

	// ErrShapeMismatch reports a feature whose leading dimension does not
	// match the node or edge count of its table.
	ErrShapeMismatch = errors.New("feature leading dimension does not match table size")

	// ErrKeyNotFound reports a lookup of a feature key that was never set.
	ErrKeyNotFound = errors.New("feature key not found")

	// ErrUndefinedFeature reports a message, reduce or apply function
	// referencing a feature key absent from the table it reads.
	ErrUndefinedFeature = errors.New("undefined feature referenced during message passing")
)
