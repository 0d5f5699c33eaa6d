package graph

import (
	"fmt"
	"sort"

	"github.com/relay-ml/relay/internal/tensor"
)

// Frame is a feature table: a mapping from string keys to dense tensors
// whose leading dimension equals the number of rows (graph nodes or
// edges). Trailing dimensions are arbitrary but fixed per key.
type Frame struct {
	kind     string // "node" or "edge", for error messages
	rows     int
	features map[string]*tensor.RawTensor
}

func newFrame(kind string, rows int) *Frame {
	return &Frame{
		kind:     kind,
		rows:     rows,
		features: make(map[string]*tensor.RawTensor),
	}
}

// Rows returns the number of rows every feature must have.
func (f *Frame) Rows() int {
	return f.rows
}

// Set assigns a feature tensor to key, replacing any previous value.
// Fails with ErrShapeMismatch if the leading dimension differs from the
// table's row count. The frame takes shared ownership of the tensor; the
// caller must not mutate it afterwards.
func (f *Frame) Set(key string, value *tensor.RawTensor) error {
	shape := value.Shape()
	if len(shape) == 0 || shape[0] != f.rows {
		return fmt.Errorf("%w: %s feature %q has shape %v, table has %d rows",
			ErrShapeMismatch, f.kind, key, shape, f.rows)
	}
	f.features[key] = value
	return nil
}

// Get returns the feature stored under key.
// Fails with ErrKeyNotFound if the key was never set.
func (f *Frame) Get(key string) (*tensor.RawTensor, error) {
	value, ok := f.features[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s feature %q", ErrKeyNotFound, f.kind, key)
	}
	return value, nil
}

// Has reports whether key is present.
func (f *Frame) Has(key string) bool {
	_, ok := f.features[key]
	return ok
}

// Pop removes and returns the feature stored under key.
// Fails with ErrKeyNotFound if the key was never set.
func (f *Frame) Pop(key string) (*tensor.RawTensor, error) {
	value, err := f.Get(key)
	if err != nil {
		return nil, err
	}
	delete(f.features, key)
	return value, nil
}

// Keys returns all feature keys in sorted order.
func (f *Frame) Keys() []string {
	keys := make([]string, 0, len(f.features))
	for k := range f.features {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
