package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations; the graph
// store and the message-passing executor are written entirely against this
// interface, so a graph is bound to exactly one backend at construction
// time rather than through process-wide state.
//
// Implementations:
//   - CPU: pure Go with chunked parallel loops
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar operations (element-wise with scalar).
	AddScalar(x *RawTensor, scalar float64) *RawTensor
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// Element-wise math.
	Exp(x *RawTensor) *RawTensor                       // exponential
	Rsqrt(x *RawTensor) *RawTensor                     // reciprocal square root (1/sqrt(x))
	LeakyRelu(x *RawTensor, negSlope float64) *RawTensor // max(x, negSlope*x)

	// Matrix operations.
	MatMul(a, b *RawTensor) *RawTensor // (M, K) @ (K, N) -> (M, N)

	// Row indexing. These are the gather/scatter primitives the
	// message-passing executor is built on.
	TakeRows(x *RawTensor, rows []int) *RawTensor          // gather rows along dim 0
	ScatterRows(dst *RawTensor, rows []int, src *RawTensor) // overwrite dst rows with src rows

	// Reduction operations.
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor  // sum along dimension
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor // mean along dimension
	MaxDim(x *RawTensor, dim int, keepDim bool) *RawTensor  // max along dimension

	// Softmax along a dimension.
	Softmax(x *RawTensor, dim int) *RawTensor

	// Shape operations.
	Reshape(x *RawTensor, newShape Shape) *RawTensor
	Transpose(x *RawTensor) *RawTensor            // 2D transpose
	Cat(tensors []*RawTensor, dim int) *RawTensor // concatenate along dimension

	// Metadata.
	Name() string
	Device() Device
}
