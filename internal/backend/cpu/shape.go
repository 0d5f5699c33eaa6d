package cpu

import (
	"fmt"

	"github.com/relay-ml/relay/internal/tensor"
)

// Reshape returns a view with the same data and a different shape.
// The new shape must have the same number of elements.
func (cpu *CPUBackend) Reshape(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return x.WithShape(newShape)
}

// Transpose performs a 2D transpose (swaps rows and columns).
func (cpu *CPUBackend) Transpose(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("transpose: expected 2D tensor, got %v", shape))
	}
	m, n := shape[0], shape[1]
	out := cpu.mustRaw(tensor.Shape{n, m}, x.DType())

	switch x.DType() {
	case tensor.Float32:
		transpose2D(x.AsFloat32(), out.AsFloat32(), m, n)
	case tensor.Float64:
		transpose2D(x.AsFloat64(), out.AsFloat64(), m, n)
	case tensor.Int32:
		transpose2D(x.AsInt32(), out.AsInt32(), m, n)
	case tensor.Int64:
		transpose2D(x.AsInt64(), out.AsInt64(), m, n)
	}
	return out
}

// Cat concatenates tensors along a dimension. All shapes must match except
// along the concatenation dimension.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: no tensors given")
	}
	first := tensors[0]
	shape := first.Shape()
	dim = normalizeDim("cat", shape, dim)

	catSize := 0
	for _, t := range tensors {
		requireSameDType("cat", first, t)
		tShape := t.Shape()
		if len(tShape) != len(shape) {
			panic(fmt.Sprintf("cat: rank mismatch: %v vs %v", shape, tShape))
		}
		for d := range shape {
			if d != dim && tShape[d] != shape[d] {
				panic(fmt.Sprintf("cat: shape mismatch along dim %d: %v vs %v", d, shape, tShape))
			}
		}
		catSize += tShape[dim]
	}

	outShape := shape.Clone()
	outShape[dim] = catSize
	out := cpu.mustRaw(outShape, first.DType())

	switch first.DType() {
	case tensor.Float32:
		catSlices(tensors, out, dim, func(t *tensor.RawTensor) []float32 { return t.AsFloat32() })
	case tensor.Float64:
		catSlices(tensors, out, dim, func(t *tensor.RawTensor) []float64 { return t.AsFloat64() })
	case tensor.Int32:
		catSlices(tensors, out, dim, func(t *tensor.RawTensor) []int32 { return t.AsInt32() })
	case tensor.Int64:
		catSlices(tensors, out, dim, func(t *tensor.RawTensor) []int64 { return t.AsInt64() })
	}
	return out
}

func transpose2D[T tensor.DType](in, out []T, m, n int) {
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			out[j*m+i] = in[i*n+j]
		}
	}
}

// catSlices interleaves per-tensor blocks: for each outer slice, each
// input contributes its own dim-and-below block.
func catSlices[T tensor.DType](tensors []*tensor.RawTensor, out *tensor.RawTensor, dim int, data func(*tensor.RawTensor) []T) {
	outer := 1
	for d := 0; d < dim; d++ {
		outer *= out.Shape()[d]
	}

	outData := data(out)
	outBlock := out.NumElements() / max(outer, 1)

	offset := 0
	for _, t := range tensors {
		tData := data(t)
		block := t.NumElements() / max(outer, 1)
		for o := 0; o < outer; o++ {
			copy(outData[o*outBlock+offset:o*outBlock+offset+block], tData[o*block:(o+1)*block])
		}
		offset += block
	}
}
