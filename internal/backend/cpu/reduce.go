package cpu

import (
	"fmt"
	"math"

	"github.com/relay-ml/relay/internal/parallel"
	"github.com/relay-ml/relay/internal/tensor"
)

// normalizeDim resolves negative dims and validates the range.
func normalizeDim(op string, shape tensor.Shape, dim int) int {
	ndim := len(shape)
	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("%s: dimension %d out of range for %dD tensor", op, dim, ndim))
	}
	return dim
}

// reducedShape computes the output shape after reducing dim.
func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			out = append(out, d)
		}
	}
	return out
}

// reduce runs a generic dimension reduction. The input is viewed as
// [outer, red, inner]; each (outer, inner) pair folds the red axis.
func (cpu *CPUBackend) reduce(op string, x *tensor.RawTensor, dim int, keepDim bool,
	f32 func(acc, v float32) float32, f64 func(acc, v float64) float64,
	init func(first float64) float64, final func(acc float64, n int) float64) *tensor.RawTensor {

	requireFloat(op, x)
	shape := x.Shape()
	dim = normalizeDim(op, shape, dim)
	if shape[dim] == 0 {
		panic(fmt.Sprintf("%s: cannot reduce zero-sized dimension %d of %v", op, dim, shape))
	}

	out := cpu.mustRaw(reducedShape(shape, dim, keepDim), x.DType())

	outer, red, inner := 1, shape[dim], 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}

	switch x.DType() {
	case tensor.Float32:
		reduceSlices(x.AsFloat32(), out.AsFloat32(), outer, red, inner, f32,
			func(v float32) float32 { return float32(init(float64(v))) },
			func(acc float32, n int) float32 { return float32(final(float64(acc), n)) },
			cpu.pcfg)
	case tensor.Float64:
		reduceSlices(x.AsFloat64(), out.AsFloat64(), outer, red, inner, f64,
			func(v float64) float64 { return init(v) },
			func(acc float64, n int) float64 { return final(acc, n) },
			cpu.pcfg)
	}
	return out
}

// SumDim sums tensor elements along the specified dimension.
// Negative dims index from the end (-1 = last dim).
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("sumdim", x, dim, keepDim,
		func(acc, v float32) float32 { return acc + v },
		func(acc, v float64) float64 { return acc + v },
		func(first float64) float64 { return first },
		func(acc float64, _ int) float64 { return acc })
}

// MeanDim computes the mean of tensor elements along the specified dimension.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("meandim", x, dim, keepDim,
		func(acc, v float32) float32 { return acc + v },
		func(acc, v float64) float64 { return acc + v },
		func(first float64) float64 { return first },
		func(acc float64, n int) float64 { return acc / float64(n) })
}

// MaxDim computes the maximum of tensor elements along the specified dimension.
func (cpu *CPUBackend) MaxDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("maxdim", x, dim, keepDim,
		func(acc, v float32) float32 { return float32(math.Max(float64(acc), float64(v))) },
		math.Max,
		func(first float64) float64 { return first },
		func(acc float64, _ int) float64 { return acc })
}

func reduceSlices[T float32 | float64](in, out []T, outer, red, inner int,
	fold func(acc, v T) T, init func(first T) T, final func(acc T, n int) T, cfg parallel.Config) {

	parallel.ForChunks(outer*inner, func(start, end int) {
		for k := start; k < end; k++ {
			o, i := k/inner, k%inner
			base := o*red*inner + i
			acc := init(in[base])
			for r := 1; r < red; r++ {
				acc = fold(acc, in[base+r*inner])
			}
			out[k] = final(acc, red)
		}
	}, cfg)
}
