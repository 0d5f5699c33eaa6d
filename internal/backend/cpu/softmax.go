package cpu

import (
	"math"

	"github.com/relay-ml/relay/internal/parallel"
	"github.com/relay-ml/relay/internal/tensor"
)

// Softmax computes the softmax along the specified dimension, shifted by
// the per-slice maximum for numerical stability.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	requireFloat("softmax", x)
	shape := x.Shape()
	dim = normalizeDim("softmax", shape, dim)

	out := cpu.mustRaw(shape, x.DType())

	outer, red, inner := 1, shape[dim], 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	if red == 0 {
		return out
	}

	switch x.DType() {
	case tensor.Float32:
		softmaxSlices(x.AsFloat32(), out.AsFloat32(), outer, red, inner, cpu.pcfg)
	case tensor.Float64:
		softmaxSlices(x.AsFloat64(), out.AsFloat64(), outer, red, inner, cpu.pcfg)
	}
	return out
}

func softmaxSlices[T float32 | float64](in, out []T, outer, red, inner int, cfg parallel.Config) {
	parallel.ForChunks(outer*inner, func(start, end int) {
		for k := start; k < end; k++ {
			o, i := k/inner, k%inner
			base := o*red*inner + i

			maxVal := in[base]
			for r := 1; r < red; r++ {
				if v := in[base+r*inner]; v > maxVal {
					maxVal = v
				}
			}

			var sum T
			for r := 0; r < red; r++ {
				e := T(math.Exp(float64(in[base+r*inner] - maxVal)))
				out[base+r*inner] = e
				sum += e
			}
			for r := 0; r < red; r++ {
				out[base+r*inner] /= sum
			}
		}
	}, cfg)
}
