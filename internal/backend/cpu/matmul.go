package cpu

import (
	"fmt"

	"github.com/relay-ml/relay/internal/parallel"
	"github.com/relay-ml/relay/internal/tensor"
)

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) -> (M, N).
// Rows of the result are computed in parallel.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	requireSameDType("matmul", a, b)
	requireFloat("matmul", a)

	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", aShape, bShape))
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("matmul: inner dimensions differ: %v @ %v", aShape, bShape))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]
	out := cpu.mustRaw(tensor.Shape{m, n}, a.DType())

	switch a.DType() {
	case tensor.Float32:
		matmulRows(a.AsFloat32(), b.AsFloat32(), out.AsFloat32(), m, k, n, cpu.pcfg)
	case tensor.Float64:
		matmulRows(a.AsFloat64(), b.AsFloat64(), out.AsFloat64(), m, k, n, cpu.pcfg)
	}
	return out
}

// matmulRows uses the ikj loop order so the inner loop walks both b and
// out contiguously.
func matmulRows[T float32 | float64](a, b, out []T, m, k, n int, cfg parallel.Config) {
	parallel.ForChunks(m, func(start, end int) {
		for i := start; i < end; i++ {
			outRow := out[i*n : (i+1)*n]
			for p := 0; p < k; p++ {
				av := a[i*k+p]
				if av == 0 {
					continue
				}
				bRow := b[p*n : (p+1)*n]
				for j := range outRow {
					outRow[j] += av * bRow[j]
				}
			}
		}
	}, cfg)
}
