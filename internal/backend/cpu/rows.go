package cpu

import (
	"fmt"

	"github.com/relay-ml/relay/internal/parallel"
	"github.com/relay-ml/relay/internal/tensor"
)

// TakeRows gathers rows along the leading dimension.
// Output shape is [len(rows), rowShape...].
func (cpu *CPUBackend) TakeRows(x *tensor.RawTensor, rows []int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) == 0 {
		panic("takerows: scalar tensor has no rows")
	}

	outShape := append(tensor.Shape{len(rows)}, shape.RowShape()...)
	out := cpu.mustRaw(outShape, x.DType())

	numRows := shape.Leading()
	for _, r := range rows {
		if r < 0 || r >= numRows {
			panic(fmt.Sprintf("takerows: row %d out of range [0, %d)", r, numRows))
		}
	}

	switch x.DType() {
	case tensor.Float32:
		copyRows(x.AsFloat32(), out.AsFloat32(), rows, shape.RowSize(), cpu.pcfg)
	case tensor.Float64:
		copyRows(x.AsFloat64(), out.AsFloat64(), rows, shape.RowSize(), cpu.pcfg)
	case tensor.Int32:
		copyRows(x.AsInt32(), out.AsInt32(), rows, shape.RowSize(), cpu.pcfg)
	case tensor.Int64:
		copyRows(x.AsInt64(), out.AsInt64(), rows, shape.RowSize(), cpu.pcfg)
	}
	return out
}

// ScatterRows overwrites dst rows with the rows of src: dst[rows[i]] = src[i].
// dst is modified in place. Row indices must be unique for a deterministic
// result; the message-passing executor guarantees this by construction.
func (cpu *CPUBackend) ScatterRows(dst *tensor.RawTensor, rows []int, src *tensor.RawTensor) {
	requireSameDType("scatterrows", dst, src)
	if src.Shape().Leading() != len(rows) {
		panic(fmt.Sprintf("scatterrows: %d rows given but source has leading dimension %d",
			len(rows), src.Shape().Leading()))
	}
	if dst.Shape().RowSize() != src.Shape().RowSize() {
		panic(fmt.Sprintf("scatterrows: row size mismatch: %v vs %v", dst.Shape(), src.Shape()))
	}

	numRows := dst.Shape().Leading()
	for _, r := range rows {
		if r < 0 || r >= numRows {
			panic(fmt.Sprintf("scatterrows: row %d out of range [0, %d)", r, numRows))
		}
	}

	rowSize := dst.Shape().RowSize()
	switch dst.DType() {
	case tensor.Float32:
		scatterRows(dst.AsFloat32(), src.AsFloat32(), rows, rowSize)
	case tensor.Float64:
		scatterRows(dst.AsFloat64(), src.AsFloat64(), rows, rowSize)
	case tensor.Int32:
		scatterRows(dst.AsInt32(), src.AsInt32(), rows, rowSize)
	case tensor.Int64:
		scatterRows(dst.AsInt64(), src.AsInt64(), rows, rowSize)
	}
}

func copyRows[T tensor.DType](src, dst []T, rows []int, rowSize int, cfg parallel.Config) {
	parallel.ForChunks(len(rows), func(start, end int) {
		for i := start; i < end; i++ {
			copy(dst[i*rowSize:(i+1)*rowSize], src[rows[i]*rowSize:(rows[i]+1)*rowSize])
		}
	}, cfg)
}

func scatterRows[T tensor.DType](dst, src []T, rows []int, rowSize int) {
	for i, r := range rows {
		copy(dst[r*rowSize:(r+1)*rowSize], src[i*rowSize:(i+1)*rowSize])
	}
}
