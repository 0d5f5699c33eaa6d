package cpu

import (
	"fmt"
	"math"

	"github.com/relay-ml/relay/internal/parallel"
	"github.com/relay-ml/relay/internal/tensor"
)

// binary applies f element-wise over a and b with NumPy-style broadcasting.
func (cpu *CPUBackend) binary(op string, a, b *tensor.RawTensor,
	f32 func(x, y float32) float32, f64 func(x, y float64) float64) *tensor.RawTensor {

	requireSameDType(op, a, b)
	requireFloat(op, a)

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	out := cpu.mustRaw(outShape, a.DType())

	if !needsBroadcast {
		switch a.DType() {
		case tensor.Float32:
			ewiseSame(a.AsFloat32(), b.AsFloat32(), out.AsFloat32(), f32, cpu.pcfg)
		case tensor.Float64:
			ewiseSame(a.AsFloat64(), b.AsFloat64(), out.AsFloat64(), f64, cpu.pcfg)
		}
		return out
	}

	switch a.DType() {
	case tensor.Float32:
		ewiseBroadcast(a.AsFloat32(), b.AsFloat32(), out.AsFloat32(), a.Shape(), b.Shape(), outShape, f32)
	case tensor.Float64:
		ewiseBroadcast(a.AsFloat64(), b.AsFloat64(), out.AsFloat64(), a.Shape(), b.Shape(), outShape, f64)
	}
	return out
}

// Add performs element-wise addition with broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b,
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y })
}

// unary applies f element-wise over x.
func (cpu *CPUBackend) unary(op string, x *tensor.RawTensor,
	f32 func(v float32) float32, f64 func(v float64) float64) *tensor.RawTensor {

	requireFloat(op, x)
	out := cpu.mustRaw(x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		mapSlice(x.AsFloat32(), out.AsFloat32(), f32, cpu.pcfg)
	case tensor.Float64:
		mapSlice(x.AsFloat64(), out.AsFloat64(), f64, cpu.pcfg)
	}
	return out
}

// AddScalar adds a scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	s32 := float32(scalar)
	return cpu.unary("addscalar", x,
		func(v float32) float32 { return v + s32 },
		func(v float64) float64 { return v + scalar })
}

// MulScalar multiplies every element by a scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	s32 := float32(scalar)
	return cpu.unary("mulscalar", x,
		func(v float32) float32 { return v * s32 },
		func(v float64) float64 { return v * scalar })
}

// Exp computes the element-wise exponential.
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("exp", x,
		func(v float32) float32 { return float32(math.Exp(float64(v))) },
		math.Exp)
}

// Rsqrt computes the element-wise reciprocal square root.
// Zero inputs produce zero rather than +Inf, which is the convention for
// degree-based normalization of isolated nodes.
func (cpu *CPUBackend) Rsqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("rsqrt", x,
		func(v float32) float32 {
			if v == 0 {
				return 0
			}
			return float32(1 / math.Sqrt(float64(v)))
		},
		func(v float64) float64 {
			if v == 0 {
				return 0
			}
			return 1 / math.Sqrt(v)
		})
}

// LeakyRelu computes max(x, negSlope*x) element-wise.
func (cpu *CPUBackend) LeakyRelu(x *tensor.RawTensor, negSlope float64) *tensor.RawTensor {
	s32 := float32(negSlope)
	return cpu.unary("leakyrelu", x,
		func(v float32) float32 {
			if v < 0 {
				return s32 * v
			}
			return v
		},
		func(v float64) float64 {
			if v < 0 {
				return negSlope * v
			}
			return v
		})
}

// ewiseSame is the fast path for operands of identical shape.
func ewiseSame[T float32 | float64](a, b, out []T, f func(x, y T) T, cfg parallel.Config) {
	parallel.ForChunks(len(out), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = f(a[i], b[i])
		}
	}, cfg)
}

// mapSlice applies f to every element of in.
func mapSlice[T float32 | float64](in, out []T, f func(v T) T, cfg parallel.Config) {
	parallel.ForChunks(len(out), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = f(in[i])
		}
	}, cfg)
}

// broadcastStrides computes per-dimension input strides for iterating an
// input of shape sh as if it had shape out: broadcast dimensions get a
// stride of zero.
func broadcastStrides(sh, out tensor.Shape) []int {
	strides := make([]int, len(out))
	natural := sh.ComputeStrides()
	offset := len(out) - len(sh)
	for d := range out {
		sd := d - offset
		if sd < 0 || sh[sd] == 1 && out[d] > 1 {
			strides[d] = 0
		} else {
			strides[d] = natural[sd]
		}
	}
	return strides
}

// ewiseBroadcast is the general path with broadcast-aware index arithmetic.
func ewiseBroadcast[T float32 | float64](a, b, out []T, aShape, bShape, outShape tensor.Shape, f func(x, y T) T) {
	as := broadcastStrides(aShape, outShape)
	bs := broadcastStrides(bShape, outShape)
	outStrides := outShape.ComputeStrides()

	n := outShape.NumElements()
	for i := 0; i < n; i++ {
		ao, bo, rem := 0, 0, i
		for d := range outShape {
			idx := rem / outStrides[d]
			rem %= outStrides[d]
			ao += idx * as[d]
			bo += idx * bs[d]
		}
		out[i] = f(a[ao], b[bo])
	}
}
