package cpu

import (
	"math"
	"testing"

	"github.com/relay-ml/relay/internal/parallel"
	"github.com/relay-ml/relay/internal/tensor"
)

func fromSlice(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	copy(raw.AsFloat32(), data)
	return raw
}

func assertFloat32s(t *testing.T, want, got []float32, msg string) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("%s: length %d, want %d", msg, len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(want[i]-got[i])) > 1e-5 {
			t.Errorf("%s: element %d = %v, want %v", msg, i, got[i], want[i])
		}
	}
}

func TestAdd(t *testing.T) {
	b := New()
	a := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	c := fromSlice(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2})

	out := b.Add(a, c)
	assertFloat32s(t, []float32{11, 22, 33, 44}, out.AsFloat32(), "Add")
}

func TestAddBroadcast(t *testing.T) {
	b := New()
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	bias := fromSlice(t, []float32{10, 20, 30}, tensor.Shape{1, 3})

	out := b.Add(a, bias)
	assertFloat32s(t, []float32{11, 22, 33, 14, 25, 36}, out.AsFloat32(), "Add broadcast row")

	col := fromSlice(t, []float32{100, 200}, tensor.Shape{2, 1})
	out = b.Add(a, col)
	assertFloat32s(t, []float32{101, 102, 103, 204, 205, 206}, out.AsFloat32(), "Add broadcast column")
}

func TestMulBroadcast(t *testing.T) {
	b := New()
	x := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})
	scale := fromSlice(t, []float32{1, 10, 100}, tensor.Shape{3, 1})

	out := b.Mul(x, scale)
	assertFloat32s(t, []float32{1, 2, 30, 40, 500, 600}, out.AsFloat32(), "Mul broadcast")
}

func TestSubDiv(t *testing.T) {
	b := New()
	a := fromSlice(t, []float32{10, 20, 30}, tensor.Shape{3})
	c := fromSlice(t, []float32{2, 4, 5}, tensor.Shape{3})

	assertFloat32s(t, []float32{8, 16, 25}, b.Sub(a, c).AsFloat32(), "Sub")
	assertFloat32s(t, []float32{5, 5, 6}, b.Div(a, c).AsFloat32(), "Div")
}

func TestScalarOps(t *testing.T) {
	b := New()
	x := fromSlice(t, []float32{1, 2, 3}, tensor.Shape{3})

	assertFloat32s(t, []float32{3, 4, 5}, b.AddScalar(x, 2).AsFloat32(), "AddScalar")
	assertFloat32s(t, []float32{2, 4, 6}, b.MulScalar(x, 2).AsFloat32(), "MulScalar")
}

func TestExp(t *testing.T) {
	b := New()
	x := fromSlice(t, []float32{0, 1}, tensor.Shape{2})
	out := b.Exp(x).AsFloat32()
	assertFloat32s(t, []float32{1, float32(math.E)}, out, "Exp")
}

func TestRsqrt(t *testing.T) {
	b := New()
	x := fromSlice(t, []float32{4, 16, 0}, tensor.Shape{3})
	out := b.Rsqrt(x).AsFloat32()
	// Zero maps to zero so degree normalization skips isolated nodes.
	assertFloat32s(t, []float32{0.5, 0.25, 0}, out, "Rsqrt")
}

func TestLeakyRelu(t *testing.T) {
	b := New()
	x := fromSlice(t, []float32{-10, -1, 0, 2}, tensor.Shape{4})
	out := b.LeakyRelu(x, 0.2).AsFloat32()
	assertFloat32s(t, []float32{-2, -0.2, 0, 2}, out, "LeakyRelu")
}

func TestMatMul(t *testing.T) {
	b := New()
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	c := fromSlice(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	out := b.MatMul(a, c)
	if !out.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("MatMul shape = %v, want [2 2]", out.Shape())
	}
	assertFloat32s(t, []float32{58, 64, 139, 154}, out.AsFloat32(), "MatMul")
}

func TestTakeRows(t *testing.T) {
	b := New()
	x := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})

	out := b.TakeRows(x, []int{2, 0, 2})
	if !out.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("TakeRows shape = %v, want [3 2]", out.Shape())
	}
	assertFloat32s(t, []float32{5, 6, 1, 2, 5, 6}, out.AsFloat32(), "TakeRows")
}

func TestTakeRowsEmpty(t *testing.T) {
	b := New()
	x := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	out := b.TakeRows(x, nil)
	if !out.Shape().Equal(tensor.Shape{0, 2}) {
		t.Fatalf("TakeRows empty shape = %v, want [0 2]", out.Shape())
	}
}

func TestTakeRowsOutOfRange(t *testing.T) {
	b := New()
	x := fromSlice(t, []float32{1, 2}, tensor.Shape{2, 1})

	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range row")
		}
	}()
	b.TakeRows(x, []int{2})
}

func TestScatterRows(t *testing.T) {
	b := New()
	dst := fromSlice(t, []float32{0, 0, 0, 0, 0, 0}, tensor.Shape{3, 2})
	src := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	b.ScatterRows(dst, []int{2, 0}, src)
	assertFloat32s(t, []float32{3, 4, 0, 0, 1, 2}, dst.AsFloat32(), "ScatterRows")
}

func TestSumDim(t *testing.T) {
	b := New()
	x := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := b.SumDim(x, 1, false)
	if !out.Shape().Equal(tensor.Shape{2}) {
		t.Fatalf("SumDim shape = %v, want [2]", out.Shape())
	}
	assertFloat32s(t, []float32{6, 15}, out.AsFloat32(), "SumDim dim 1")

	out = b.SumDim(x, 0, true)
	if !out.Shape().Equal(tensor.Shape{1, 3}) {
		t.Fatalf("SumDim keepDim shape = %v, want [1 3]", out.Shape())
	}
	assertFloat32s(t, []float32{5, 7, 9}, out.AsFloat32(), "SumDim dim 0")
}

func TestSumDimMiddle(t *testing.T) {
	b := New()
	// Mailbox layout: [nodes, degree, features].
	x := fromSlice(t, []float32{
		1, 2,
		3, 4,

		10, 20,
		30, 40,
	}, tensor.Shape{2, 2, 2})

	out := b.SumDim(x, 1, false)
	if !out.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("SumDim shape = %v, want [2 2]", out.Shape())
	}
	assertFloat32s(t, []float32{4, 6, 40, 60}, out.AsFloat32(), "SumDim middle dim")
}

func TestMeanDim(t *testing.T) {
	b := New()
	x := fromSlice(t, []float32{1, 3, 5, 7}, tensor.Shape{2, 2})

	out := b.MeanDim(x, 1, false)
	assertFloat32s(t, []float32{2, 6}, out.AsFloat32(), "MeanDim")
}

func TestMaxDim(t *testing.T) {
	b := New()
	x := fromSlice(t, []float32{1, 9, -5, 3, -2, -8}, tensor.Shape{2, 3})

	out := b.MaxDim(x, 1, false)
	assertFloat32s(t, []float32{9, 3}, out.AsFloat32(), "MaxDim")
}

func TestSoftmax(t *testing.T) {
	b := New()
	x := fromSlice(t, []float32{1, 1, 1, 1, 0, 1000}, tensor.Shape{3, 2})

	out := b.Softmax(x, 1).AsFloat32()
	assertFloat32s(t, []float32{0.5, 0.5, 0.5, 0.5, 0, 1}, out, "Softmax")
}

func TestReshape(t *testing.T) {
	b := New()
	x := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{6})

	out := b.Reshape(x, tensor.Shape{2, 3})
	if !out.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("Reshape shape = %v, want [2 3]", out.Shape())
	}
	// Views share the buffer.
	out.AsFloat32()[0] = 42
	if x.AsFloat32()[0] != 42 {
		t.Error("Reshape should return a view")
	}
}

func TestTranspose(t *testing.T) {
	b := New()
	x := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := b.Transpose(x)
	if !out.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Transpose shape = %v, want [3 2]", out.Shape())
	}
	assertFloat32s(t, []float32{1, 4, 2, 5, 3, 6}, out.AsFloat32(), "Transpose")
}

func TestCat(t *testing.T) {
	b := New()
	a := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	c := fromSlice(t, []float32{5, 6}, tensor.Shape{1, 2})

	out := b.Cat([]*tensor.RawTensor{a, c}, 0)
	if !out.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Cat dim 0 shape = %v, want [3 2]", out.Shape())
	}
	assertFloat32s(t, []float32{1, 2, 3, 4, 5, 6}, out.AsFloat32(), "Cat dim 0")

	d := fromSlice(t, []float32{10, 20}, tensor.Shape{2, 1})
	out = b.Cat([]*tensor.RawTensor{a, d}, 1)
	if !out.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("Cat dim 1 shape = %v, want [2 3]", out.Shape())
	}
	assertFloat32s(t, []float32{1, 2, 10, 3, 4, 20}, out.AsFloat32(), "Cat dim 1")
}

func TestSequentialConfigMatchesParallel(t *testing.T) {
	seq := NewWithConfig(parallel.Sequential())
	par := New()

	n := 1000
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i)
	}
	x := fromSlice(t, data, tensor.Shape{n})

	a := seq.MulScalar(x, 3).AsFloat32()
	b := par.MulScalar(x, 3).AsFloat32()
	assertFloat32s(t, a, b, "sequential vs parallel")
}
