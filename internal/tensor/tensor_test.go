package tensor

import (
	"math"
	"testing"
)

// Test helpers

func assertEqualFloat32(t *testing.T, expected, actual float32, msg string) {
	t.Helper()
	if math.Abs(float64(expected-actual)) > 1e-6 {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

// DType tests

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float32, 4},
		{Float64, 8},
		{Int32, 4},
		{Int64, 8},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestDataTypeString(t *testing.T) {
	tests := []struct {
		dtype DataType
		str   string
	}{
		{Float32, "float32"},
		{Float64, "float64"},
		{Int32, "int32"},
		{Int64, "int64"},
	}

	for _, tt := range tests {
		if got := tt.dtype.String(); got != tt.str {
			t.Errorf("%s.String() = %q, want %q", tt.dtype, got, tt.str)
		}
	}
}

func TestInferDataType(t *testing.T) {
	if dt := inferDataType(float32(0)); dt != Float32 {
		t.Errorf("inferDataType(float32) = %v, want Float32", dt)
	}
	if dt := inferDataType(float64(0)); dt != Float64 {
		t.Errorf("inferDataType(float64) = %v, want Float64", dt)
	}
	if dt := inferDataType(int32(0)); dt != Int32 {
		t.Errorf("inferDataType(int32) = %v, want Int32", dt)
	}
	if dt := inferDataType(int64(0)); dt != Int64 {
		t.Errorf("inferDataType(int64) = %v, want Int64", dt)
	}
}

// Shape tests

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{}, 1},
		{Shape{5}, 5},
		{Shape{2, 3}, 6},
		{Shape{2, 3, 4}, 24},
		{Shape{0, 3}, 0},
	}

	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeRowShape(t *testing.T) {
	s := Shape{4, 2, 3}
	if !s.RowShape().Equal(Shape{2, 3}) {
		t.Errorf("RowShape() = %v, want [2 3]", s.RowShape())
	}
	if s.RowSize() != 6 {
		t.Errorf("RowSize() = %d, want 6", s.RowSize())
	}
	if s.Leading() != 4 {
		t.Errorf("Leading() = %d, want 4", s.Leading())
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (Shape{0, 3}).Validate(); err != nil {
		t.Errorf("zero dim should be allowed: %v", err)
	}
	if err := (Shape{2, -1}).Validate(); err == nil {
		t.Error("negative dim should be rejected")
	}
}

func TestShapeComputeStrides(t *testing.T) {
	strides := Shape{2, 3, 4}.ComputeStrides()
	want := []int{12, 4, 1}
	for i := range want {
		if strides[i] != want[i] {
			t.Errorf("strides = %v, want %v", strides, want)
			break
		}
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b, want Shape
		needs      bool
		wantErr    bool
	}{
		{Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{Shape{5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}

	for _, tt := range tests {
		got, needs, err := BroadcastShapes(tt.a, tt.b)
		if tt.wantErr {
			if err == nil {
				t.Errorf("BroadcastShapes(%v, %v): expected error", tt.a, tt.b)
			}
			continue
		}
		if err != nil {
			t.Errorf("BroadcastShapes(%v, %v): %v", tt.a, tt.b, err)
			continue
		}
		if !got.Equal(tt.want) || needs != tt.needs {
			t.Errorf("BroadcastShapes(%v, %v) = %v, %v; want %v, %v",
				tt.a, tt.b, got, needs, tt.want, tt.needs)
		}
	}
}

// RawTensor tests

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	if raw.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6", raw.NumElements())
	}
	if len(raw.AsFloat32()) != 6 {
		t.Errorf("buffer length = %d, want 6", len(raw.AsFloat32()))
	}
}

func TestRawTensorWrongAccessor(t *testing.T) {
	raw, _ := NewRaw(Shape{2}, Float32, CPU)
	defer func() {
		if recover() == nil {
			t.Error("AsInt64 on float32 tensor should panic")
		}
	}()
	raw.AsInt64()
}

func TestRawTensorClone(t *testing.T) {
	raw, _ := NewRaw(Shape{3}, Float32, CPU)
	raw.AsFloat32()[0] = 42

	clone := raw.Clone()
	clone.AsFloat32()[0] = 7

	if raw.AsFloat32()[0] != 42 {
		t.Error("clone shares memory with original")
	}
}

func TestRawTensorWithShape(t *testing.T) {
	raw, _ := NewRaw(Shape{6}, Float32, CPU)
	view := raw.WithShape(Shape{2, 3})
	if !view.Shape().Equal(Shape{2, 3}) {
		t.Errorf("view shape = %v, want [2 3]", view.Shape())
	}
	view.AsFloat32()[0] = 5
	if raw.AsFloat32()[0] != 5 {
		t.Error("WithShape should share the buffer")
	}
}

// Tensor tests

func TestFromSlice(t *testing.T) {
	b := newTestBackend()
	x, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, b)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	assertEqualFloat32(t, 6, x.At(1, 2), "At(1, 2)")

	if _, err := FromSlice([]float32{1, 2}, Shape{3}, b); err == nil {
		t.Error("expected error for mismatched data length")
	}
}

func TestTensorSetAt(t *testing.T) {
	b := newTestBackend()
	x := Zeros[float32](Shape{2, 2}, b)
	x.Set(3.5, 1, 0)
	assertEqualFloat32(t, 3.5, x.At(1, 0), "Set/At round trip")
}

func TestCreation(t *testing.T) {
	b := newTestBackend()

	ones := Ones[float32](Shape{4}, b)
	for i, v := range ones.Data() {
		assertEqualFloat32(t, 1, v, "Ones element "+string(rune('0'+i)))
	}

	full := Full[float64](Shape{2}, 2.5, b)
	if full.Data()[1] != 2.5 {
		t.Errorf("Full = %v, want 2.5", full.Data()[1])
	}

	ar := Arange[int32](2, 6, b)
	want := []int32{2, 3, 4, 5}
	for i, v := range ar.Data() {
		if v != want[i] {
			t.Errorf("Arange[%d] = %d, want %d", i, v, want[i])
		}
	}
}

// newTestBackend builds a minimal Backend for creation/indexing tests.
// Compute methods are exercised in the cpu package's tests.
func newTestBackend() Backend {
	return stubBackend{}
}

type stubBackend struct{}

func (stubBackend) Add(a, b *RawTensor) *RawTensor                      { panic("not implemented") }
func (stubBackend) Sub(a, b *RawTensor) *RawTensor                      { panic("not implemented") }
func (stubBackend) Mul(a, b *RawTensor) *RawTensor                      { panic("not implemented") }
func (stubBackend) Div(a, b *RawTensor) *RawTensor                      { panic("not implemented") }
func (stubBackend) AddScalar(x *RawTensor, s float64) *RawTensor        { panic("not implemented") }
func (stubBackend) MulScalar(x *RawTensor, s float64) *RawTensor        { panic("not implemented") }
func (stubBackend) Exp(x *RawTensor) *RawTensor                         { panic("not implemented") }
func (stubBackend) Rsqrt(x *RawTensor) *RawTensor                       { panic("not implemented") }
func (stubBackend) LeakyRelu(x *RawTensor, s float64) *RawTensor        { panic("not implemented") }
func (stubBackend) MatMul(a, b *RawTensor) *RawTensor                   { panic("not implemented") }
func (stubBackend) TakeRows(x *RawTensor, rows []int) *RawTensor        { panic("not implemented") }
func (stubBackend) ScatterRows(dst *RawTensor, rows []int, src *RawTensor) {
	panic("not implemented")
}
func (stubBackend) SumDim(x *RawTensor, dim int, keep bool) *RawTensor  { panic("not implemented") }
func (stubBackend) MeanDim(x *RawTensor, dim int, keep bool) *RawTensor { panic("not implemented") }
func (stubBackend) MaxDim(x *RawTensor, dim int, keep bool) *RawTensor  { panic("not implemented") }
func (stubBackend) Softmax(x *RawTensor, dim int) *RawTensor            { panic("not implemented") }
func (stubBackend) Reshape(x *RawTensor, s Shape) *RawTensor            { panic("not implemented") }
func (stubBackend) Transpose(x *RawTensor) *RawTensor                   { panic("not implemented") }
func (stubBackend) Cat(ts []*RawTensor, dim int) *RawTensor             { panic("not implemented") }
func (stubBackend) Name() string                                       { return "stub" }
func (stubBackend) Device() Device                                     { return CPU }
