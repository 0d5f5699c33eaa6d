package tensor

import "fmt"

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	default:
		return "Unknown"
	}
}

// RawTensor is the untyped tensor representation shared by all backends
// and by graph feature tables. It owns a dense row-major buffer whose
// element type matches DType.
//
// RawTensor carries no gradient or graph-tracking state; differentiation
// is the responsibility of an external engine. Code that holds a
// RawTensor it did not allocate must treat the buffer as read-only.
type RawTensor struct {
	shape   Shape
	strides []int
	dtype   DataType
	device  Device
	data    any // []float32, []float64, []int32 or []int64
}

// NewRaw allocates a zero-filled raw tensor with the given shape, dtype
// and device.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	n := shape.NumElements()
	var data any
	switch dtype {
	case Float32:
		data = make([]float32, n)
	case Float64:
		data = make([]float64, n)
	case Int32:
		data = make([]int32, n)
	case Int64:
		data = make([]int64, n)
	default:
		return nil, fmt.Errorf("unsupported dtype: %s", dtype)
	}

	return &RawTensor{
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		dtype:   dtype,
		device:  device,
		data:    data,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the row-major strides.
func (r *RawTensor) Strides() []int {
	return r.strides
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// AsFloat32 returns the buffer as a float32 slice.
// Panics if the dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	v, ok := r.data.([]float32)
	if !ok {
		panic(fmt.Sprintf("AsFloat32 called on %s tensor", r.dtype))
	}
	return v
}

// AsFloat64 returns the buffer as a float64 slice.
// Panics if the dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	v, ok := r.data.([]float64)
	if !ok {
		panic(fmt.Sprintf("AsFloat64 called on %s tensor", r.dtype))
	}
	return v
}

// AsInt32 returns the buffer as an int32 slice.
// Panics if the dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	v, ok := r.data.([]int32)
	if !ok {
		panic(fmt.Sprintf("AsInt32 called on %s tensor", r.dtype))
	}
	return v
}

// AsInt64 returns the buffer as an int64 slice.
// Panics if the dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	v, ok := r.data.([]int64)
	if !ok {
		panic(fmt.Sprintf("AsInt64 called on %s tensor", r.dtype))
	}
	return v
}

// Clone creates a deep copy of the raw tensor.
func (r *RawTensor) Clone() *RawTensor {
	out, err := NewRaw(r.shape, r.dtype, r.device)
	if err != nil {
		panic(fmt.Sprintf("clone: %v", err))
	}
	switch r.dtype {
	case Float32:
		copy(out.AsFloat32(), r.AsFloat32())
	case Float64:
		copy(out.AsFloat64(), r.AsFloat64())
	case Int32:
		copy(out.AsInt32(), r.AsInt32())
	case Int64:
		copy(out.AsInt64(), r.AsInt64())
	}
	return out
}

// WithShape returns a view sharing the buffer with a different shape.
// Panics if the element counts differ.
func (r *RawTensor) WithShape(shape Shape) *RawTensor {
	if shape.NumElements() != r.NumElements() {
		panic(fmt.Sprintf("cannot view %v tensor as %v: element counts differ", r.shape, shape))
	}
	return &RawTensor{
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		dtype:   r.dtype,
		device:  r.device,
		data:    r.data,
	}
}

// String returns a human-readable description.
func (r *RawTensor) String() string {
	return fmt.Sprintf("RawTensor[%s]%v on %s", r.dtype, r.shape, r.device)
}
