package tensor

import (
	"fmt"
	"math/rand"
)

func mustRaw[T DType](shape Shape, device Device) *RawTensor {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), device)
	if err != nil {
		panic(fmt.Sprintf("tensor creation: %v", err))
	}
	return raw
}

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return New[T, B](mustRaw[T](shape, b.Device()), b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor filled with a specific value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := New[T, B](mustRaw[T](shape, b.Device()), b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Arange creates a 1D tensor with values from start to end (exclusive).
func Arange[T DType, B Backend](start, end T, b B) *Tensor[T, B] {
	n := int(end - start)
	if n < 0 {
		n = 0
	}
	t := New[T, B](mustRaw[T](Shape{n}, b.Device()), b)
	data := t.Data()
	for i := range data {
		data[i] = start + T(i)
	}
	return t
}

// Randn creates a tensor filled with random values from the standard
// normal distribution N(0, 1). Only float dtypes are supported.
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := New[T, B](mustRaw[T](shape, b.Device()), b)
	data := t.Data()
	for i := range data {
		data[i] = T(rand.NormFloat64())
	}
	return t
}

// Rand creates a tensor filled with random values from the uniform
// distribution U(0, 1). Only float dtypes are supported.
func Rand[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := New[T, B](mustRaw[T](shape, b.Device()), b)
	data := t.Data()
	for i := range data {
		data[i] = T(rand.Float64())
	}
	return t
}
