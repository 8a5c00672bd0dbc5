// Copyright 2026 The masher Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/masher-ml/masher/internal/tensor"
)

// DType is a constraint for tensor element types:
// float32, float64, int32, int64, bool.
type DType = tensor.DType

// Float is a constraint for floating-point element types.
type Float = tensor.Float

// DataType identifies a tensor's element type at runtime.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Bool    DataType = tensor.Bool
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// CPU is the only device masher computes on.
const CPU Device = tensor.CPU

// Shape represents the dimensions of a tensor.
// Example: Shape{32, 520} is a batch of 32 fingerprints with 520 readings each.
type Shape = tensor.Shape

// RawTensor is the untyped tensor that backends operate on.
//
// Most users should use Tensor[T, B] instead.
type RawTensor = tensor.RawTensor

// Backend computes tensor operations. See backend/cpu.
type Backend = tensor.Backend

// Tensor is a generic type-safe tensor.
//
// T is the element type and B the backend that computes on it. Operations
// never modify their receiver; every result is a new tensor.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, b)
}

// Full creates a tensor filled with value.
//
// Example:
//
//	x := tensor.Full[float32](tensor.Shape{2, 3}, -1, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Scalar creates a 0-D tensor that broadcasts against any shape.
func Scalar[T DType, B Backend](value T, b B) *Tensor[T, B] {
	return tensor.Scalar[T, B](value, b)
}

// Randn creates a tensor of standard normal samples drawn from rng.
//
// Example:
//
//	rng := rand.New(rand.NewSource(7))
//	x := tensor.Randn[float32](tensor.Shape{2, 3}, rng, backend)
func Randn[T Float, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	return tensor.Randn[T, B](shape, rng, b)
}

// Rand creates a tensor of samples uniform in [0, 1) drawn from rng.
func Rand[T Float, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	return tensor.Rand[T, B](shape, rng, b)
}

// Uniform creates a tensor of samples uniform in [lo, hi) drawn from rng.
func Uniform[T Float, B Backend](shape Shape, lo, hi float64, rng *rand.Rand, b B) *Tensor[T, B] {
	return tensor.Uniform[T, B](shape, lo, hi, rng, b)
}

// FromSlice creates a tensor from a Go slice. The data is copied.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice[T, B](data, shape, b)
}

// New wraps a raw tensor. Most users should use Zeros, Ones or FromSlice.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// NewRaw allocates a zeroed raw tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// Where selects elements from x where cond is true and from y elsewhere.
//
// Example:
//
//	missing := x.Equal(tensor.Scalar[float32](0, backend))
//	out := tensor.Where(missing, x, augmented)
func Where[T DType, B Backend](cond *Tensor[bool, B], x, y *Tensor[T, B]) *Tensor[T, B] {
	return tensor.Where(cond, x, y)
}

// BroadcastShapes computes the NumPy broadcast of two shapes. The flag
// reports whether either operand needs broadcasting.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
