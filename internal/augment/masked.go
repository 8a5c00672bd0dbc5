package augment

import (
	"fmt"
	"math/rand"

	"github.com/masher-ml/masher/internal/tensor"
)

// Masked applies a Transform to every element of its input except those
// equal to the mask value.
//
// A Masked value is immutable and safe for concurrent use as long as each
// goroutine passes its own generator to Apply.
type Masked[B tensor.Backend] struct {
	transform Transform[B]
	layout    Layout
	maskValue float32
}

// NewMasked wraps transform with a layout and a mask value.
func NewMasked[B tensor.Backend](transform Transform[B], layout Layout, maskValue float32) (*Masked[B], error) {
	if transform == nil {
		return nil, fmt.Errorf("%w: transform is nil", ErrInvalidConfig)
	}
	if !layout.valid() {
		return nil, fmt.Errorf("%w: unknown layout %v", ErrInvalidConfig, layout)
	}
	return &Masked[B]{
		transform: transform,
		layout:    layout,
		maskValue: maskValue,
	}, nil
}

// Transform returns the wrapped transform.
func (m *Masked[B]) Transform() Transform[B] {
	return m.transform
}

// Layout returns the layout the transform is applied with.
func (m *Masked[B]) Layout() Layout {
	return m.layout
}

// MaskValue returns the sentinel that marks protected elements.
func (m *Masked[B]) MaskValue() float32 {
	return m.maskValue
}

// Apply transforms x and restores every element that equals the mask value.
//
// The mask is computed from x itself, never from the transformed tensor, so
// a protected element is returned bit-for-bit. Elements are compared with
// exact equality; a NaN mask value therefore protects nothing.
func (m *Masked[B]) Apply(x *tensor.Tensor[float32, B], training bool, rng *rand.Rand) (*tensor.Tensor[float32, B], error) {
	transformed, err := m.transformLaidOut(x, training, rng)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.transform.Name(), err)
	}
	out, err := Select(x, transformed, m.maskValue)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.transform.Name(), err)
	}
	return out, nil
}

func (m *Masked[B]) transformLaidOut(x *tensor.Tensor[float32, B], training bool, rng *rand.Rand) (*tensor.Tensor[float32, B], error) {
	if m.layout == LayoutDirect {
		return m.transform.Transform(x, training, rng)
	}

	shape := x.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: image layout needs [batch, features], got %v", ErrShape, shape)
	}
	img := x.Reshape(shape[0], 1, shape[1], 1)

	out, err := m.transform.Transform(img, training, rng)
	if err != nil {
		return nil, err
	}
	if !out.Shape().Equal(img.Shape()) {
		return nil, fmt.Errorf("%w: got %v, want %v", ErrShapeMismatch, out.Shape(), img.Shape())
	}
	return out.Reshape(shape...), nil
}

// Mask reports, element by element, whether x equals maskValue.
func Mask[B tensor.Backend](x *tensor.Tensor[float32, B], maskValue float32) *tensor.Tensor[bool, B] {
	return x.Equal(tensor.Scalar[float32](maskValue, x.Backend()))
}

// Select keeps x where it equals maskValue and takes transformed elsewhere.
//
// The two tensors must have identical shapes; Select never broadcasts.
func Select[B tensor.Backend](x, transformed *tensor.Tensor[float32, B], maskValue float32) (*tensor.Tensor[float32, B], error) {
	if !x.Shape().Equal(transformed.Shape()) {
		return nil, fmt.Errorf("%w: got %v, want %v", ErrShapeMismatch, transformed.Shape(), x.Shape())
	}
	return tensor.Where(Mask(x, maskValue), x, transformed), nil
}
