package augment

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/masher-ml/masher/internal/tensor"
)

// ValueRange bounds the output of a contrast adjustment.
type ValueRange struct {
	Min float32 `yaml:"min"`
	Max float32 `yaml:"max"`
}

// RandomContrast scales each image's deviation from its per-channel mean by
// a random factor during training.
//
// Inputs are images [batch, height, width, channels] or a single image
// [height, width, channels]. The factor is drawn once per image from
// [1-lower, 1+upper).
type RandomContrast[B tensor.Backend] struct {
	lower, upper float64
	valueRange   *ValueRange
}

// NewRandomContrast creates a contrast transform. valueRange may be nil.
func NewRandomContrast[B tensor.Backend](lower, upper float64, valueRange *ValueRange) (*RandomContrast[B], error) {
	if math.IsNaN(lower) || lower < 0 || lower > 1 {
		return nil, fmt.Errorf("%w: contrast lower must be in [0, 1], got %v", ErrInvalidConfig, lower)
	}
	if math.IsNaN(upper) || upper < 0 {
		return nil, fmt.Errorf("%w: contrast upper must be >= 0, got %v", ErrInvalidConfig, upper)
	}
	if valueRange != nil && valueRange.Min > valueRange.Max {
		return nil, fmt.Errorf("%w: value range min %v > max %v", ErrInvalidConfig, valueRange.Min, valueRange.Max)
	}
	rc := &RandomContrast[B]{lower: lower, upper: upper}
	if valueRange != nil {
		vr := *valueRange
		rc.valueRange = &vr
	}
	return rc, nil
}

// Name returns "RandomContrast".
func (c *RandomContrast[B]) Name() string {
	return "RandomContrast"
}

// Bounds returns the factor range [1-lower, 1+upper).
func (c *RandomContrast[B]) Bounds() (lo, hi float64) {
	return 1 - c.lower, 1 + c.upper
}

// Transform adjusts contrast when training and returns a copy of x otherwise.
func (c *RandomContrast[B]) Transform(x *tensor.Tensor[float32, B], training bool, rng *rand.Rand) (*tensor.Tensor[float32, B], error) {
	if !training {
		return x.Clone(), nil
	}
	if rng == nil {
		return nil, ErrNilGenerator
	}

	shape := x.Shape()
	images := x
	switch len(shape) {
	case 4:
	case 3:
		images = x.Reshape(1, shape[0], shape[1], shape[2])
	default:
		return nil, fmt.Errorf("%w: contrast needs [batch, height, width, channels] or [height, width, channels], got %v",
			ErrShape, shape)
	}

	batch := images.Shape()[0]
	lo, hi := c.Bounds()
	factors := tensor.Uniform[float32](tensor.Shape{batch, 1, 1, 1}, lo, hi, rng, x.Backend())

	// Mean over height then width is the per-image, per-channel mean.
	mean := images.MeanDim(1, true).MeanDim(2, true)
	out := images.Sub(mean).Mul(factors).Add(mean)
	if c.valueRange != nil {
		out = out.Clamp(c.valueRange.Min, c.valueRange.Max)
	}
	return out.Reshape(shape...), nil
}
