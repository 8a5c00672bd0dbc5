package augment

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/masher-ml/masher/internal/tensor"
)

// GaussianNoise adds zero-centred Gaussian noise during training.
type GaussianNoise[B tensor.Backend] struct {
	stddev float64
}

// NewGaussianNoise creates a noise transform with the given standard deviation.
func NewGaussianNoise[B tensor.Backend](stddev float64) (*GaussianNoise[B], error) {
	if math.IsNaN(stddev) || stddev < 0 {
		return nil, fmt.Errorf("%w: stddev must be >= 0, got %v", ErrInvalidConfig, stddev)
	}
	return &GaussianNoise[B]{stddev: stddev}, nil
}

// Name returns "GaussianNoise".
func (g *GaussianNoise[B]) Name() string {
	return "GaussianNoise"
}

// Stddev returns the noise standard deviation.
func (g *GaussianNoise[B]) Stddev() float64 {
	return g.stddev
}

// Transform returns x + N(0, stddev) when training and a copy of x otherwise.
func (g *GaussianNoise[B]) Transform(x *tensor.Tensor[float32, B], training bool, rng *rand.Rand) (*tensor.Tensor[float32, B], error) {
	if !training {
		return x.Clone(), nil
	}
	if rng == nil {
		return nil, ErrNilGenerator
	}
	noise := tensor.Randn[float32](x.Shape(), rng, x.Backend())
	return x.Add(noise.MulScalar(float32(g.stddev))), nil
}
