package augment

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/masher-ml/masher/internal/tensor"
)

// Dropout zeroes elements with probability rate during training and scales
// the survivors by 1/(1-rate).
type Dropout[B tensor.Backend] struct {
	rate float64
}

// NewDropout creates a dropout transform. rate must be in [0, 1].
func NewDropout[B tensor.Backend](rate float64) (*Dropout[B], error) {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return nil, fmt.Errorf("%w: dropout rate must be in [0, 1], got %v", ErrInvalidConfig, rate)
	}
	return &Dropout[B]{rate: rate}, nil
}

// Name returns "Dropout".
func (d *Dropout[B]) Name() string {
	return "Dropout"
}

// Rate returns the drop probability.
func (d *Dropout[B]) Rate() float64 {
	return d.rate
}

// Transform applies dropout when training and returns a copy of x otherwise.
func (d *Dropout[B]) Transform(x *tensor.Tensor[float32, B], training bool, rng *rand.Rand) (*tensor.Tensor[float32, B], error) {
	if !training || d.rate == 0 {
		return x.Clone(), nil
	}
	if d.rate == 1 {
		return tensor.Zeros[float32](x.Shape(), x.Backend()), nil
	}
	if rng == nil {
		return nil, ErrNilGenerator
	}

	scale := float32(1 / (1 - d.rate))
	keep := tensor.Zeros[float32](x.Shape(), x.Backend())
	data := keep.Data()
	for i := range data {
		if rng.Float64() >= d.rate {
			data[i] = scale
		}
	}
	return x.Mul(keep), nil
}
