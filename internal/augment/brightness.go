package augment

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/masher-ml/masher/internal/tensor"
)

// RandomBrightness adds one random offset in [-maxDelta, maxDelta) to every
// element of the input.
type RandomBrightness[B tensor.Backend] struct {
	maxDelta       float64
	ignoreTraining bool
}

// NewRandomBrightness creates a brightness transform.
//
// With ignoreTraining set the offset is applied in inference too.
func NewRandomBrightness[B tensor.Backend](maxDelta float64, ignoreTraining bool) (*RandomBrightness[B], error) {
	if math.IsNaN(maxDelta) || maxDelta < 0 {
		return nil, fmt.Errorf("%w: brightness max delta must be >= 0, got %v", ErrInvalidConfig, maxDelta)
	}
	return &RandomBrightness[B]{maxDelta: maxDelta, ignoreTraining: ignoreTraining}, nil
}

// Name returns "RandomBrightness".
func (r *RandomBrightness[B]) Name() string {
	return "RandomBrightness"
}

// MaxDelta returns the largest offset magnitude.
func (r *RandomBrightness[B]) MaxDelta() float64 {
	return r.maxDelta
}

// Transform shifts x by a random offset.
func (r *RandomBrightness[B]) Transform(x *tensor.Tensor[float32, B], training bool, rng *rand.Rand) (*tensor.Tensor[float32, B], error) {
	if !training && !r.ignoreTraining {
		return x.Clone(), nil
	}
	if rng == nil {
		return nil, ErrNilGenerator
	}
	delta := (2*rng.Float64() - 1) * r.maxDelta
	return x.AddScalar(float32(delta)), nil
}
