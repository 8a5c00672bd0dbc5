// Package nn implements the module contract and the small set of layers the
// augmentation pipelines compose with.
//
// This package provides:
//   - Module interface: Forward, Parameters and state dict round-tripping
//   - TrainingModule: modules whose behaviour depends on training mode
//   - Sequential: container that chains modules and propagates training mode
//   - Linear and ReLU for the dense head that consumes augmented batches
package nn

import (
	"github.com/masher-ml/masher/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build larger graphs:
//
//	model := nn.NewSequential[Backend](
//	    augment.MustMaskedGaussianNoise[Backend](augment.DefaultNoiseConfig()),
//	    nn.NewLinear(520, 128, rng, backend),
//	    nn.NewReLU[Backend](),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module for input.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters, or nil for stateless modules.
	Parameters() []*Parameter[B]

	// StateDict returns parameter names mapped to raw tensors.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies parameters from a state dictionary.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// TrainingModule is implemented by modules that behave differently during
// training, such as augmentation layers that are a no-op at inference.
type TrainingModule interface {
	SetTraining(training bool)
	Training() bool
}
