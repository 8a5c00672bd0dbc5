package nn

import (
	"fmt"
	"strings"

	"github.com/masher-ml/masher/internal/tensor"
)

// Sequential is a container module that chains modules together.
//
// Each module's output becomes the next module's input:
//
//	model := nn.NewSequential(noise, dropout, linear)
//	model.SetTraining(true)
//	output := model.Forward(input)
type Sequential[B tensor.Backend] struct {
	modules  []Module[B]
	training bool
}

// Compile-time checks.
var (
	_ Module[tensor.Backend] = (*Sequential[tensor.Backend])(nil)
	_ TrainingModule         = (*Sequential[tensor.Backend])(nil)
)

// NewSequential creates a new Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return &Sequential[B]{
		modules: modules,
	}
}

// Forward applies all modules in order.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// SetTraining switches the container and every child implementing
// TrainingModule into or out of training mode.
func (s *Sequential[B]) SetTraining(training bool) {
	s.training = training
	for _, module := range s.modules {
		if tm, ok := module.(TrainingModule); ok {
			tm.SetTraining(training)
		}
	}
}

// Training reports the mode last set with SetTraining.
func (s *Sequential[B]) Training() bool {
	return s.training
}

// Parameters returns all trainable parameters from all modules.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a module to the sequence. A module added after SetTraining
// is switched to the container's current mode.
func (s *Sequential[B]) Add(module Module[B]) {
	if tm, ok := module.(TrainingModule); ok {
		tm.SetTraining(s.training)
	}
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential[B]) Len() int {
	return len(s.modules)
}

// Module returns the module at index.
//
// Panics if index is out of bounds.
func (s *Sequential[B]) Module(index int) Module[B] {
	if index < 0 || index >= len(s.modules) {
		panic("Sequential.Module: index out of bounds")
	}
	return s.modules[index]
}

// StateDict returns parameters keyed by "<module index>.<name>".
func (s *Sequential[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, module := range s.modules {
		for name, raw := range module.StateDict() {
			stateDict[fmt.Sprintf("%d.%s", i, name)] = raw
		}
	}
	return stateDict
}

// LoadStateDict loads parameters keyed by "<module index>.<name>".
func (s *Sequential[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for i, module := range s.modules {
		prefix := fmt.Sprintf("%d.", i)
		moduleStateDict := make(map[string]*tensor.RawTensor)
		for key, raw := range stateDict {
			if name, ok := strings.CutPrefix(key, prefix); ok && name != "" {
				moduleStateDict[name] = raw
			}
		}

		if len(moduleStateDict) == 0 {
			continue
		}
		if err := module.LoadStateDict(moduleStateDict); err != nil {
			return fmt.Errorf("failed to load module %d: %w", i, err)
		}
	}
	return nil
}
