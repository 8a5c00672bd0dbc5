// Copyright 2026 The masher Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the module contract, sequential composition and the
// dense layers that consume augmented batches.
//
// Example:
//
//	backend := cpu.New()
//	rng := rand.New(rand.NewSource(1))
//	model := nn.NewSequential[*cpu.Backend](
//	    augment.MustMaskedGaussianNoise[*cpu.Backend](augment.DefaultNoiseConfig()),
//	    nn.NewLinear(520, 64, rng, backend),
//	    nn.NewReLU[*cpu.Backend](),
//	)
//	model.SetTraining(true)
//	out := model.Forward(batch)
package nn

import (
	"math/rand"

	"github.com/masher-ml/masher/internal/nn"
	"github.com/masher-ml/masher/internal/tensor"
)

// Module is the interface every layer implements.
type Module[B tensor.Backend] = nn.Module[B]

// TrainingModule is implemented by modules that behave differently in
// training and inference.
type TrainingModule = nn.TrainingModule

// Parameter is a named trainable tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Sequential chains modules and propagates training mode to them.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Linear is a fully connected layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a linear layer with Xavier-initialised weights drawn
// from rng and zero bias.
//
// Example:
//
//	layer := nn.NewLinear(520, 128, rand.New(rand.NewSource(0)), backend)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, rng *rand.Rand, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, rng, backend)
}

// ReLU applies max(0, x).
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Xavier returns a Xavier/Glorot uniform initialised tensor.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, rng, backend)
}
