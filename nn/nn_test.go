// Copyright 2026 The masher Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"math/rand"
	"testing"

	"github.com/masher-ml/masher/augment"
	"github.com/masher-ml/masher/backend/cpu"
	"github.com/masher-ml/masher/nn"
	"github.com/masher-ml/masher/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleInterface(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(0))

	tests := []struct {
		name       string
		module     nn.Module[*cpu.Backend]
		wantParams int
	}{
		{"Linear", nn.NewLinear(10, 5, rng, backend), 2},
		{"ReLU", nn.NewReLU[*cpu.Backend](), 0},
		{"MaskedDropout", augment.MustMaskedDropout[*cpu.Backend](augment.DefaultDropoutConfig()), 0},
		{"Sequential", nn.NewSequential[*cpu.Backend](
			augment.MustMaskedGaussianNoise[*cpu.Backend](augment.DefaultNoiseConfig()),
			nn.NewLinear(10, 5, rng, backend),
			nn.NewReLU[*cpu.Backend](),
		), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tensor.Randn[float32](tensor.Shape{2, 10}, rng, backend)
			out := tt.module.Forward(input)
			assert.Equal(t, 2, out.Shape()[0])

			assert.Len(t, tt.module.Parameters(), tt.wantParams)
			assert.Len(t, tt.module.StateDict(), tt.wantParams)
		})
	}
}

func TestSequentialStateDictRoundTrip(t *testing.T) {
	backend := cpu.New()
	build := func(seed int64) *nn.Sequential[*cpu.Backend] {
		rng := rand.New(rand.NewSource(seed))
		return nn.NewSequential[*cpu.Backend](
			augment.MustMaskedDropout[*cpu.Backend](augment.DefaultDropoutConfig()),
			nn.NewLinear(4, 3, rng, backend),
		)
	}

	src, dst := build(1), build(2)
	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	x := tensor.Ones[float32](tensor.Shape{1, 4}, backend)
	assert.Equal(t, src.Forward(x).Data(), dst.Forward(x).Data())
}
