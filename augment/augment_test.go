// Copyright 2026 The masher Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package augment_test

import (
	"math/rand"
	"testing"

	"github.com/masher-ml/masher/augment"
	"github.com/masher-ml/masher/backend/cpu"
	"github.com/masher-ml/masher/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicLayers(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{0, 5, 0, 3}, tensor.Shape{1, 4}, backend)
	require.NoError(t, err)

	dropout, err := augment.NewMaskedDropout[*cpu.Backend](augment.DropoutConfig{Rate: 1, Seed: 1})
	require.NoError(t, err)

	assert.Equal(t, []float32{0, 5, 0, 3}, dropout.Forward(x).Data())
	dropout.SetTraining(true)
	assert.Equal(t, []float32{0, 0, 0, 0}, dropout.Forward(x).Data())
}

func TestPublicNewMasked(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{-1, 0.2, 0.4, -1, 0.6, 0.8}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	contrast, err := augment.NewRandomContrast[*cpu.Backend](0.5, 0.5, nil)
	require.NoError(t, err)
	layer, err := augment.NewMasked[*cpu.Backend](contrast, augment.LayoutImage, -1, 3)
	require.NoError(t, err)

	out, err := layer.Apply(x, true, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Equal(t, float32(-1), out.At(0, 0))
	assert.Equal(t, float32(-1), out.At(1, 0))

	_, err = augment.NewGaussianNoise[*cpu.Backend](-1)
	assert.ErrorIs(t, err, augment.ErrInvalidConfig)
}

func TestPublicSelect(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{0, 1, 2}, tensor.Shape{3}, backend)
	require.NoError(t, err)

	out, err := augment.Select(x, tensor.Full[float32](tensor.Shape{3}, 9, backend), 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 9, 9}, out.Data())

	_, err = augment.Select(x, tensor.Full[float32](tensor.Shape{1}, 9, backend), 0)
	assert.ErrorIs(t, err, augment.ErrShapeMismatch)
}
