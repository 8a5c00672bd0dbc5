// Copyright 2026 The masher Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/masher-ml/masher/backend/cpu"
	"github.com/masher-ml/masher/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = (*cpu.Backend)(nil)
}

func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	assert.True(t, raw.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, tensor.Float32, raw.DType())
	assert.Equal(t, tensor.CPU, raw.Device())
	assert.Equal(t, 6, raw.NumElements())
	assert.Equal(t, 24, raw.ByteSize())

	clone := raw.Clone()
	clone.AsFloat32()[0] = 1
	assert.Equal(t, float32(0), raw.AsFloat32()[0], "Clone must not share data")
}

func TestPublicCreation(t *testing.T) {
	backend := cpu.New()

	assert.Equal(t, []float32{0, 0, 0, 0}, tensor.Zeros[float32](tensor.Shape{2, 2}, backend).Data())
	assert.Equal(t, []float64{1, 1}, tensor.Ones[float64](tensor.Shape{2}, backend).Data())
	assert.Equal(t, []int32{7, 7, 7}, tensor.Full[int32](tensor.Shape{3}, 7, backend).Data())
	assert.Equal(t, float32(2.5), tensor.Scalar[float32](2.5, backend).Item())

	a := tensor.Randn[float32](tensor.Shape{4, 4}, rand.New(rand.NewSource(1)), backend)
	b := tensor.Randn[float32](tensor.Shape{4, 4}, rand.New(rand.NewSource(1)), backend)
	assert.Equal(t, a.Data(), b.Data())

	for _, v := range tensor.Uniform[float32](tensor.Shape{100}, -2, 2, rand.New(rand.NewSource(2)), backend).Data() {
		assert.GreaterOrEqual(t, v, float32(-2))
		assert.Less(t, v, float32(2))
	}
}

func TestPublicWhere(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{0, -0.4, 0.7, 0}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	y := tensor.Full[float32](tensor.Shape{2, 2}, 9, backend)

	missing := x.Equal(tensor.Scalar[float32](0, backend))
	out := tensor.Where(missing, x, y)

	assert.Equal(t, []float32{0, 9, 9, 0}, out.Data())
}

func TestPublicBroadcastShapes(t *testing.T) {
	shape, broadcast, err := tensor.BroadcastShapes(tensor.Shape{3, 1}, tensor.Shape{3, 4})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 4}, shape)
	assert.True(t, broadcast)

	_, _, err = tensor.BroadcastShapes(tensor.Shape{3}, tensor.Shape{4})
	assert.Error(t, err)
}
