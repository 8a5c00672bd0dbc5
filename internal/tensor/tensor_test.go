package tensor_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/masher-ml/masher/internal/backend/cpu"
	"github.com/masher-ml/masher/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	s := tensor.Shape{2, 3, 4}
	assert.Equal(t, 24, s.NumElements())
	assert.Equal(t, []int{12, 4, 1}, s.ComputeStrides())
	assert.Equal(t, "(2, 3, 4)", s.String())
	assert.True(t, s.Equal(s.Clone()))
	assert.False(t, s.Equal(tensor.Shape{2, 3}))

	assert.Equal(t, 1, tensor.Shape{}.NumElements())
	assert.NoError(t, tensor.Shape{}.Validate())
	assert.Error(t, tensor.Shape{2, 0}.Validate())
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      tensor.Shape
		want      tensor.Shape
		broadcast bool
		wantErr   bool
	}{
		{"same", tensor.Shape{3, 5}, tensor.Shape{3, 5}, tensor.Shape{3, 5}, false, false},
		{"column", tensor.Shape{3, 1}, tensor.Shape{3, 5}, tensor.Shape{3, 5}, true, false},
		{"scalar", tensor.Shape{}, tensor.Shape{2, 2}, tensor.Shape{2, 2}, true, false},
		{"rank", tensor.Shape{4, 1, 1, 3}, tensor.Shape{4, 5, 6, 3}, tensor.Shape{4, 5, 6, 3}, true, false},
		{"incompatible", tensor.Shape{3, 4}, tensor.Shape{3, 5}, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, broadcast, err := tensor.BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			assert.Equal(t, tt.broadcast, broadcast)
		})
	}
}

func TestBroadcastIndex(t *testing.T) {
	out := tensor.Shape{2, 3}

	// Row vector [1, 3] repeats across rows.
	assert.Equal(t, 2, tensor.BroadcastIndex(5, out, tensor.Shape{1, 3}))
	// Column vector [2, 1] repeats across columns.
	assert.Equal(t, 1, tensor.BroadcastIndex(4, out, tensor.Shape{2, 1}))
	// Scalar always maps to 0.
	assert.Equal(t, 0, tensor.BroadcastIndex(5, out, tensor.Shape{}))
	// Trailing vector [3].
	assert.Equal(t, 1, tensor.BroadcastIndex(4, out, tensor.Shape{3}))
}

func TestFromSlice(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, x.DType())
	assert.Equal(t, float32(6), x.At(1, 2))

	x.Set(42, 0, 1)
	assert.Equal(t, float32(42), x.Data()[1])

	_, err = tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 3}, backend)
	assert.Error(t, err)

	assert.Panics(t, func() { x.At(2, 0) })
}

func TestCreation(t *testing.T) {
	backend := cpu.New()

	assert.Equal(t, []float32{0, 0}, tensor.Zeros[float32](tensor.Shape{2}, backend).Data())
	assert.Equal(t, []float64{1, 1}, tensor.Ones[float64](tensor.Shape{2}, backend).Data())
	assert.Equal(t, []bool{true}, tensor.Ones[bool](tensor.Shape{1}, backend).Data())
	assert.Equal(t, []int32{7, 7, 7}, tensor.Full[int32](tensor.Shape{3}, 7, backend).Data())

	s := tensor.Scalar[float32](3, backend)
	assert.Empty(t, s.Shape())
	assert.Equal(t, float32(3), s.Item())
}

func TestRandn_SeedDeterministic(t *testing.T) {
	backend := cpu.New()

	a := tensor.Randn[float32](tensor.Shape{5, 7}, rand.New(rand.NewSource(1)), backend)
	b := tensor.Randn[float32](tensor.Shape{5, 7}, rand.New(rand.NewSource(1)), backend)
	c := tensor.Randn[float32](tensor.Shape{5, 7}, rand.New(rand.NewSource(2)), backend)

	assert.Equal(t, a.Data(), b.Data())
	assert.NotEqual(t, a.Data(), c.Data())
}

func TestRandn_Moments(t *testing.T) {
	backend := cpu.New()
	x := tensor.Randn[float64](tensor.Shape{20000}, rand.New(rand.NewSource(7)), backend)

	var sum, sumSq float64
	for _, v := range x.Data() {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		sum += v
		sumSq += v * v
	}
	n := float64(x.NumElements())
	mean := sum / n
	variance := sumSq/n - mean*mean

	assert.InDelta(t, 0, mean, 0.05)
	assert.InDelta(t, 1, variance, 0.05)
}

func TestUniform_Range(t *testing.T) {
	backend := cpu.New()
	x := tensor.Uniform[float32](tensor.Shape{1000}, -0.5, 0.5, rand.New(rand.NewSource(3)), backend)
	for _, v := range x.Data() {
		assert.GreaterOrEqual(t, v, float32(-0.5))
		assert.Less(t, v, float32(0.5))
	}

	r := tensor.Rand[float64](tensor.Shape{100}, rand.New(rand.NewSource(3)), backend)
	for _, v := range r.Data() {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestTensorOps(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{0, 5, 0, 3}, tensor.Shape{1, 4}, backend)
	require.NoError(t, err)

	mask := x.Equal(tensor.Scalar[float32](0, backend))
	assert.Equal(t, []bool{true, false, true, false}, mask.Data())
	assert.Equal(t, []bool{false, true, false, true}, x.NotEqual(tensor.Scalar[float32](0, backend)).Data())

	doubled := x.MulScalar(2).AddScalar(1)
	assert.Equal(t, []float32{1, 11, 1, 7}, doubled.Data())

	sel := tensor.Where(mask, x, doubled)
	assert.Equal(t, []float32{0, 11, 0, 7}, sel.Data())

	img := x.Reshape(1, 1, 4, 1)
	assert.True(t, img.Shape().Equal(tensor.Shape{1, 1, 4, 1}))
	assert.Equal(t, x.Data(), img.Data())

	assert.Equal(t, []float32{0, 3, 0, 3}, x.Clamp(0, 3).Data())
	assert.InDeltaSlice(t, []float32{2}, x.MeanDim(1, false).Data(), 1e-6)

	clone := x.Clone()
	clone.Data()[0] = 9
	assert.Equal(t, float32(0), x.Data()[0])
}
