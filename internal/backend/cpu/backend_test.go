package cpu

import (
	"testing"

	"github.com/masher-ml/masher/internal/parallel"
	"github.com/masher-ml/masher/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), data)
	return r
}

func TestCPUBackend_Metadata(t *testing.T) {
	b := New()
	assert.Equal(t, "CPU", b.Name())
	assert.Equal(t, tensor.CPU, b.Device())
}

func TestCPUBackend_AddSameShape(t *testing.T) {
	b := New()
	x := raw32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	y := raw32(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2})

	out := b.Add(x, y)

	assert.Equal(t, []float32{11, 22, 33, 44}, out.AsFloat32())
	assert.Equal(t, []float32{1, 2, 3, 4}, x.AsFloat32(), "inputs must not be modified")
}

func TestCPUBackend_Broadcast(t *testing.T) {
	b := New()
	x := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	col := raw32(t, []float32{10, 100}, tensor.Shape{2, 1})
	scalar := raw32(t, []float32{2}, tensor.Shape{})

	sum := b.Add(x, col)
	assert.True(t, sum.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, []float32{11, 12, 13, 104, 105, 106}, sum.AsFloat32())

	prod := b.Mul(x, scalar)
	assert.Equal(t, []float32{2, 4, 6, 8, 10, 12}, prod.AsFloat32())

	diff := b.Sub(col, x)
	assert.Equal(t, []float32{9, 8, 7, 96, 95, 94}, diff.AsFloat32())

	quot := b.Div(x, scalar)
	assert.Equal(t, []float32{0.5, 1, 1.5, 2, 2.5, 3}, quot.AsFloat32())
}

func TestCPUBackend_BroadcastIncompatiblePanics(t *testing.T) {
	b := New()
	x := raw32(t, make([]float32, 6), tensor.Shape{2, 3})
	y := raw32(t, make([]float32, 4), tensor.Shape{2, 2})

	assert.Panics(t, func() { b.Add(x, y) })
}

func TestCPUBackend_ParallelMatchesSequential(t *testing.T) {
	n := 10_000
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i)
	}
	x := raw32(t, data, tensor.Shape{100, 100})
	y := raw32(t, data, tensor.Shape{100, 100})

	par := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 16})
	seq := NewWithConfig(parallel.Sequential())

	assert.Equal(t, seq.Mul(x, y).AsFloat32(), par.Mul(x, y).AsFloat32())
}

func TestCPUBackend_Scalar(t *testing.T) {
	b := New()
	x := raw32(t, []float32{1, -2, 3}, tensor.Shape{3})

	assert.Equal(t, []float32{2, -4, 6}, b.MulScalar(x, float32(2)).AsFloat32())
	assert.Equal(t, []float32{1.5, -1.5, 3.5}, b.AddScalar(x, 0.5).AsFloat32())
}

func TestCPUBackend_Clamp(t *testing.T) {
	b := New()
	x := raw32(t, []float32{-5, 0.5, 300}, tensor.Shape{3})

	assert.Equal(t, []float32{0, 0.5, 255}, b.Clamp(x, float32(0), float32(255)).AsFloat32())
	assert.Panics(t, func() { b.Clamp(x, float32(1), float32(0)) })
}

func TestCPUBackend_EqualExact(t *testing.T) {
	b := New()
	x := raw32(t, []float32{0, 1e-7, -0.0, 5}, tensor.Shape{4})
	zero := raw32(t, []float32{0}, tensor.Shape{})

	eq := b.Equal(x, zero)
	assert.Equal(t, tensor.Bool, eq.DType())
	assert.Equal(t, []bool{true, false, true, false}, eq.AsBool())

	ne := b.NotEqual(x, zero)
	assert.Equal(t, []bool{false, true, false, true}, ne.AsBool())
}

func TestCPUBackend_Where(t *testing.T) {
	b := New()
	cond, err := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Bool, tensor.CPU)
	require.NoError(t, err)
	copy(cond.AsBool(), []bool{true, false, false, true})

	x := raw32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	y := raw32(t, []float32{-1, -2, -3, -4}, tensor.Shape{2, 2})

	out := b.Where(cond, x, y)
	assert.Equal(t, []float32{1, -2, -3, 4}, out.AsFloat32())
}

func TestCPUBackend_WhereRejectsNonBoolCondition(t *testing.T) {
	b := New()
	x := raw32(t, []float32{1, 2}, tensor.Shape{2})
	assert.Panics(t, func() { b.Where(x, x, x) })
}

func TestCPUBackend_Reshape(t *testing.T) {
	b := New()
	x := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	img := b.Reshape(x, tensor.Shape{2, 1, 3, 1})
	assert.True(t, img.Shape().Equal(tensor.Shape{2, 1, 3, 1}))
	assert.Equal(t, x.AsFloat32(), img.AsFloat32())

	img.AsFloat32()[0] = 99
	assert.Equal(t, float32(1), x.AsFloat32()[0], "reshape must copy")

	assert.Panics(t, func() { b.Reshape(x, tensor.Shape{4, 2}) })
}

func TestCPUBackend_Transpose(t *testing.T) {
	b := New()
	x := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := b.Transpose(x)
	assert.True(t, out.Shape().Equal(tensor.Shape{3, 2}))
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, out.AsFloat32())

	assert.Panics(t, func() { b.Transpose(x, 0, 0) })
}

func TestCPUBackend_MatMul(t *testing.T) {
	b := New()
	x := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	w := raw32(t, []float32{1, 0, 0, 1, 1, 1}, tensor.Shape{3, 2})

	out := b.MatMul(x, w)
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 2}))
	assert.Equal(t, []float32{4, 5, 10, 11}, out.AsFloat32())

	assert.Panics(t, func() { b.MatMul(x, x) })
}

func TestCPUBackend_MeanDim(t *testing.T) {
	b := New()
	x := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	rows := b.MeanDim(x, 1, true)
	assert.True(t, rows.Shape().Equal(tensor.Shape{2, 1}))
	assert.InDeltaSlice(t, []float32{2, 5}, rows.AsFloat32(), 1e-6)

	cols := b.MeanDim(x, -2, false)
	assert.True(t, cols.Shape().Equal(tensor.Shape{3}))
	assert.InDeltaSlice(t, []float32{2.5, 3.5, 4.5}, cols.AsFloat32(), 1e-6)
}

func TestCPUBackend_ReLU(t *testing.T) {
	b := New()
	x := raw32(t, []float32{-1, 0, 2}, tensor.Shape{3})
	assert.Equal(t, []float32{0, 0, 2}, b.ReLU(x).AsFloat32())
}
