package pipeline_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/masher-ml/masher/internal/augment"
	"github.com/masher-ml/masher/internal/backend/cpu"
	"github.com/masher-ml/masher/internal/pipeline"
	"github.com/masher-ml/masher/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend = *cpu.CPUBackend

const fullPipeline = `
seed: 42
layers:
  - type: noise
    stddev: 0.05
  - type: contrast
    factor: 0.3
    layout: image
    value_range: {min: -1, max: 1}
  - type: brightness
    max_delta: 0.2
    layout: image
    mask_value: -1
    seed: 7
  - type: dropout
    rate: 0.25
`

func TestParse(t *testing.T) {
	spec, err := pipeline.Parse([]byte(fullPipeline))
	require.NoError(t, err)

	require.NotNil(t, spec.Seed)
	assert.Equal(t, int64(42), *spec.Seed)
	require.Len(t, spec.Layers, 4)
	assert.Equal(t, pipeline.TypeContrast, spec.Layers[1].Type)
	assert.InDelta(t, 0.3, *spec.Layers[1].Factor, 1e-12)
	assert.Equal(t, &augment.ValueRange{Min: -1, Max: 1}, spec.Layers[1].ValueRange)
	assert.Equal(t, float32(-1), spec.Layers[2].MaskValue)

	assert.Equal(t, int64(42), spec.LayerSeed(0))
	assert.Equal(t, int64(43), spec.LayerSeed(1))
	assert.Equal(t, int64(7), spec.LayerSeed(2))
	assert.Equal(t, int64(45), spec.LayerSeed(3))
}

func TestParse_NoSeedMeansRandom(t *testing.T) {
	spec, err := pipeline.Parse([]byte("layers:\n  - type: noise\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), spec.LayerSeed(0))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"unknown type", "layers:\n  - type: blur\n", pipeline.ErrUnknownLayer},
		{"foreign field", "layers:\n  - type: noise\n    rate: 0.2\n", augment.ErrInvalidConfig},
		{"layout on noise", "layers:\n  - type: noise\n    layout: image\n", augment.ErrInvalidConfig},
		{"bad layout", "layers:\n  - type: contrast\n    layout: diagonal\n", augment.ErrInvalidConfig},
		{"factor with bounds", "layers:\n  - type: contrast\n    factor: 0.1\n    lower: 0.2\n", augment.ErrInvalidConfig},
		{"seed overflow", "seed: 9223372036854775807\nlayers:\n  - type: noise\n  - type: dropout\n", augment.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pipeline.Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	for _, doc := range []string{"", "seed: 1\n", "layers:\n  - type: noise\n    sigma: 1\n", "layers: [\n"} {
		_, err := pipeline.Parse([]byte(doc))
		assert.Error(t, err, "document %q", doc)
	}
}

func TestParse_LargestSeed(t *testing.T) {
	spec, err := pipeline.Parse([]byte("seed: 9223372036854775806\nlayers:\n  - type: noise\n  - type: dropout\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), spec.LayerSeed(1))
}

func TestBuild(t *testing.T) {
	spec, err := pipeline.Parse([]byte(fullPipeline))
	require.NoError(t, err)

	model, err := pipeline.Build(spec, cpu.New())
	require.NoError(t, err)
	require.Equal(t, 4, model.Len())
	assert.False(t, model.Training())

	names := make([]string, 0, model.Len())
	for i := range model.Len() {
		layer, ok := model.Module(i).(*augment.Layer[backend])
		require.True(t, ok)
		names = append(names, layer.Transform().Name())
	}
	assert.Equal(t, []string{"GaussianNoise", "RandomContrast", "RandomBrightness", "Dropout"}, names)

	contrast := model.Module(1).(*augment.Layer[backend])
	cfg, ok := contrast.Config().(augment.ContrastConfig)
	require.True(t, ok)
	assert.InDelta(t, 0.3, cfg.Lower, 1e-12)
	assert.InDelta(t, 0.3, cfg.Upper, 1e-12)
	assert.Equal(t, augment.LayoutImage, cfg.Layout)
	assert.Equal(t, int64(43), cfg.Seed)
}

func TestBuild_InvalidValues(t *testing.T) {
	spec, err := pipeline.Parse([]byte("layers:\n  - type: dropout\n    rate: 1.5\n"))
	require.NoError(t, err)

	_, err = pipeline.Build(spec, cpu.New())
	assert.ErrorIs(t, err, augment.ErrInvalidConfig)
}

func TestBuild_Deterministic(t *testing.T) {
	spec, err := pipeline.Parse([]byte(fullPipeline))
	require.NoError(t, err)

	x, err := tensor.FromSlice([]float32{
		0, 0.4, -0.2, 0, 0.9, 0.1,
		0.3, 0, 0, -0.7, 0.2, 0,
	}, tensor.Shape{2, 6}, cpu.New())
	require.NoError(t, err)

	run := func() []float32 {
		model, err := pipeline.Build(spec, cpu.New())
		require.NoError(t, err)
		model.SetTraining(true)
		return model.Forward(x).Data()
	}

	first := run()
	assert.Equal(t, first, run())
	assert.NotEqual(t, x.Data(), first)
}

func TestLoadAndMarshal(t *testing.T) {
	spec, err := pipeline.Parse([]byte(fullPipeline))
	require.NoError(t, err)

	data, err := pipeline.Marshal(spec)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := pipeline.Load(path)
	require.NoError(t, err)
	assert.Equal(t, spec, loaded)

	_, err = pipeline.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
