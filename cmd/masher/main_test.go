package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/masher-ml/masher/internal/augment"
	"github.com/masher-ml/masher/internal/backend/cpu"
	"github.com/masher-ml/masher/internal/dataset"
	"github.com/masher-ml/masher/internal/nn"
	"github.com/masher-ml/masher/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPipeline = `seed: 3
layers:
  - type: noise
    stddev: 0.2
  - type: dropout
    rate: 0.3
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunAugment(t *testing.T) {
	dir := t.TempDir()
	pipelinePath := writeFile(t, dir, "pipeline.yaml", testPipeline)
	in := writeFile(t, dir, "in.csv", "WAP1,WAP2,WAP3\n0,0.5,-0.2\n0.3,0,0\n")
	out := filepath.Join(dir, "out.csv")

	err := run(context.Background(), []string{
		"augment", "-pipeline", pipelinePath, "-in", in, "-out", out, "-repeat", "3", "-keep-original",
	})
	require.NoError(t, err)

	m, err := dataset.Read(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, []string{"WAP1", "WAP2", "WAP3"}, m.Header)
	assert.Equal(t, 8, m.Rows)
	assert.Equal(t, []float32{0, 0.5, -0.2, 0.3, 0, 0}, m.Data[:6])

	for copyIdx := 1; copyIdx < 4; copyIdx++ {
		first := m.Row(copyIdx * 2)
		second := m.Row(copyIdx*2 + 1)
		assert.Equal(t, float32(0), first[0])
		assert.Equal(t, float32(0), second[1])
		assert.Equal(t, float32(0), second[2])
	}
}

func TestRunAugment_Inference(t *testing.T) {
	dir := t.TempDir()
	pipelinePath := writeFile(t, dir, "pipeline.yaml", testPipeline)
	in := writeFile(t, dir, "in.csv", "0,0.5\n0.25,0\n")
	out := filepath.Join(dir, "out.csv")

	require.NoError(t, run(context.Background(), []string{
		"augment", "-pipeline", pipelinePath, "-in", in, "-out", out, "-training=false",
	}))

	m, err := dataset.Read(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0.5, 0.25, 0}, m.Data)
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, run(ctx, nil))
	assert.Error(t, run(ctx, []string{"train"}))
	assert.NoError(t, run(ctx, []string{"version"}))
	assert.Error(t, run(ctx, []string{"augment", "-in", "x.csv"}))
	assert.Error(t, run(ctx, []string{"augment", "-pipeline", "p", "-in", "i", "-out", "o", "-repeat", "0"}))
}

func TestForward_RecoversPanic(t *testing.T) {
	layer := augment.MustMaskedRandomContrast[*cpu.CPUBackend](augment.DefaultContrastConfig())
	layer.SetTraining(true)
	x := tensor.Zeros[float32](tensor.Shape{2, 3}, cpu.New())

	_, err := forward[*cpu.CPUBackend](nn.NewSequential[*cpu.CPUBackend](layer), x)
	assert.ErrorIs(t, err, augment.ErrShape)
}
