package cpu

import (
	"fmt"

	"github.com/masher-ml/masher/internal/parallel"
	"github.com/masher-ml/masher/internal/tensor"
)

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) → (M, N).
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", aShape, bShape))
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("matmul: inner dimensions differ: %v @ %v", aShape, bShape))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]
	result, err := tensor.NewRaw(tensor.Shape{m, n}, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("matmul: %v", err))
	}

	switch a.DType() {
	case tensor.Float32:
		matmulKernel(typed[float32](result), typed[float32](a), typed[float32](b), m, k, n, cpu.parallel)
	case tensor.Float64:
		matmulKernel(typed[float64](result), typed[float64](a), typed[float64](b), m, k, n, cpu.parallel)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}

	return result
}

// matmulKernel uses i-k-j loop order so the inner loop walks rows of b.
func matmulKernel[T ~float32 | ~float64](dst, a, b []T, m, k, n int, cfg parallel.Config) {
	rowCfg := cfg
	rowCfg.MinChunkSize = max(1, cfg.MinChunkSize/max(1, k*n))
	parallel.For(m, func(i int) {
		row := dst[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			aip := a[i*k+p]
			if aip == 0 {
				continue
			}
			bRow := b[p*n : (p+1)*n]
			for j := range row {
				row[j] += aip * bRow[j]
			}
		}
	}, rowCfg)
}
