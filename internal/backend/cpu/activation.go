package cpu

import (
	"fmt"

	"github.com/masher-ml/masher/internal/parallel"
	"github.com/masher-ml/masher/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("relu: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		reluKernel(typed[float32](result), typed[float32](x), cpu.parallel)
	case tensor.Float64:
		reluKernel(typed[float64](result), typed[float64](x), cpu.parallel)
	default:
		panic(fmt.Sprintf("relu: unsupported dtype %s", x.DType()))
	}

	return result
}

func reluKernel[T ~float32 | ~float64](dst, src []T, cfg parallel.Config) {
	parallel.ForRange(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = max(src[i], 0)
		}
	}, cfg)
}
