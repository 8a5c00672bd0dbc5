package cpu

import (
	"fmt"

	"github.com/masher-ml/masher/internal/parallel"
	"github.com/masher-ml/masher/internal/tensor"
)

// MulScalar multiplies every element of x by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.scalar("mulScalar", opMul, x, scalar)
}

// AddScalar adds scalar to every element of x.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.scalar("addScalar", opAdd, x, scalar)
}

func (cpu *CPUBackend) scalar(name string, op binaryOp, x *tensor.RawTensor, s any) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		scalarKernel(op, typed[float32](result), typed[float32](x), scalarAs[float32](s), cpu.parallel)
	case tensor.Float64:
		scalarKernel(op, typed[float64](result), typed[float64](x), scalarAs[float64](s), cpu.parallel)
	case tensor.Int32:
		scalarKernel(op, typed[int32](result), typed[int32](x), scalarAs[int32](s), cpu.parallel)
	case tensor.Int64:
		scalarKernel(op, typed[int64](result), typed[int64](x), scalarAs[int64](s), cpu.parallel)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return result
}

func scalarKernel[T number](op binaryOp, dst, src []T, s T, cfg parallel.Config) {
	parallel.ForRange(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = applyBinary(op, src[i], s)
		}
	}, cfg)
}

// Clamp limits every element of x to [lo, hi].
func (cpu *CPUBackend) Clamp(x *tensor.RawTensor, lo, hi any) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("clamp: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		clampKernel(typed[float32](result), typed[float32](x), scalarAs[float32](lo), scalarAs[float32](hi))
	case tensor.Float64:
		clampKernel(typed[float64](result), typed[float64](x), scalarAs[float64](lo), scalarAs[float64](hi))
	case tensor.Int32:
		clampKernel(typed[int32](result), typed[int32](x), scalarAs[int32](lo), scalarAs[int32](hi))
	case tensor.Int64:
		clampKernel(typed[int64](result), typed[int64](x), scalarAs[int64](lo), scalarAs[int64](hi))
	default:
		panic(fmt.Sprintf("clamp: unsupported dtype %s", x.DType()))
	}

	return result
}

func clampKernel[T number](dst, src []T, lo, hi T) {
	if lo > hi {
		panic(fmt.Sprintf("clamp: lower bound %v greater than upper bound %v", lo, hi))
	}
	for i, v := range src {
		dst[i] = min(max(v, lo), hi)
	}
}
