package cpu

import (
	"fmt"

	"github.com/masher-ml/masher/internal/tensor"
)

// Equal returns a == b element-wise as a bool tensor.
//
// Floating point values are compared exactly, so NaN never equals anything.
func (cpu *CPUBackend) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.compare("equal", true, a, b)
}

// NotEqual returns a != b element-wise as a bool tensor.
func (cpu *CPUBackend) NotEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.compare("notEqual", false, a, b)
}

func (cpu *CPUBackend) compare(name string, want bool, a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, tensor.Bool, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch a.DType() {
	case tensor.Float32:
		equalKernel[float32](want, result, a, b)
	case tensor.Float64:
		equalKernel[float64](want, result, a, b)
	case tensor.Int32:
		equalKernel[int32](want, result, a, b)
	case tensor.Int64:
		equalKernel[int64](want, result, a, b)
	case tensor.Bool:
		equalKernel[bool](want, result, a, b)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}

	return result
}

func equalKernel[T element](want bool, result, a, b *tensor.RawTensor) {
	dst := typed[bool](result)
	aData, bData := typed[T](a), typed[T](b)
	outShape, aShape, bShape := result.Shape(), a.Shape(), b.Shape()
	same := aShape.Equal(bShape)

	for i := range dst {
		ai, bi := i, i
		if !same {
			ai = tensor.BroadcastIndex(i, outShape, aShape)
			bi = tensor.BroadcastIndex(i, outShape, bShape)
		}
		dst[i] = (aData[ai] == bData[bi]) == want
	}
}
