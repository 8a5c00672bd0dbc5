package cpu

import (
	"fmt"

	"github.com/masher-ml/masher/internal/tensor"
)

// Where selects x where condition is true and y elsewhere.
//
// All three operands broadcast to a common shape:
//
//	condition: [3, 4] (bool)
//	x: [3, 4], y: [3, 4]
//	output: [3, 4] where output[i,j] = condition[i,j] ? x[i,j] : y[i,j]
func (cpu *CPUBackend) Where(condition, x, y *tensor.RawTensor) *tensor.RawTensor {
	if condition.DType() != tensor.Bool {
		panic(fmt.Sprintf("where: condition must be bool, got %s", condition.DType()))
	}
	if x.DType() != y.DType() {
		panic(fmt.Sprintf("where: x and y must have same dtype, got %s and %s", x.DType(), y.DType()))
	}

	shape, _, err := tensor.BroadcastShapes(condition.Shape(), x.Shape())
	if err != nil {
		panic(fmt.Sprintf("where: failed to broadcast condition and x: %v", err))
	}
	outShape, _, err := tensor.BroadcastShapes(shape, y.Shape())
	if err != nil {
		panic(fmt.Sprintf("where: failed to broadcast with y: %v", err))
	}

	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("where: failed to create result tensor: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		whereKernel[float32](result, condition, x, y)
	case tensor.Float64:
		whereKernel[float64](result, condition, x, y)
	case tensor.Int32:
		whereKernel[int32](result, condition, x, y)
	case tensor.Int64:
		whereKernel[int64](result, condition, x, y)
	case tensor.Bool:
		whereKernel[bool](result, condition, x, y)
	default:
		panic(fmt.Sprintf("where: unsupported dtype %s", x.DType()))
	}

	return result
}

func whereKernel[T element](result, condition, x, y *tensor.RawTensor) {
	dst := typed[T](result)
	cond := typed[bool](condition)
	xData, yData := typed[T](x), typed[T](y)
	outShape := result.Shape()
	cShape, xShape, yShape := condition.Shape(), x.Shape(), y.Shape()

	for i := range dst {
		if cond[tensor.BroadcastIndex(i, outShape, cShape)] {
			dst[i] = xData[tensor.BroadcastIndex(i, outShape, xShape)]
		} else {
			dst[i] = yData[tensor.BroadcastIndex(i, outShape, yShape)]
		}
	}
}
