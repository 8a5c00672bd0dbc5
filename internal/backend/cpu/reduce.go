package cpu

import (
	"fmt"

	"github.com/masher-ml/masher/internal/tensor"
)

// MeanDim averages x along dim.
//
// Parameters:
//   - dim: dimension to reduce (negative values count from the end)
//   - keepDim: keep the reduced dimension with size 1
//
// Example:
//
//	x: [2, 3, 4]
//	MeanDim(x, 1, true)  → [2, 1, 4]
//	MeanDim(x, -1, false) → [2, 3]
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("meandim: dimension %d out of range for %dD tensor", dim, ndim))
	}

	outShape := shape.Clone()
	outShape[dim] = 1
	if !keepDim {
		outShape = append(outShape[:dim:dim], shape[dim+1:]...)
	}

	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("meandim: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		meanDimKernel(typed[float32](result), typed[float32](x), shape, dim)
	case tensor.Float64:
		meanDimKernel(typed[float64](result), typed[float64](x), shape, dim)
	default:
		panic(fmt.Sprintf("meandim: unsupported dtype %s", x.DType()))
	}

	return result
}

func meanDimKernel[T ~float32 | ~float64](dst, src []T, shape tensor.Shape, dim int) {
	outer := 1
	for _, d := range shape[:dim] {
		outer *= d
	}
	inner := 1
	for _, d := range shape[dim+1:] {
		inner *= d
	}
	size := shape[dim]

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			var sum float64
			for k := 0; k < size; k++ {
				sum += float64(src[(o*size+k)*inner+in])
			}
			dst[o*inner+in] = T(sum / float64(size))
		}
	}
}
