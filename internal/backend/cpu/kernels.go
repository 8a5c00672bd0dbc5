package cpu

import (
	"github.com/masher-ml/masher/internal/parallel"
	"github.com/masher-ml/masher/internal/tensor"
)

type number interface {
	~float32 | ~float64 | ~int32 | ~int64
}

type element interface {
	number | ~bool
}

type binaryOp int

const (
	opAdd binaryOp = iota
	opSub
	opMul
	opDiv
)

func (op binaryOp) String() string {
	switch op {
	case opAdd:
		return "add"
	case opSub:
		return "sub"
	case opMul:
		return "mul"
	case opDiv:
		return "div"
	default:
		return "unknown"
	}
}

func applyBinary[T number](op binaryOp, x, y T) T {
	switch op {
	case opAdd:
		return x + y
	case opSub:
		return x - y
	case opMul:
		return x * y
	default:
		return x / y
	}
}

// typed returns the data of r as []T. The caller guarantees T matches r.DType().
func typed[T element](r *tensor.RawTensor) []T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(r.AsFloat32()).([]T)
	case float64:
		return any(r.AsFloat64()).([]T)
	case int32:
		return any(r.AsInt32()).([]T)
	case int64:
		return any(r.AsInt64()).([]T)
	case bool:
		return any(r.AsBool()).([]T)
	default:
		panic("unsupported element type")
	}
}

func binaryKernel[T number](op binaryOp, result, a, b *tensor.RawTensor, cfg parallel.Config) {
	dst := typed[T](result)
	aData, bData := typed[T](a), typed[T](b)
	outShape, aShape, bShape := result.Shape(), a.Shape(), b.Shape()

	if aShape.Equal(bShape) {
		parallel.ForRange(len(dst), func(start, end int) {
			for i := start; i < end; i++ {
				dst[i] = applyBinary(op, aData[i], bData[i])
			}
		}, cfg)
		return
	}

	parallel.ForRange(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			ai := tensor.BroadcastIndex(i, outShape, aShape)
			bi := tensor.BroadcastIndex(i, outShape, bShape)
			dst[i] = applyBinary(op, aData[ai], bData[bi])
		}
	}, cfg)
}

func transposeKernel[T element](result, src *tensor.RawTensor, axes []int) {
	dst := typed[T](result)
	data := typed[T](src)
	srcStrides := src.Strides()
	outShape := result.Shape()
	ndim := len(outShape)

	coord := make([]int, ndim)
	for i := range dst {
		rem := i
		for d := ndim - 1; d >= 0; d-- {
			coord[d] = rem % outShape[d]
			rem /= outShape[d]
		}
		off := 0
		for d, ax := range axes {
			off += coord[d] * srcStrides[ax]
		}
		dst[i] = data[off]
	}
}

// scalarAs converts a scalar argument to T.
func scalarAs[T number](s any) T {
	switch v := s.(type) {
	case float32:
		return T(v)
	case float64:
		return T(v)
	case int:
		return T(v)
	case int32:
		return T(v)
	case int64:
		return T(v)
	default:
		panic("unsupported scalar type")
	}
}
