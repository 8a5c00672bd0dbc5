package tensor

// Backend defines the operations a compute backend provides to tensors.
//
// Every method returns a newly allocated RawTensor and never modifies its
// arguments. Misuse (incompatible shapes, unsupported dtypes) panics with an
// "op: detail" message; callers that need recoverable errors validate first.
type Backend interface {
	// Element-wise binary operations with NumPy broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations.
	MatMul(a, b *RawTensor) *RawTensor // 2D (M, K) @ (K, N)

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Scalar operations.
	MulScalar(x *RawTensor, scalar any) *RawTensor
	AddScalar(x *RawTensor, scalar any) *RawTensor

	// Comparison operations (return bool tensors).
	Equal(a, b *RawTensor) *RawTensor
	NotEqual(a, b *RawTensor) *RawTensor

	// Selection.
	Where(condition, x, y *RawTensor) *RawTensor // condition ? x : y

	// Reductions.
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Clamp limits every element to [lo, hi].
	Clamp(x *RawTensor, lo, hi any) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
