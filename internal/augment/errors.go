package augment

import "errors"

// Errors returned by layer construction and application.
var (
	ErrInvalidConfig = errors.New("invalid augmentation config")
	ErrShape         = errors.New("unsupported input shape")
	ErrShapeMismatch = errors.New("transformed shape does not match input shape")
	ErrNilGenerator  = errors.New("random generator is nil")
)
