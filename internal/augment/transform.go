package augment

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/masher-ml/masher/internal/tensor"
)

// Transform is an unmasked augmentation.
//
// Transform returns a new tensor of the same shape as x and must not modify
// x. When training is false, transforms that only augment during training
// return a copy of x. Random draws come only from rng.
type Transform[B tensor.Backend] interface {
	Name() string
	Transform(x *tensor.Tensor[float32, B], training bool, rng *rand.Rand) (*tensor.Tensor[float32, B], error)
}

// Layout selects how an input tensor is handed to a Transform.
type Layout int

const (
	// LayoutDirect passes the input unchanged.
	LayoutDirect Layout = iota

	// LayoutImage treats a flat [batch, features] input as a batch of
	// single-row, single-channel images [batch, 1, features, 1], for
	// transforms that are only defined over images.
	LayoutImage
)

// String returns the layout name used in pipeline files.
func (l Layout) String() string {
	switch l {
	case LayoutDirect:
		return "direct"
	case LayoutImage:
		return "image"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout parses "direct" or "image". The empty string means direct.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "direct":
		return LayoutDirect, nil
	case "image":
		return LayoutImage, nil
	default:
		return 0, fmt.Errorf("%w: unknown layout %q", ErrInvalidConfig, s)
	}
}

func (l Layout) valid() bool {
	return l == LayoutDirect || l == LayoutImage
}
