package augment

import (
	"fmt"
	"math/rand"
	"sync"

	"k8s.io/klog/v2"

	"github.com/masher-ml/masher/internal/nn"
	"github.com/masher-ml/masher/internal/tensor"
)

// Layer is a Masked augmentation usable as an nn.Module.
//
// The layer owns a generator seeded from its config and a training flag
// (false until SetTraining). Forward panics on error, like every other
// module; call Apply directly to get the error instead.
type Layer[B tensor.Backend] struct {
	*Masked[B]

	config any

	mu       sync.Mutex
	rng      *rand.Rand
	training bool
}

// Compile-time checks.
var (
	_ nn.Module[tensor.Backend] = (*Layer[tensor.Backend])(nil)
	_ nn.TrainingModule         = (*Layer[tensor.Backend])(nil)
)

// NewLayer adapts masked to nn.Module with a generator seeded from seed
// (-1 = random). config is what Config returns.
func NewLayer[B tensor.Backend](masked *Masked[B], seed int64, config any) *Layer[B] {
	return &Layer[B]{
		Masked: masked,
		config: config,
		rng:    newGenerator(seed),
	}
}

// NewMaskedGaussianNoise creates a layer adding Gaussian noise to unmasked elements.
func NewMaskedGaussianNoise[B tensor.Backend](cfg NoiseConfig) (*Layer[B], error) {
	t, err := NewGaussianNoise[B](cfg.Stddev)
	if err != nil {
		return nil, err
	}
	return newLayer[B](t, LayoutDirect, cfg.MaskValue, cfg.Seed, cfg)
}

// NewMaskedRandomContrast creates a layer adjusting contrast of unmasked elements.
func NewMaskedRandomContrast[B tensor.Backend](cfg ContrastConfig) (*Layer[B], error) {
	t, err := NewRandomContrast[B](cfg.Lower, cfg.Upper, cfg.ValueRange)
	if err != nil {
		return nil, err
	}
	return newLayer[B](t, cfg.Layout, cfg.MaskValue, cfg.Seed, cfg)
}

// NewMaskedRandomBrightness creates a layer shifting the brightness of
// unmasked elements.
func NewMaskedRandomBrightness[B tensor.Backend](cfg BrightnessConfig) (*Layer[B], error) {
	t, err := NewRandomBrightness[B](cfg.MaxDelta, cfg.IgnoreTraining)
	if err != nil {
		return nil, err
	}
	if cfg.IgnoreTraining {
		klog.Warningf("MaskedRandomBrightness: IgnoreTraining is set, brightness will also change inference inputs")
	}
	return newLayer[B](t, cfg.Layout, cfg.MaskValue, cfg.Seed, cfg)
}

// NewMaskedDropout creates a layer applying dropout to unmasked elements.
func NewMaskedDropout[B tensor.Backend](cfg DropoutConfig) (*Layer[B], error) {
	t, err := NewDropout[B](cfg.Rate)
	if err != nil {
		return nil, err
	}
	return newLayer[B](t, LayoutDirect, cfg.MaskValue, cfg.Seed, cfg)
}

// MustMaskedGaussianNoise is like NewMaskedGaussianNoise but panics on error.
func MustMaskedGaussianNoise[B tensor.Backend](cfg NoiseConfig) *Layer[B] {
	return must[B](NewMaskedGaussianNoise[B](cfg))
}

// MustMaskedRandomContrast is like NewMaskedRandomContrast but panics on error.
func MustMaskedRandomContrast[B tensor.Backend](cfg ContrastConfig) *Layer[B] {
	return must[B](NewMaskedRandomContrast[B](cfg))
}

// MustMaskedRandomBrightness is like NewMaskedRandomBrightness but panics on error.
func MustMaskedRandomBrightness[B tensor.Backend](cfg BrightnessConfig) *Layer[B] {
	return must[B](NewMaskedRandomBrightness[B](cfg))
}

// MustMaskedDropout is like NewMaskedDropout but panics on error.
func MustMaskedDropout[B tensor.Backend](cfg DropoutConfig) *Layer[B] {
	return must[B](NewMaskedDropout[B](cfg))
}

func newLayer[B tensor.Backend](t Transform[B], layout Layout, maskValue float32, seed int64, config any) (*Layer[B], error) {
	masked, err := NewMasked[B](t, layout, maskValue)
	if err != nil {
		return nil, err
	}
	return NewLayer(masked, seed, config), nil
}

func must[B tensor.Backend](l *Layer[B], err error) *Layer[B] {
	if err != nil {
		panic(err)
	}
	return l
}

// newGenerator returns a generator for seed, or a randomly seeded one for
// negative seeds.
func newGenerator(seed int64) *rand.Rand {
	if seed < 0 {
		seed = rand.Int63() //nolint:gosec // G404: augmentation noise, not security
	}
	return rand.New(rand.NewSource(seed)) //nolint:gosec // G404: augmentation noise, not security
}

// Forward applies the layer with its own generator and training flag.
//
// Panics if the input shape is not supported by the layer.
func (l *Layer[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	l.mu.Lock()
	training := l.training
	out, err := l.Apply(input, training, l.rng)
	l.mu.Unlock()

	if err != nil {
		panic(fmt.Errorf("augment: %s forward: %w", l.Transform().Name(), err))
	}
	if v := klog.V(2); v.Enabled() {
		v.InfoS("augmented batch", "layer", l.Transform().Name(), "shape", input.Shape().String(), "training", training)
	}
	return out
}

// SetTraining switches the layer into or out of training mode.
func (l *Layer[B]) SetTraining(training bool) {
	l.mu.Lock()
	l.training = training
	l.mu.Unlock()
}

// Training reports whether the layer is in training mode.
func (l *Layer[B]) Training() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.training
}

// Config returns the config the layer was built from.
func (l *Layer[B]) Config() any {
	return l.config
}

// Parameters returns nil; augmentation layers have no trainable parameters.
func (l *Layer[B]) Parameters() []*nn.Parameter[B] {
	return nil
}

// StateDict returns an empty state dictionary.
func (l *Layer[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict accepts only an empty state dictionary.
func (l *Layer[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if len(stateDict) != 0 {
		return fmt.Errorf("augment: %s has no parameters, got %d entries", l.Transform().Name(), len(stateDict))
	}
	return nil
}
