// Package pipeline builds a sequence of masked augmentation layers from a
// YAML description.
//
// Example file:
//
//	seed: 42
//	layers:
//	  - type: noise
//	    stddev: 0.1
//	  - type: contrast
//	    factor: 0.2
//	    layout: image
//	  - type: dropout
//	    rate: 0.1
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/masher-ml/masher/internal/augment"
	"github.com/masher-ml/masher/internal/nn"
	"github.com/masher-ml/masher/internal/tensor"
)

// Layer types accepted in the "type" field.
const (
	TypeNoise      = "noise"
	TypeContrast   = "contrast"
	TypeBrightness = "brightness"
	TypeDropout    = "dropout"
)

// ErrUnknownLayer is returned for a layer type that is not one of the Type constants.
var ErrUnknownLayer = errors.New("unknown layer type")

// Spec is a parsed pipeline file.
type Spec struct {
	// Seed is the base seed; layer i uses Seed+i unless it sets its own.
	// Absent or negative means every layer is seeded randomly.
	Seed   *int64      `yaml:"seed,omitempty"`
	Layers []LayerSpec `yaml:"layers"`
}

// LayerSpec describes one layer. Fields that do not apply to Type must be
// left unset; unset fields take the augment package defaults.
type LayerSpec struct {
	Type      string  `yaml:"type"`
	MaskValue float32 `yaml:"mask_value,omitempty"`
	Seed      *int64  `yaml:"seed,omitempty"`
	Layout    string  `yaml:"layout,omitempty"`

	// noise
	Stddev *float64 `yaml:"stddev,omitempty"`

	// contrast
	Factor     *float64            `yaml:"factor,omitempty"`
	Lower      *float64            `yaml:"lower,omitempty"`
	Upper      *float64            `yaml:"upper,omitempty"`
	ValueRange *augment.ValueRange `yaml:"value_range,omitempty"`

	// brightness
	MaxDelta       *float64 `yaml:"max_delta,omitempty"`
	IgnoreTraining bool     `yaml:"ignore_training,omitempty"`

	// dropout
	Rate *float64 `yaml:"rate,omitempty"`
}

// Parse decodes a pipeline from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Spec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var spec Spec
	if err := dec.Decode(&spec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("pipeline: empty document")
		}
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Load reads and parses a pipeline file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return Parse(data)
}

// Marshal encodes spec as YAML.
func Marshal(spec *Spec) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(spec); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks layer types, layouts and that every field set on a layer
// applies to its type. Value ranges are checked when the layers are built.
func (s *Spec) Validate() error {
	if len(s.Layers) == 0 {
		return errors.New("pipeline: no layers")
	}
	if s.Seed != nil && *s.Seed > math.MaxInt64-int64(len(s.Layers)-1) {
		return fmt.Errorf("pipeline: %w: seed %d overflows across %d layers", augment.ErrInvalidConfig, *s.Seed, len(s.Layers))
	}
	for i, l := range s.Layers {
		if err := l.validate(); err != nil {
			return fmt.Errorf("pipeline: layer %d: %w", i, err)
		}
	}
	return nil
}

func (l LayerSpec) validate() error {
	if _, err := augment.ParseLayout(l.Layout); err != nil {
		return err
	}

	var foreign []string
	check := func(set bool, field string, allowed ...string) {
		if !set {
			return
		}
		for _, a := range allowed {
			if a == l.Type {
				return
			}
		}
		foreign = append(foreign, field)
	}
	check(l.Stddev != nil, "stddev", TypeNoise)
	check(l.Factor != nil, "factor", TypeContrast)
	check(l.Lower != nil, "lower", TypeContrast)
	check(l.Upper != nil, "upper", TypeContrast)
	check(l.ValueRange != nil, "value_range", TypeContrast)
	check(l.MaxDelta != nil, "max_delta", TypeBrightness)
	check(l.IgnoreTraining, "ignore_training", TypeBrightness)
	check(l.Rate != nil, "rate", TypeDropout)
	check(l.Layout != "", "layout", TypeContrast, TypeBrightness)

	switch l.Type {
	case TypeNoise, TypeContrast, TypeBrightness, TypeDropout:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLayer, l.Type)
	}
	if l.Factor != nil && (l.Lower != nil || l.Upper != nil) {
		return fmt.Errorf("%w: factor cannot be combined with lower/upper", augment.ErrInvalidConfig)
	}
	if len(foreign) > 0 {
		return fmt.Errorf("%w: %s not valid for %s", augment.ErrInvalidConfig, strings.Join(foreign, ", "), l.Type)
	}
	return nil
}

// LayerSeed returns the seed for layer index.
func (s *Spec) LayerSeed(index int) int64 {
	if seed := s.Layers[index].Seed; seed != nil {
		return *seed
	}
	if s.Seed == nil || *s.Seed < 0 {
		return -1
	}
	return *s.Seed + int64(index)
}

// Build creates the layers described by spec, in order. The backend only
// fixes the tensor type the sequence operates on.
//
// The returned sequence is in inference mode; call SetTraining(true) to
// augment.
func Build[B tensor.Backend](spec *Spec, _ B) (*nn.Sequential[B], error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	model := nn.NewSequential[B]()
	for i, l := range spec.Layers {
		layer, err := buildLayer[B](l, spec.LayerSeed(i))
		if err != nil {
			return nil, fmt.Errorf("pipeline: layer %d (%s): %w", i, l.Type, err)
		}
		model.Add(layer)
	}
	return model, nil
}

func buildLayer[B tensor.Backend](l LayerSpec, seed int64) (*augment.Layer[B], error) {
	layout, err := augment.ParseLayout(l.Layout)
	if err != nil {
		return nil, err
	}

	switch l.Type {
	case TypeNoise:
		cfg := augment.DefaultNoiseConfig()
		setFloat(&cfg.Stddev, l.Stddev)
		cfg.MaskValue, cfg.Seed = l.MaskValue, seed
		return augment.NewMaskedGaussianNoise[B](cfg)

	case TypeContrast:
		cfg := augment.DefaultContrastConfig()
		if l.Factor != nil {
			cfg = augment.NewContrastFactor(*l.Factor)
		}
		setFloat(&cfg.Lower, l.Lower)
		setFloat(&cfg.Upper, l.Upper)
		cfg.ValueRange = l.ValueRange
		cfg.Layout, cfg.MaskValue, cfg.Seed = layout, l.MaskValue, seed
		return augment.NewMaskedRandomContrast[B](cfg)

	case TypeBrightness:
		cfg := augment.DefaultBrightnessConfig()
		setFloat(&cfg.MaxDelta, l.MaxDelta)
		cfg.IgnoreTraining = l.IgnoreTraining
		cfg.Layout, cfg.MaskValue, cfg.Seed = layout, l.MaskValue, seed
		return augment.NewMaskedRandomBrightness[B](cfg)

	case TypeDropout:
		cfg := augment.DefaultDropoutConfig()
		setFloat(&cfg.Rate, l.Rate)
		cfg.MaskValue, cfg.Seed = l.MaskValue, seed
		return augment.NewMaskedDropout[B](cfg)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, l.Type)
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
