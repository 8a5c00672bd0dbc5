// Copyright 2026 The masher Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package augment provides masked data-augmentation layers.
//
// Each layer applies a stochastic transform (Gaussian noise, random
// contrast, random brightness, dropout) to every element except those equal
// to a mask value, so missing readings stay exactly as they were. Layers
// implement nn.Module and are a no-op until SetTraining(true).
//
// Example:
//
//	cfg := augment.DefaultNoiseConfig()
//	cfg.Stddev = 0.05
//	cfg.Seed = 42
//	noise, err := augment.NewMaskedGaussianNoise[*cpu.Backend](cfg)
//	if err != nil {
//	    return err
//	}
//	noise.SetTraining(true)
//	out := noise.Forward(batch)
//
// Apply takes the training flag and generator explicitly, for callers that
// manage their own randomness:
//
//	out, err := noise.Apply(batch, true, rand.New(rand.NewSource(seed)))
package augment

import (
	"github.com/masher-ml/masher/internal/augment"
	"github.com/masher-ml/masher/internal/tensor"
)

// Errors returned by layer construction and application.
var (
	ErrInvalidConfig = augment.ErrInvalidConfig
	ErrShape         = augment.ErrShape
	ErrShapeMismatch = augment.ErrShapeMismatch
	ErrNilGenerator  = augment.ErrNilGenerator
)

// Transform is an unmasked augmentation.
type Transform[B tensor.Backend] = augment.Transform[B]

// Masked applies a Transform everywhere except at mask-valued elements.
type Masked[B tensor.Backend] = augment.Masked[B]

// Layer is a Masked augmentation usable as an nn.Module.
type Layer[B tensor.Backend] = augment.Layer[B]

// Layout selects how an input reaches a Transform.
type Layout = augment.Layout

// Layouts.
const (
	LayoutDirect = augment.LayoutDirect
	LayoutImage  = augment.LayoutImage
)

// ParseLayout parses "direct" or "image".
func ParseLayout(s string) (Layout, error) {
	return augment.ParseLayout(s)
}

// Layer configs.
type (
	NoiseConfig      = augment.NoiseConfig
	ContrastConfig   = augment.ContrastConfig
	BrightnessConfig = augment.BrightnessConfig
	DropoutConfig    = augment.DropoutConfig
	ValueRange       = augment.ValueRange
)

// DefaultNoiseConfig returns a noise config with stddev 0.1.
func DefaultNoiseConfig() NoiseConfig { return augment.DefaultNoiseConfig() }

// DefaultContrastConfig returns a contrast config with factor 0.2.
func DefaultContrastConfig() ContrastConfig { return augment.DefaultContrastConfig() }

// NewContrastFactor returns a contrast config with factor range [1-f, 1+f).
func NewContrastFactor(f float64) ContrastConfig { return augment.NewContrastFactor(f) }

// DefaultBrightnessConfig returns a brightness config with max delta 0.1.
func DefaultBrightnessConfig() BrightnessConfig { return augment.DefaultBrightnessConfig() }

// DefaultDropoutConfig returns a dropout config with rate 0.1.
func DefaultDropoutConfig() DropoutConfig { return augment.DefaultDropoutConfig() }

// NewMaskedGaussianNoise creates a masked Gaussian noise layer.
func NewMaskedGaussianNoise[B tensor.Backend](cfg NoiseConfig) (*Layer[B], error) {
	return augment.NewMaskedGaussianNoise[B](cfg)
}

// NewMaskedRandomContrast creates a masked random contrast layer.
func NewMaskedRandomContrast[B tensor.Backend](cfg ContrastConfig) (*Layer[B], error) {
	return augment.NewMaskedRandomContrast[B](cfg)
}

// NewMaskedRandomBrightness creates a masked random brightness layer.
func NewMaskedRandomBrightness[B tensor.Backend](cfg BrightnessConfig) (*Layer[B], error) {
	return augment.NewMaskedRandomBrightness[B](cfg)
}

// NewMaskedDropout creates a masked dropout layer.
func NewMaskedDropout[B tensor.Backend](cfg DropoutConfig) (*Layer[B], error) {
	return augment.NewMaskedDropout[B](cfg)
}

// MustMaskedGaussianNoise is like NewMaskedGaussianNoise but panics on error.
func MustMaskedGaussianNoise[B tensor.Backend](cfg NoiseConfig) *Layer[B] {
	return augment.MustMaskedGaussianNoise[B](cfg)
}

// MustMaskedRandomContrast is like NewMaskedRandomContrast but panics on error.
func MustMaskedRandomContrast[B tensor.Backend](cfg ContrastConfig) *Layer[B] {
	return augment.MustMaskedRandomContrast[B](cfg)
}

// MustMaskedRandomBrightness is like NewMaskedRandomBrightness but panics on error.
func MustMaskedRandomBrightness[B tensor.Backend](cfg BrightnessConfig) *Layer[B] {
	return augment.MustMaskedRandomBrightness[B](cfg)
}

// MustMaskedDropout is like NewMaskedDropout but panics on error.
func MustMaskedDropout[B tensor.Backend](cfg DropoutConfig) *Layer[B] {
	return augment.MustMaskedDropout[B](cfg)
}

// NewMasked wraps any Transform with a layout and mask value and adapts it
// to nn.Module with a generator seeded from seed (-1 = random).
func NewMasked[B tensor.Backend](t Transform[B], layout Layout, maskValue float32, seed int64) (*Layer[B], error) {
	masked, err := augment.NewMasked[B](t, layout, maskValue)
	if err != nil {
		return nil, err
	}
	return augment.NewLayer(masked, seed, nil), nil
}

// NewGaussianNoise creates an unmasked Gaussian noise transform.
func NewGaussianNoise[B tensor.Backend](stddev float64) (Transform[B], error) {
	t, err := augment.NewGaussianNoise[B](stddev)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// NewRandomContrast creates an unmasked random contrast transform.
func NewRandomContrast[B tensor.Backend](lower, upper float64, valueRange *ValueRange) (Transform[B], error) {
	t, err := augment.NewRandomContrast[B](lower, upper, valueRange)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// NewRandomBrightness creates an unmasked random brightness transform.
func NewRandomBrightness[B tensor.Backend](maxDelta float64, ignoreTraining bool) (Transform[B], error) {
	t, err := augment.NewRandomBrightness[B](maxDelta, ignoreTraining)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// NewDropout creates an unmasked dropout transform.
func NewDropout[B tensor.Backend](rate float64) (Transform[B], error) {
	t, err := augment.NewDropout[B](rate)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Select keeps x where it equals maskValue and takes transformed elsewhere.
func Select[B tensor.Backend](x, transformed *tensor.Tensor[float32, B], maskValue float32) (*tensor.Tensor[float32, B], error) {
	return augment.Select(x, transformed, maskValue)
}
