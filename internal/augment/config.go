package augment

// NoiseConfig configures a masked Gaussian noise layer.
type NoiseConfig struct {
	Stddev    float64 // Standard deviation of the additive noise
	MaskValue float32 // Elements equal to this are left untouched
	Seed      int64   // Generator seed (-1 = random)
}

// DefaultNoiseConfig returns a noise config with stddev 0.1 and mask 0.
func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		Stddev:    0.1,
		MaskValue: 0,
		Seed:      -1,
	}
}

// ContrastConfig configures a masked random contrast layer.
//
// The contrast factor is drawn from [1-Lower, 1+Upper).
type ContrastConfig struct {
	Lower      float64
	Upper      float64
	Layout     Layout
	MaskValue  float32
	Seed       int64
	ValueRange *ValueRange // Optional output clamp
}

// DefaultContrastConfig returns a contrast config with factor 0.2.
func DefaultContrastConfig() ContrastConfig {
	return NewContrastFactor(0.2)
}

// NewContrastFactor returns a default contrast config whose factor range is
// symmetric: [1-f, 1+f).
func NewContrastFactor(f float64) ContrastConfig {
	return ContrastConfig{
		Lower:     f,
		Upper:     f,
		Layout:    LayoutDirect,
		MaskValue: 0,
		Seed:      -1,
	}
}

// BrightnessConfig configures a masked random brightness layer.
type BrightnessConfig struct {
	MaxDelta  float64
	Layout    Layout
	MaskValue float32
	Seed      int64

	// IgnoreTraining applies the offset in inference as well. Older
	// pipelines relied on this; new code should leave it false.
	IgnoreTraining bool
}

// DefaultBrightnessConfig returns a brightness config with max delta 0.1.
func DefaultBrightnessConfig() BrightnessConfig {
	return BrightnessConfig{
		MaxDelta:  0.1,
		Layout:    LayoutDirect,
		MaskValue: 0,
		Seed:      -1,
	}
}

// DropoutConfig configures a masked dropout layer.
type DropoutConfig struct {
	Rate      float64
	MaskValue float32
	Seed      int64
}

// DefaultDropoutConfig returns a dropout config with rate 0.1.
func DefaultDropoutConfig() DropoutConfig {
	return DropoutConfig{
		Rate:      0.1,
		MaskValue: 0,
		Seed:      -1,
	}
}
