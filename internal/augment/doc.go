// Package augment implements masked data-augmentation layers.
//
// Each layer wraps a stochastic transform (Gaussian noise, random contrast,
// random brightness, dropout) and applies it only to elements that differ
// from a mask sentinel. Elements equal to the sentinel pass through
// unchanged, which keeps "missing" readings (for example an access point that
// was not heard in a Wi-Fi fingerprint, stored as 0) out of the augmentation.
//
// The pieces compose rather than inherit:
//   - Transform: the unmasked operation, with an explicit *rand.Rand per call
//   - Layout: how the input reaches the transform (as-is, or as an image)
//   - Masked: Transform + Layout + mask value, with the element-wise select
//   - Layer: Masked adapted to nn.Module, owning a seeded generator and a
//     training flag
//
// Example:
//
//	cfg := augment.DefaultNoiseConfig()
//	cfg.Stddev = 0.05
//	noise, err := augment.NewMaskedGaussianNoise[*cpu.CPUBackend](cfg)
//	if err != nil {
//	    return err
//	}
//	noise.SetTraining(true)
//	out := noise.Forward(batch)
package augment
