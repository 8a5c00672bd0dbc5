// Copyright 2026 The masher Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensors for masher.
//
// # Overview
//
// Tensors carry fingerprint batches through augmentation layers and models:
//   - Generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcasting for element-wise operations
//   - Random creation from an explicit *rand.Rand, so results are
//     reproducible from a seed
//
// # Basic Usage
//
//	backend := cpu.New()
//	rng := rand.New(rand.NewSource(42))
//
//	x, err := tensor.FromSlice([]float32{0, -0.4, 0.7, 0}, tensor.Shape{2, 2}, backend)
//	if err != nil {
//	    return err
//	}
//	noise := tensor.Randn[float32](x.Shape(), rng, backend)
//	y := x.Add(noise.MulScalar(0.1))
//
// # Masks
//
// Comparisons return bool tensors that feed Where:
//
//	missing := x.Equal(tensor.Scalar[float32](0, backend))
//	out := tensor.Where(missing, x, y) // keep missing readings as they were
package tensor
