// Copyright 2026 The masher Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
//
// Element-wise kernels split large tensors across goroutines. Random sampling
// never happens here; it happens in tensor creation from a caller-supplied
// generator, so splitting work does not affect reproducibility.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
package cpu

import (
	internalcpu "github.com/masher-ml/masher/internal/backend/cpu"
	"github.com/masher-ml/masher/internal/parallel"
	"github.com/masher-ml/masher/tensor"
)

// Backend is the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// ParallelConfig controls how kernels split work across goroutines.
type ParallelConfig = parallel.Config

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend with the default parallel configuration.
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with a custom parallel configuration.
//
// Example:
//
//	backend := cpu.NewWithConfig(cpu.SequentialConfig())
func NewWithConfig(cfg ParallelConfig) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultParallelConfig returns the configuration New uses.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// SequentialConfig returns a configuration that runs every kernel on the
// calling goroutine.
func SequentialConfig() ParallelConfig {
	return parallel.Sequential()
}
