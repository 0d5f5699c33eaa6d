// Copyright 2026 Relay Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu exposes the CPU compute backend.
package cpu

import (
	internalcpu "github.com/relay-ml/relay/internal/backend/cpu"
	"github.com/relay-ml/relay/internal/parallel"
	"github.com/relay-ml/relay/tensor"
)

// Backend represents the CPU backend implementation: pure Go tensor
// operations with chunked parallel loops.
type Backend = internalcpu.CPUBackend

// Config controls the backend's parallel execution behavior.
type Config = parallel.Config

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend with default parallelism settings.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(cfg Config) *Backend {
	return internalcpu.NewWithConfig(cfg)
}
