// Copyright 2026 Relay Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for graph neural network layers
// built on the message-passing executor. Layers are forward-only;
// differentiation is the responsibility of an external engine.
package nn

import (
	internalnn "github.com/relay-ml/relay/internal/nn"
	"github.com/relay-ml/relay/tensor"
)

// Module is the base interface for graph neural network layers.
type Module[B tensor.Backend] = internalnn.Module[B]

// Parameter is a named weight tensor belonging to a module.
type Parameter[B tensor.Backend] = internalnn.Parameter[B]

// Linear is a fully connected transform: y = x @ W.T + b.
type Linear[B tensor.Backend] = internalnn.Linear[B]

// GCN is a graph convolution layer with explicit symmetric degree
// normalization.
type GCN[B tensor.Backend] = internalnn.GCN[B]

// GAT is a single-head additive graph attention layer.
type GAT[B tensor.Backend] = internalnn.GAT[B]

// NewParameter creates a named parameter wrapping the given tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return internalnn.NewParameter(name, t)
}

// NewLinear creates a fully connected transform with Xavier-initialized
// weights and zero biases.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return internalnn.NewLinear(inFeatures, outFeatures, backend)
}

// NewGCN creates a graph convolution layer.
func NewGCN[B tensor.Backend](inFeatures, outFeatures int, backend B) *GCN[B] {
	return internalnn.NewGCN(inFeatures, outFeatures, backend)
}

// NewGAT creates a single-head graph attention layer.
func NewGAT[B tensor.Backend](inFeatures, outFeatures int, backend B) *GAT[B] {
	return internalnn.NewGAT(inFeatures, outFeatures, backend)
}

// Xavier creates a tensor initialized with Xavier/Glorot uniform values.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, b B) *tensor.Tensor[float32, B] {
	return internalnn.Xavier(fanIn, fanOut, shape, b)
}
