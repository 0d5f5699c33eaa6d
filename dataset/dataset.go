// Copyright 2026 Relay Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dataset provides the public API for loading graphs from
// manifest-described dataset directories and for built-in study graphs.
package dataset

import (
	"github.com/relay-ml/relay/internal/dataset"
	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/tensor"
)

// Manifest is the TOML dataset descriptor.
type Manifest = dataset.Manifest

// FeatureSpec describes one on-disk feature file.
type FeatureSpec = dataset.FeatureSpec

// ManifestFile is the expected manifest name inside a dataset directory.
const ManifestFile = dataset.ManifestFile

// KarateLabelKey is the ground-truth community feature of the karate
// club graph.
const KarateLabelKey = dataset.KarateLabelKey

// Load reads the dataset in dir and materializes it as a graph bound to
// the given backend.
func Load[B tensor.Backend](dir string, backend B) (*graph.Graph[B], error) {
	return dataset.Load(dir, backend)
}

// ReadManifest parses and validates the manifest of a dataset directory.
func ReadManifest(dir string) (*Manifest, error) {
	return dataset.ReadManifest(dir)
}

// KarateClub builds Zachary's karate club graph with ground-truth
// communities under KarateLabelKey.
func KarateClub[B tensor.Backend](backend B) (*graph.Graph[B], error) {
	return dataset.KarateClub(backend)
}
