// Package dataset loads graphs from manifest-described directories: a
// TOML manifest naming an edge-list file and optional feature files.
// Loading is the only I/O surface of the framework; the compute core
// never touches the filesystem.
package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/internal/tensor"
)

// Load reads the dataset in dir and materializes it as a graph bound to
// the given backend. Edge and feature files are loaded concurrently; any
// failure aborts the load.
func Load[B tensor.Backend](dir string, backend B) (*graph.Graph[B], error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	var (
		edges     []graph.Edge
		nodeFeats = make([]*tensor.RawTensor, len(m.NodeFeatures))
		edgeFeats = make([]*tensor.RawTensor, len(m.EdgeFeatures))
		bytesRead int64
	)

	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		var n int64
		edges, n, err = readEdgeList(filepath.Join(dir, m.EdgeFile))
		bytesRead += n
		return err
	})
	for i, spec := range m.NodeFeatures {
		eg.Go(func() error {
			var err error
			nodeFeats[i], err = readFeature(dir, spec, backend.Device())
			return err
		})
	}
	for i, spec := range m.EdgeFeatures {
		eg.Go(func() error {
			var err error
			edgeFeats[i], err = readFeature(dir, spec, backend.Device())
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("loading dataset %q: %w", m.Name, err)
	}

	g, err := graph.New(m.NumNodes, edges, backend)
	if err != nil {
		return nil, fmt.Errorf("loading dataset %q: %w", m.Name, err)
	}
	for i, spec := range m.NodeFeatures {
		if err := g.SetNodeFeature(spec.Key, nodeFeats[i]); err != nil {
			return nil, fmt.Errorf("loading dataset %q: %w", m.Name, err)
		}
	}
	for i, spec := range m.EdgeFeatures {
		if err := g.SetEdgeFeature(spec.Key, edgeFeats[i]); err != nil {
			return nil, fmt.Errorf("loading dataset %q: %w", m.Name, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"dataset": m.Name,
		"nodes":   g.NumNodes(),
		"edges":   g.NumEdges(),
		"read":    humanize.Bytes(uint64(bytesRead)),
	}).Info("dataset loaded")

	return g, nil
}

// readEdgeList parses a text file with one "src dst" pair per line.
// Blank lines and lines starting with '#' are skipped.
func readEdgeList(path string) ([]graph.Edge, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, err
	}

	var edges []graph.Edge
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, 0, fmt.Errorf("%s:%d: expected \"src dst\", got %q", path, lineNo, line)
		}
		src, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, 0, fmt.Errorf("%s:%d: bad source %q: %w", path, lineNo, fields[0], err)
		}
		dst, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, 0, fmt.Errorf("%s:%d: bad destination %q: %w", path, lineNo, fields[1], err)
		}
		edges = append(edges, graph.Edge{Src: src, Dst: dst})
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return edges, info.Size(), nil
}

// readFeature parses a whitespace-separated float32 file into a tensor of
// the declared shape.
func readFeature(dir string, spec FeatureSpec, device tensor.Device) (*tensor.RawTensor, error) {
	path := filepath.Join(dir, spec.File)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	shape := tensor.Shape(spec.Shape)
	t, err := tensor.NewRaw(shape, tensor.Float32, device)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	fields := strings.Fields(string(raw))
	if len(fields) != shape.NumElements() {
		return nil, fmt.Errorf("%s: feature %q has %d values, shape %v needs %d",
			path, spec.Key, len(fields), shape, shape.NumElements())
	}
	data := t.AsFloat32()
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return nil, fmt.Errorf("%s: bad value %q at index %d: %w", path, field, i, err)
		}
		data[i] = float32(v)
	}
	return t, nil
}
