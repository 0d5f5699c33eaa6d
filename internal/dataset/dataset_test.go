package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relay-ml/relay/internal/backend/cpu"
	"github.com/relay-ml/relay/internal/graph"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, ManifestFile, `
name = "tiny"
num_nodes = 3
edge_file = "edges.txt"

[[node_features]]
key = "h"
file = "h.txt"
shape = [3, 2]

[[edge_features]]
key = "w"
file = "w.txt"
shape = [2, 1]
`)
	writeFile(t, dir, "edges.txt", `
# src dst
0 1
1 2
`)
	writeFile(t, dir, "h.txt", "1 2\n3 4\n5 6\n")
	writeFile(t, dir, "w.txt", "0.5 0.25\n")
	return dir
}

func TestReadManifest(t *testing.T) {
	dir := writeDataset(t)

	m, err := ReadManifest(dir)
	require.NoError(t, err)

	assert.Equal(t, "tiny", m.Name)
	assert.Equal(t, 3, m.NumNodes)
	assert.Equal(t, "edges.txt", m.EdgeFile)
	require.Len(t, m.NodeFeatures, 1)
	assert.Equal(t, "h", m.NodeFeatures[0].Key)
	assert.Equal(t, []int{3, 2}, m.NodeFeatures[0].Shape)
}

func TestReadManifestMissing(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	assert.Error(t, err)
}

func TestReadManifestInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ManifestFile, `
name = "broken"
num_nodes = 3
`)
	_, err := ReadManifest(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edge file")
}

func TestLoad(t *testing.T) {
	dir := writeDataset(t)

	g, err := Load(dir, cpu.New())
	require.NoError(t, err)

	assert.Equal(t, 3, g.NumNodes())
	assert.Equal(t, 2, g.NumEdges())
	assert.Equal(t, graph.Edge{Src: 0, Dst: 1}, g.Edge(0))

	h, err := g.NodeFeature("h")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, h.AsFloat32())

	w, err := g.EdgeFeature("w")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, w.AsFloat32())
}

func TestLoadBadEdgeEndpoint(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ManifestFile, `
name = "bad"
num_nodes = 2
edge_file = "edges.txt"
`)
	writeFile(t, dir, "edges.txt", "0 5\n")

	_, err := Load(dir, cpu.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrInvalidTopology)
}

func TestLoadBadFeatureLength(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ManifestFile, `
name = "bad"
num_nodes = 2
edge_file = "edges.txt"

[[node_features]]
key = "h"
file = "h.txt"
shape = [2, 2]
`)
	writeFile(t, dir, "edges.txt", "0 1\n")
	writeFile(t, dir, "h.txt", "1 2 3\n")

	_, err := Load(dir, cpu.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 values")
}

func TestLoadMalformedEdgeLine(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ManifestFile, `
name = "bad"
num_nodes = 2
edge_file = "edges.txt"
`)
	writeFile(t, dir, "edges.txt", "0 1 2\n")

	_, err := Load(dir, cpu.New())
	assert.Error(t, err)
}

func TestKarateClub(t *testing.T) {
	g, err := KarateClub(cpu.New())
	require.NoError(t, err)

	assert.Equal(t, 34, g.NumNodes())
	assert.Equal(t, 156, g.NumEdges())

	// Every tie is stored in both directions, so in-degree equals
	// out-degree everywhere.
	for v := 0; v < g.NumNodes(); v++ {
		assert.Equal(t, g.OutDegree(v), g.InDegree(v), "node %d", v)
	}

	// The two club leaders are the highest-degree nodes.
	assert.Equal(t, 16, g.InDegree(0))
	assert.Equal(t, 17, g.InDegree(33))

	labels, err := g.NodeFeature(KarateLabelKey)
	require.NoError(t, err)
	data := labels.AsInt64()
	assert.Equal(t, int64(0), data[0])
	assert.Equal(t, int64(1), data[33])

	officers := 0
	for _, l := range data {
		officers += int(l)
	}
	assert.Equal(t, 17, officers)
}
