package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relay-ml/relay/internal/backend/cpu"
	"github.com/relay-ml/relay/internal/tensor"
)

func float32Feature(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

func TestNewGraph(t *testing.T) {
	g, err := New(4, []Edge{{0, 1}, {1, 2}, {2, 3}, {0, 3}}, cpu.New())
	require.NoError(t, err)

	assert.Equal(t, 4, g.NumNodes())
	assert.Equal(t, 4, g.NumEdges())
	assert.Equal(t, Edge{1, 2}, g.Edge(1))
	assert.Equal(t, []int{0, 1, 2, 0}, g.Srcs())
	assert.Equal(t, []int{1, 2, 3, 3}, g.Dsts())
}

func TestNewGraphEmpty(t *testing.T) {
	g, err := New(0, nil, cpu.New())
	require.NoError(t, err)
	assert.Equal(t, 0, g.NumNodes())
	assert.Equal(t, 0, g.NumEdges())
}

func TestNewGraphInvalidEndpoint(t *testing.T) {
	_, err := New(2, []Edge{{0, 2}}, cpu.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTopology)

	_, err = New(2, []Edge{{-1, 0}}, cpu.New())
	assert.ErrorIs(t, err, ErrInvalidTopology)

	_, err = New(-1, nil, cpu.New())
	assert.ErrorIs(t, err, ErrInvalidTopology)
}

func TestDegrees(t *testing.T) {
	// Parallel edges and a self-loop both count once per edge.
	g, err := New(3, []Edge{{0, 1}, {0, 1}, {1, 1}, {2, 1}}, cpu.New())
	require.NoError(t, err)

	assert.Equal(t, 0, g.InDegree(0))
	assert.Equal(t, 4, g.InDegree(1))
	assert.Equal(t, 0, g.InDegree(2))
	assert.Equal(t, 2, g.OutDegree(0))
	assert.Equal(t, 1, g.OutDegree(1))
	assert.Equal(t, 1, g.OutDegree(2))
}

func TestInEdgesOrder(t *testing.T) {
	g, err := New(3, []Edge{{1, 2}, {0, 2}, {0, 1}}, cpu.New())
	require.NoError(t, err)

	// Incoming edge IDs are ascending regardless of source order.
	assert.Equal(t, []int{0, 1}, g.InEdges(2))
	assert.Equal(t, []int{2}, g.InEdges(1))
	assert.Empty(t, g.InEdges(0))
}

func TestNodeFeatures(t *testing.T) {
	g, err := New(3, []Edge{{0, 1}}, cpu.New())
	require.NoError(t, err)

	h := float32Feature(t, []float32{1, 2, 3}, tensor.Shape{3, 1})
	require.NoError(t, g.SetNodeFeature("h", h))

	got, err := g.NodeFeature("h")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, got.AsFloat32())

	// Reads do not consume or mutate the entry.
	again, err := g.NodeFeature("h")
	require.NoError(t, err)
	assert.Same(t, got, again)
}

func TestNodeFeatureShapeMismatch(t *testing.T) {
	g, err := New(3, nil, cpu.New())
	require.NoError(t, err)

	bad := float32Feature(t, []float32{1, 2}, tensor.Shape{2, 1})
	err = g.SetNodeFeature("h", bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestEdgeFeatures(t *testing.T) {
	g, err := New(3, []Edge{{0, 1}, {1, 2}}, cpu.New())
	require.NoError(t, err)

	w := float32Feature(t, []float32{0.5, 0.7}, tensor.Shape{2, 1})
	require.NoError(t, g.SetEdgeFeature("w", w))

	got, err := g.EdgeFeature("w")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.7}, got.AsFloat32())

	err = g.SetEdgeFeature("w", float32Feature(t, []float32{1}, tensor.Shape{1, 1}))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFeatureKeyNotFound(t *testing.T) {
	g, err := New(1, nil, cpu.New())
	require.NoError(t, err)

	_, err = g.NodeFeature("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.True(t, errors.Is(err, ErrKeyNotFound))
}

func TestFrameReplaceAndPop(t *testing.T) {
	g, err := New(2, nil, cpu.New())
	require.NoError(t, err)

	first := float32Feature(t, []float32{1, 2}, tensor.Shape{2})
	second := float32Feature(t, []float32{3, 4}, tensor.Shape{2})
	require.NoError(t, g.SetNodeFeature("h", first))
	require.NoError(t, g.SetNodeFeature("h", second))

	got, err := g.NodeFrame().Pop("h")
	require.NoError(t, err)
	assert.Same(t, second, got)

	assert.False(t, g.NodeFrame().Has("h"))
	_, err = g.NodeFrame().Pop("h")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFrameKeysSorted(t *testing.T) {
	g, err := New(1, nil, cpu.New())
	require.NoError(t, err)

	for _, k := range []string{"z", "a", "m"} {
		require.NoError(t, g.SetNodeFeature(k, float32Feature(t, []float32{0}, tensor.Shape{1})))
	}
	assert.Equal(t, []string{"a", "m", "z"}, g.NodeFrame().Keys())
}

func TestZeroRowFeatures(t *testing.T) {
	// Graphs with no edges still accept (empty) edge features.
	g, err := New(2, nil, cpu.New())
	require.NoError(t, err)

	empty := float32Feature(t, nil, tensor.Shape{0, 4})
	require.NoError(t, g.SetEdgeFeature("w", empty))

	got, err := g.EdgeFeature("w")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Shape().Leading())
}
