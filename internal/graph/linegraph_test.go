package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relay-ml/relay/internal/backend/cpu"
	"github.com/relay-ml/relay/internal/tensor"
)

func TestLineGraphNodeCount(t *testing.T) {
	g, err := New(4, []Edge{{0, 1}, {1, 2}, {2, 3}, {1, 3}}, cpu.New())
	require.NoError(t, err)

	lg := LineGraph(g, true)
	assert.Equal(t, g.NumEdges(), lg.NumNodes())
}

func TestLineGraphAdjacency(t *testing.T) {
	// Path 0 -> 1 -> 2 plus branch 1 -> 3.
	// Edge 0 = (0,1), edge 1 = (1,2), edge 2 = (1,3).
	g, err := New(4, []Edge{{0, 1}, {1, 2}, {1, 3}}, cpu.New())
	require.NoError(t, err)

	lg := LineGraph(g, true)
	assert.ElementsMatch(t, []Edge{{0, 1}, {0, 2}}, lg.Edges())
}

func TestLineGraphBacktracking(t *testing.T) {
	// Two mutually reverse edges: 0 -> 1 and 1 -> 0.
	g, err := New(2, []Edge{{0, 1}, {1, 0}}, cpu.New())
	require.NoError(t, err)

	with := LineGraph(g, true)
	assert.Equal(t, 2, with.NumNodes())
	assert.ElementsMatch(t, []Edge{{0, 1}, {1, 0}}, with.Edges())

	without := LineGraph(g, false)
	assert.Equal(t, 2, without.NumNodes())
	assert.Equal(t, 0, without.NumEdges())
}

func TestLineGraphSelfLoop(t *testing.T) {
	g, err := New(1, []Edge{{0, 0}}, cpu.New())
	require.NoError(t, err)

	// A self-loop pairs with itself; under the non-backtracking rule
	// that pair reverses itself and is dropped.
	with := LineGraph(g, true)
	assert.Equal(t, []Edge{{0, 0}}, with.Edges())

	without := LineGraph(g, false)
	assert.Equal(t, 0, without.NumEdges())
}

func TestLineGraphParallelEdges(t *testing.T) {
	// Parallel edges 0 -> 1 are distinct line-graph nodes; each pairs with
	// every edge leaving node 1.
	g, err := New(3, []Edge{{0, 1}, {0, 1}, {1, 2}}, cpu.New())
	require.NoError(t, err)

	lg := LineGraph(g, false)
	assert.Equal(t, 3, lg.NumNodes())
	assert.ElementsMatch(t, []Edge{{0, 2}, {1, 2}}, lg.Edges())
}

func TestLineGraphEmpty(t *testing.T) {
	g, err := New(3, nil, cpu.New())
	require.NoError(t, err)

	lg := LineGraph(g, true)
	assert.Equal(t, 0, lg.NumNodes())
	assert.Equal(t, 0, lg.NumEdges())
}

func TestLineGraphFeatureTransfer(t *testing.T) {
	g, err := New(3, []Edge{{0, 1}, {1, 2}}, cpu.New())
	require.NoError(t, err)

	w, err := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(w.AsFloat32(), []float32{1, 2, 3, 4})
	require.NoError(t, g.SetEdgeFeature("w", w))

	lg := LineGraph(g, true)

	// Edge features become node features of the line graph, with the
	// tensor shared rather than copied.
	got, err := lg.NodeFeature("w")
	require.NoError(t, err)
	assert.Same(t, w, got)
}
