package propagate

import (
	"fmt"

	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/internal/tensor"
)

// EdgeSoftmax normalizes the edge feature inKey over each destination
// node's incoming edges and stores the result as edge feature outKey:
//
//	out[e] = exp(in[e] - max_v) / sum over edges entering dst(e)
//
// where the shift by the per-destination maximum keeps the exponentials
// finite. This is the normalization step of attention layers and of
// coupling-coefficient routing; it is deliberately not built into the
// executor, which never normalizes implicitly.
func EdgeSoftmax[B tensor.Backend](g *graph.Graph[B], inKey, outKey string) error {
	scores, err := g.EdgeFeature(inKey)
	if err != nil {
		return err
	}
	if g.NumEdges() == 0 {
		return g.SetEdgeFeature(outKey, scores.Clone())
	}

	backend := g.Backend()
	targets := make([]int, g.NumNodes())
	for i := range targets {
		targets[i] = i
	}
	buckets := bucketByInDegree(g, targets, func(e int) int { return e })

	rowShape := scores.Shape().RowShape()
	newPerNode := func() *tensor.RawTensor {
		t, err := tensor.NewRaw(append(tensor.Shape{g.NumNodes()}, rowShape...), scores.DType(), backend.Device())
		if err != nil {
			panic(fmt.Sprintf("edge softmax allocation: %v", err))
		}
		return t
	}

	groupReduce := func(in *tensor.RawTensor, dimReduce func(*tensor.RawTensor, int, bool) *tensor.RawTensor) *tensor.RawTensor {
		perNode := newPerNode()
		for _, bk := range buckets {
			mb := backend.Reshape(backend.TakeRows(in, bk.flat),
				append(tensor.Shape{len(bk.nodes), bk.degree}, rowShape...))
			backend.ScatterRows(perNode, bk.nodes, dimReduce(mb, 1, false))
		}
		return perNode
	}

	maxPerNode := groupReduce(scores, backend.MaxDim)
	shifted := backend.Sub(scores, backend.TakeRows(maxPerNode, g.Dsts()))
	expd := backend.Exp(shifted)
	sumPerNode := groupReduce(expd, backend.SumDim)
	out := backend.Div(expd, backend.TakeRows(sumPerNode, g.Dsts()))

	return g.SetEdgeFeature(outKey, out)
}
