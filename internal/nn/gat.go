package nn

import (
	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/internal/propagate"
	"github.com/relay-ml/relay/internal/tensor"
)

const (
	gatFeatKey  = "_gat_z"
	gatSrcKey   = "_gat_el"
	gatDstKey   = "_gat_er"
	gatScoreKey = "_gat_e"
	gatAttnKey  = "_gat_a"
	gatMsgKey   = "_gat_m"
	gatOutKey   = "_gat_h"
)

// GAT implements a single-head graph attention layer:
//
//	z = x W
//	e_uv = LeakyReLU(a_l . z_u + a_r . z_v)
//	alpha = softmax of e over each destination's incoming edges
//	h_v = sum over incoming edges of alpha_uv * z_u
//
// The attention normalization is the explicit EdgeSoftmax pass; nothing
// is normalized inside the executor.
type GAT[B tensor.Backend] struct {
	fc       *Linear[B]
	attnSrc  *Parameter[B] // [outFeatures, 1]
	attnDst  *Parameter[B] // [outFeatures, 1]
	negSlope float64
	backend  B
}

// NewGAT creates a single-head graph attention layer.
func NewGAT[B tensor.Backend](inFeatures, outFeatures int, backend B) *GAT[B] {
	return &GAT[B]{
		fc:       NewLinear(inFeatures, outFeatures, backend),
		attnSrc:  NewParameter("attn_src", Xavier(outFeatures, 1, tensor.Shape{outFeatures, 1}, backend)),
		attnDst:  NewParameter("attn_dst", Xavier(outFeatures, 1, tensor.Shape{outFeatures, 1}, backend)),
		negSlope: 0.2,
		backend:  backend,
	}
}

// Forward runs one attention step over the graph.
// Input shape: [NumNodes, inFeatures]; output: [NumNodes, outFeatures].
// Nodes without incoming edges get a zero output row.
func (l *GAT[B]) Forward(g *graph.Graph[B], input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	z := l.fc.Forward(input)           // [N, F']
	el := z.MatMul(l.attnSrc.Tensor()) // [N, 1]
	er := z.MatMul(l.attnDst.Tensor()) // [N, 1]

	for key, value := range map[string]*tensor.RawTensor{
		gatFeatKey: z.Raw(),
		gatSrcKey:  el.Raw(),
		gatDstKey:  er.Raw(),
	} {
		if err := g.SetNodeFeature(key, value); err != nil {
			return nil, err
		}
	}
	defer func() {
		for _, key := range []string{gatFeatKey, gatSrcKey, gatDstKey, gatOutKey} {
			g.NodeFrame().Pop(key)
		}
		for _, key := range []string{gatScoreKey, gatAttnKey} {
			g.EdgeFrame().Pop(key)
		}
	}()

	// Unnormalized attention logits per edge.
	err := propagate.ApplyEdges(g, func(e *propagate.EdgeContext[B]) (map[string]*tensor.RawTensor, error) {
		srcScore, err := e.Src(gatSrcKey)
		if err != nil {
			return nil, err
		}
		dstScore, err := e.Dst(gatDstKey)
		if err != nil {
			return nil, err
		}
		logits := l.backend.LeakyRelu(l.backend.Add(srcScore, dstScore), l.negSlope)
		return map[string]*tensor.RawTensor{gatScoreKey: logits}, nil
	})
	if err != nil {
		return nil, err
	}

	if err := propagate.EdgeSoftmax(g, gatScoreKey, gatAttnKey); err != nil {
		return nil, err
	}

	err = propagate.UpdateAll(g,
		propagate.SrcMulEdge[B](gatFeatKey, gatAttnKey, gatMsgKey),
		propagate.Sum[B](gatMsgKey, gatOutKey))
	if err != nil {
		return nil, err
	}

	out, err := g.NodeFeature(gatOutKey)
	if err != nil {
		// Zero-edge graph: no reduction ran, so the aggregate is all
		// zeros with the transformed width.
		return tensor.Zeros[float32](tensor.Shape{g.NumNodes(), l.fc.OutFeatures()}, l.backend), nil
	}
	return tensor.New[float32](out.Clone(), l.backend), nil
}

// Parameters returns the linear and attention parameters.
func (l *GAT[B]) Parameters() []*Parameter[B] {
	return append(l.fc.Parameters(), l.attnSrc, l.attnDst)
}
