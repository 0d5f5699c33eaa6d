package propagate

import (
	"sort"

	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/internal/tensor"
)

// bucket groups destination nodes that share the same in-degree within
// one update. Because the degree is constant across the bucket, all of
// its mailboxes pack into dense [len(nodes), degree, ...] tensors, and
// different buckets touch disjoint destination nodes.
type bucket struct {
	degree int
	nodes  []int // destination node IDs, ascending
	flat   []int // row positions into the message batch, mailbox order
}

// bucketByInDegree partitions the target nodes by in-degree, dropping
// nodes with no incoming edges (reduce never runs for those). pos maps an
// edge ID to its row position in the message batch.
func bucketByInDegree[B tensor.Backend](g *graph.Graph[B], targets []int, pos func(edgeID int) int) []bucket {
	byDegree := make(map[int][]int)
	for _, v := range targets {
		if d := g.InDegree(v); d > 0 {
			byDegree[d] = append(byDegree[d], v)
		}
	}

	degrees := make([]int, 0, len(byDegree))
	for d := range byDegree {
		degrees = append(degrees, d)
	}
	sort.Ints(degrees)

	buckets := make([]bucket, 0, len(degrees))
	for _, d := range degrees {
		nodes := byDegree[d]
		sort.Ints(nodes)

		flat := make([]int, 0, len(nodes)*d)
		for _, v := range nodes {
			for _, e := range g.InEdges(v) {
				flat = append(flat, pos(e))
			}
		}
		buckets = append(buckets, bucket{degree: d, nodes: nodes, flat: flat})
	}
	return buckets
}
