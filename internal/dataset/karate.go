package dataset

import (
	"fmt"

	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/internal/tensor"
)

// KarateLabelKey is the node feature holding the ground-truth community
// of the karate club graph (0 = instructor's faction, 1 = officer's).
const KarateLabelKey = "label"

// karateClubEdges are the 78 undirected friendship ties of Zachary's
// karate club study, zero-indexed.
var karateClubEdges = [][2]int{
	{0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}, {0, 7}, {0, 8},
	{0, 10}, {0, 11}, {0, 12}, {0, 13}, {0, 17}, {0, 19}, {0, 21}, {0, 31},
	{1, 2}, {1, 3}, {1, 7}, {1, 13}, {1, 17}, {1, 19}, {1, 21}, {1, 30},
	{2, 3}, {2, 7}, {2, 8}, {2, 9}, {2, 13}, {2, 27}, {2, 28}, {2, 32},
	{3, 7}, {3, 12}, {3, 13},
	{4, 6}, {4, 10},
	{5, 6}, {5, 10}, {5, 16},
	{6, 16},
	{8, 30}, {8, 32}, {8, 33},
	{9, 33},
	{13, 33},
	{14, 32}, {14, 33},
	{15, 32}, {15, 33},
	{18, 32}, {18, 33},
	{19, 33},
	{20, 32}, {20, 33},
	{22, 32}, {22, 33},
	{23, 25}, {23, 27}, {23, 29}, {23, 32}, {23, 33},
	{24, 25}, {24, 27}, {24, 31},
	{25, 31},
	{26, 29}, {26, 33},
	{27, 33},
	{28, 31}, {28, 33},
	{29, 32}, {29, 33},
	{30, 32}, {30, 33},
	{31, 32}, {31, 33},
	{32, 33},
}

// karateClubFactions holds the observed post-split membership: 1 marks
// the officer's faction.
var karateClubFactions = map[int]bool{
	9: true, 14: true, 15: true, 18: true, 20: true, 22: true,
	23: true, 24: true, 25: true, 26: true, 27: true, 28: true,
	29: true, 30: true, 31: true, 32: true, 33: true,
}

// KarateClub builds Zachary's karate club graph: 34 nodes and both
// directions of each of the 78 ties, with the ground-truth community
// stored under KarateLabelKey as an int64 [34, 1] feature.
func KarateClub[B tensor.Backend](backend B) (*graph.Graph[B], error) {
	edges := make([]graph.Edge, 0, 2*len(karateClubEdges))
	for _, e := range karateClubEdges {
		edges = append(edges, graph.Edge{Src: e[0], Dst: e[1]})
		edges = append(edges, graph.Edge{Src: e[1], Dst: e[0]})
	}

	g, err := graph.New(34, edges, backend)
	if err != nil {
		return nil, fmt.Errorf("building karate club graph: %w", err)
	}

	labels, err := tensor.NewRaw(tensor.Shape{34, 1}, tensor.Int64, backend.Device())
	if err != nil {
		return nil, err
	}
	data := labels.AsInt64()
	for v := range data {
		if karateClubFactions[v] {
			data[v] = 1
		}
	}
	if err := g.SetNodeFeature(KarateLabelKey, labels); err != nil {
		return nil, err
	}
	return g, nil
}
