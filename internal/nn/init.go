package nn

import (
	"math"

	"github.com/relay-ml/relay/internal/tensor"
)

// Xavier creates a tensor initialized with Xavier/Glorot uniform values:
// U(-limit, limit) with limit = sqrt(6 / (fanIn + fanOut)).
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, b B) *tensor.Tensor[float32, B] {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	t := tensor.Rand[float32](shape, b)
	data := t.Data()
	for i, v := range data {
		data[i] = float32(2*float64(v)-1) * float32(limit)
	}
	return t
}
