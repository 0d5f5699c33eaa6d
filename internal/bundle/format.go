// Package bundle implements the .relay container: a single-file binary
// format holding a graph's topology and feature tables.
//
//	Format structure:
//	  [5 bytes: magic "RELAY"]
//	  [4 bytes: version (uint32 LE)]
//	  [4 bytes: flags (uint32 LE, reserved)]
//	  [8 bytes: header size (uint64 LE)]
//	  [header: JSON metadata]
//	  [payload: raw tensor bytes, 64-byte aligned, little endian]
//
// The payload carries the edge list as an int64 [numEdges, 2] tensor
// named "edges", node features under "node/<key>" and edge features
// under "edge/<key>". The header records a SHA-256 checksum of the
// payload, verified on load.
package bundle

import (
	"time"

	"github.com/relay-ml/relay/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "RELAY"
	FormatVersion   = 1
	HeaderAlignment = 64        // payload starts on a 64-byte boundary
	MaxHeaderSize   = 16 << 20  // refuse absurd headers before allocating
)

// Payload tensor naming.
const (
	edgesTensorName = "edges"
	nodePrefix      = "node/"
	edgePrefix      = "edge/"
)

// Header is the JSON metadata block of a .relay file.
type Header struct {
	FormatVersion int          `json:"format_version"`
	Name          string       `json:"name"`
	NumNodes      int          `json:"num_nodes"`
	NumEdges      int          `json:"num_edges"`
	CreatedAt     time.Time    `json:"created_at"`
	Tensors       []TensorMeta `json:"tensors"`
	Checksum      string       `json:"checksum"` // SHA-256 of the payload, hex
}

// TensorMeta describes one payload tensor.
type TensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // bytes from the start of the payload
	Size   int64  `json:"size"`   // bytes
}

func dtypeToString(dt tensor.DataType) string {
	return dt.String()
}

func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case "float32":
		return tensor.Float32, true
	case "float64":
		return tensor.Float64, true
	case "int32":
		return tensor.Int32, true
	case "int64":
		return tensor.Int64, true
	default:
		return 0, false
	}
}
