package bundle

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/internal/tensor"
)

// Save writes the graph to path as a .relay bundle.
func Save[B tensor.Backend](path, name string, g *graph.Graph[B]) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bundle: %w", err)
	}
	if err := Write(f, name, g); err != nil {
		f.Close()
		return fmt.Errorf("writing bundle %s: %w", path, err)
	}
	return f.Close()
}

// Write serializes the graph's topology and feature tables to w.
func Write[B tensor.Backend](w io.Writer, name string, g *graph.Graph[B]) error {
	header := Header{
		FormatVersion: FormatVersion,
		Name:          name,
		NumNodes:      g.NumNodes(),
		NumEdges:      g.NumEdges(),
		CreatedAt:     time.Now().UTC(),
	}

	// Payload order: edges first, then node and edge features by sorted
	// key. The payload is assembled in memory so the checksum can go in
	// the header.
	var payload bytes.Buffer
	add := func(tensorName string, raw *tensor.RawTensor) error {
		offset := int64(payload.Len())
		if err := writeValues(&payload, raw); err != nil {
			return fmt.Errorf("encoding tensor %q: %w", tensorName, err)
		}
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   tensorName,
			DType:  dtypeToString(raw.DType()),
			Shape:  raw.Shape(),
			Offset: offset,
			Size:   int64(payload.Len()) - offset,
		})
		return nil
	}

	if err := add(edgesTensorName, edgeTensor(g)); err != nil {
		return err
	}
	for _, key := range g.NodeFrame().Keys() {
		raw, _ := g.NodeFrame().Get(key)
		if err := add(nodePrefix+key, raw); err != nil {
			return err
		}
	}
	for _, key := range g.EdgeFrame().Keys() {
		raw, _ := g.EdgeFrame().Get(key)
		if err := add(edgePrefix+key, raw); err != nil {
			return err
		}
	}

	header.Checksum = computeChecksum(payload.Bytes())

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshaling header: %w", err)
	}

	if _, err := io.WriteString(w, MagicBytes); err != nil {
		return fmt.Errorf("writing magic bytes: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("writing version: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(0)); err != nil {
		return fmt.Errorf("writing flags: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("writing header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	pos := int64(len(MagicBytes)+4+4+8) + int64(len(headerJSON))
	if padding := (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment; padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("writing padding: %w", err)
		}
	}

	if _, err := w.Write(payload.Bytes()); err != nil {
		return fmt.Errorf("writing payload: %w", err)
	}
	return nil
}

// edgeTensor packs the edge list into an int64 [numEdges, 2] tensor.
func edgeTensor[B tensor.Backend](g *graph.Graph[B]) *tensor.RawTensor {
	raw, err := tensor.NewRaw(tensor.Shape{g.NumEdges(), 2}, tensor.Int64, g.Backend().Device())
	if err != nil {
		panic(fmt.Sprintf("edge tensor allocation: %v", err))
	}
	data := raw.AsInt64()
	for i, e := range g.Edges() {
		data[2*i] = int64(e.Src)
		data[2*i+1] = int64(e.Dst)
	}
	return raw
}

// writeValues encodes a tensor's elements in little-endian order.
func writeValues(w io.Writer, raw *tensor.RawTensor) error {
	switch raw.DType() {
	case tensor.Float32:
		return binary.Write(w, binary.LittleEndian, raw.AsFloat32())
	case tensor.Float64:
		return binary.Write(w, binary.LittleEndian, raw.AsFloat64())
	case tensor.Int32:
		return binary.Write(w, binary.LittleEndian, raw.AsInt32())
	case tensor.Int64:
		return binary.Write(w, binary.LittleEndian, raw.AsInt64())
	default:
		return fmt.Errorf("unsupported dtype %s", raw.DType())
	}
}
