package bundle

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/internal/tensor"
)

// Load reads a .relay bundle from path and materializes it as a graph
// bound to the given backend.
func Load[B tensor.Backend](path string, backend B) (*graph.Graph[B], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bundle: %w", err)
	}
	defer f.Close()

	g, err := Read(f, backend)
	if err != nil {
		return nil, fmt.Errorf("reading bundle %s: %w", path, err)
	}
	return g, nil
}

// ReadHeader reads and validates only the metadata block of a bundle.
func ReadHeader(r io.Reader) (*Header, error) {
	header, _, err := readPrefix(r)
	return header, err
}

// Read deserializes a bundle: prefix, header, payload, checksum, graph.
func Read[B tensor.Backend](r io.Reader, backend B) (*graph.Graph[B], error) {
	header, prefixLen, err := readPrefix(r)
	if err != nil {
		return nil, err
	}
	if err := validateTensors(header.Tensors); err != nil {
		return nil, err
	}

	if padding := (HeaderAlignment - prefixLen%HeaderAlignment) % HeaderAlignment; padding > 0 {
		if _, err := io.CopyN(io.Discard, r, padding); err != nil {
			return nil, fmt.Errorf("skipping padding: %w", err)
		}
	}

	var payloadSize int64
	for _, meta := range header.Tensors {
		if end := meta.Offset + meta.Size; end > payloadSize {
			payloadSize = end
		}
	}
	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	if err := validateChecksum(computeChecksum(payload), header.Checksum); err != nil {
		return nil, err
	}

	tensors := make(map[string]*tensor.RawTensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		raw, err := decodeTensor(meta, payload[meta.Offset:meta.Offset+meta.Size], backend.Device())
		if err != nil {
			return nil, err
		}
		tensors[meta.Name] = raw
	}

	return assemble(header, tensors, backend)
}

// readPrefix consumes the fixed prefix and JSON header, returning the
// header and the number of bytes read so far.
func readPrefix(r io.Reader) (*Header, int64, error) {
	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, 0, fmt.Errorf("reading magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidMagic, magic)
	}

	var version, flags uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, 0, fmt.Errorf("reading version: %w", err)
	}
	if version != FormatVersion {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return nil, 0, fmt.Errorf("reading flags: %w", err)
	}

	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, 0, fmt.Errorf("reading header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, 0, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, 0, fmt.Errorf("reading header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, 0, fmt.Errorf("parsing header: %w", err)
	}

	prefixLen := int64(len(MagicBytes)+4+4+8) + int64(headerSize)
	return &header, prefixLen, nil
}

// validateTensors rejects metadata with negative, overlapping or
// inconsistent extents before any payload is trusted.
func validateTensors(metas []TensorMeta) error {
	sorted := make([]TensorMeta, len(metas))
	copy(sorted, metas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var prev *TensorMeta
	for i := range sorted {
		meta := &sorted[i]
		if meta.Offset < 0 || meta.Size < 0 {
			return fmt.Errorf("%w: tensor %q at offset %d, size %d",
				ErrOutOfBounds, meta.Name, meta.Offset, meta.Size)
		}
		dtype, ok := stringToDtype(meta.DType)
		if !ok {
			return fmt.Errorf("tensor %q has unknown dtype %q", meta.Name, meta.DType)
		}
		if want := int64(tensor.Shape(meta.Shape).NumElements() * dtype.Size()); want != meta.Size {
			return fmt.Errorf("tensor %q: shape %v needs %d bytes, header says %d",
				meta.Name, meta.Shape, want, meta.Size)
		}
		if prev != nil && meta.Offset < prev.Offset+prev.Size {
			return fmt.Errorf("%w: %q and %q", ErrOffsetOverlap, prev.Name, meta.Name)
		}
		prev = meta
	}
	return nil
}

// decodeTensor reconstructs one payload tensor from its byte range.
func decodeTensor(meta TensorMeta, data []byte, device tensor.Device) (*tensor.RawTensor, error) {
	dtype, _ := stringToDtype(meta.DType)
	raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype, device)
	if err != nil {
		return nil, fmt.Errorf("tensor %q: %w", meta.Name, err)
	}

	r := bytes.NewReader(data)
	switch dtype {
	case tensor.Float32:
		err = binary.Read(r, binary.LittleEndian, raw.AsFloat32())
	case tensor.Float64:
		err = binary.Read(r, binary.LittleEndian, raw.AsFloat64())
	case tensor.Int32:
		err = binary.Read(r, binary.LittleEndian, raw.AsInt32())
	case tensor.Int64:
		err = binary.Read(r, binary.LittleEndian, raw.AsInt64())
	}
	if err != nil {
		return nil, fmt.Errorf("decoding tensor %q: %w", meta.Name, err)
	}
	return raw, nil
}

// assemble rebuilds the graph from decoded tensors.
func assemble[B tensor.Backend](header *Header, tensors map[string]*tensor.RawTensor, backend B) (*graph.Graph[B], error) {
	et, ok := tensors[edgesTensorName]
	if !ok {
		return nil, fmt.Errorf("bundle has no %q tensor", edgesTensorName)
	}
	if !et.Shape().Equal(tensor.Shape{header.NumEdges, 2}) || et.DType() != tensor.Int64 {
		return nil, fmt.Errorf("edge tensor has shape %v dtype %s, want [%d 2] int64",
			et.Shape(), et.DType(), header.NumEdges)
	}

	data := et.AsInt64()
	edges := make([]graph.Edge, header.NumEdges)
	for i := range edges {
		edges[i] = graph.Edge{Src: int(data[2*i]), Dst: int(data[2*i+1])}
	}

	g, err := graph.New(header.NumNodes, edges, backend)
	if err != nil {
		return nil, err
	}

	for name, raw := range tensors {
		switch {
		case strings.HasPrefix(name, nodePrefix):
			err = g.SetNodeFeature(strings.TrimPrefix(name, nodePrefix), raw)
		case strings.HasPrefix(name, edgePrefix):
			err = g.SetEdgeFeature(strings.TrimPrefix(name, edgePrefix), raw)
		}
		if err != nil {
			return nil, fmt.Errorf("restoring feature %q: %w", name, err)
		}
	}
	return g, nil
}
