package dataset

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
)

// SafeTensors layout:
//
//	[8 bytes: header size, uint64 little-endian]
//	[header: JSON object, tensor name → {dtype, shape, data_offsets}]
//	[tensor data]
//
// A matrix is stored as a single F32 tensor named "fingerprints" of shape
// [rows, cols]. Column names, if any, go in the "__metadata__" entry under
// "columns" as a JSON array.
const (
	safeTensorsName    = "fingerprints"
	safeTensorsColumns = "columns"

	// maxHeaderSize bounds the JSON header read from untrusted files.
	maxHeaderSize = 100 << 20

	// maxElements bounds the matrix a header may declare (1 GiB of F32).
	maxElements = 1 << 28
)

type safeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// EncodeSafeTensors writes m in SafeTensors format.
func EncodeSafeTensors(w io.Writer, m *Matrix) error {
	if len(m.Data) != m.Rows*m.Cols {
		return fmt.Errorf("%w: %d values for %dx%d", ErrMalformed, len(m.Data), m.Rows, m.Cols)
	}

	size := int64(len(m.Data) * 4)
	header := map[string]any{
		safeTensorsName: safeTensorHeader{
			DType:       "F32",
			Shape:       []int64{int64(m.Rows), int64(m.Cols)},
			DataOffsets: [2]int64{0, size},
		},
	}
	if m.Header != nil {
		columns, err := json.Marshal(m.Header)
		if err != nil {
			return fmt.Errorf("marshaling column names: %w", err)
		}
		header["__metadata__"] = map[string]string{safeTensorsColumns: string(columns)}
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshaling header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("writing header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	data := make([]byte, size)
	for i, v := range m.Data {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing tensor data: %w", err)
	}
	return nil
}

// DecodeSafeTensors reads a matrix written by EncodeSafeTensors.
func DecodeSafeTensors(r io.Reader) (*Matrix, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("%w: reading header size: %w", ErrMalformed, err)
	}
	if headerSize > maxHeaderSize {
		return nil, fmt.Errorf("%w: header size %d exceeds %d", ErrMalformed, headerSize, maxHeaderSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrMalformed, err)
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("%w: parsing header: %w", ErrMalformed, err)
	}

	rawInfo, ok := header[safeTensorsName]
	if !ok {
		return nil, fmt.Errorf("%w: no %q tensor", ErrMalformed, safeTensorsName)
	}
	var info safeTensorHeader
	if err := json.Unmarshal(rawInfo, &info); err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %w", ErrMalformed, safeTensorsName, err)
	}
	if info.DType != "F32" || len(info.Shape) != 2 || info.Shape[0] <= 0 || info.Shape[1] <= 0 {
		return nil, fmt.Errorf("%w: want F32 [rows, cols], got %s %v", ErrMalformed, info.DType, info.Shape)
	}
	rows, cols := info.Shape[0], info.Shape[1]
	if rows > maxElements/cols {
		return nil, fmt.Errorf("%w: shape %v exceeds %d elements", ErrMalformed, info.Shape, maxElements)
	}
	want := rows * cols * 4
	if info.DataOffsets[0] < 0 || info.DataOffsets[1]-info.DataOffsets[0] != want {
		return nil, fmt.Errorf("%w: data offsets %v do not match shape %v", ErrMalformed, info.DataOffsets, info.Shape)
	}
	m := NewMatrix(int(rows), int(cols))

	if _, err := io.CopyN(io.Discard, r, info.DataOffsets[0]); err != nil {
		return nil, fmt.Errorf("%w: seeking to tensor data: %w", ErrMalformed, err)
	}
	data := make([]byte, want)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: reading tensor data: %w", ErrMalformed, err)
	}
	for i := range m.Data {
		m.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}

	if rawMeta, ok := header["__metadata__"]; ok {
		var meta map[string]string
		if err := json.Unmarshal(rawMeta, &meta); err != nil {
			return nil, fmt.Errorf("%w: parsing metadata: %w", ErrMalformed, err)
		}
		if columns, ok := meta[safeTensorsColumns]; ok {
			if err := json.Unmarshal([]byte(columns), &m.Header); err != nil {
				return nil, fmt.Errorf("%w: parsing column names: %w", ErrMalformed, err)
			}
			if len(m.Header) != m.Cols {
				return nil, fmt.Errorf("%w: %d column names for %d columns", ErrMalformed, len(m.Header), m.Cols)
			}
		}
	}
	return m, nil
}

// isSafeTensors reports whether path names a SafeTensors file.
func isSafeTensors(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".safetensors")
}
