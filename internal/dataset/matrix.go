// Package dataset reads and writes fingerprint matrices.
//
// A matrix is stored as CSV (one sample per row, one float per column, with
// an optional header row) or as a single-tensor SafeTensors file. Matrices
// live on the local filesystem or in Cloud Storage (gs://bucket/object).
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/masher-ml/masher/internal/tensor"
)

// ErrMalformed is returned for CSV input that is not a rectangular matrix of floats.
var ErrMalformed = errors.New("malformed matrix")

// Matrix is a dense row-major float32 matrix with optional column names.
type Matrix struct {
	Header []string
	Rows   int
	Cols   int
	Data   []float32
}

// NewMatrix allocates a zero matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{
		Rows: rows,
		Cols: cols,
		Data: make([]float32, rows*cols),
	}
}

// Row returns row i, sharing memory with the matrix.
func (m *Matrix) Row(i int) []float32 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// Tensor copies m into a [rows, cols] tensor.
func Tensor[B tensor.Backend](m *Matrix, b B) (*tensor.Tensor[float32, B], error) {
	return tensor.FromSlice(m.Data, tensor.Shape{m.Rows, m.Cols}, b)
}

// FromTensor copies a [rows, cols] tensor into a matrix with the given header
// (which may be nil).
func FromTensor[B tensor.Backend](t *tensor.Tensor[float32, B], header []string) (*Matrix, error) {
	shape := t.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: want [rows, cols], got %v", ErrMalformed, shape)
	}
	if header != nil && len(header) != shape[1] {
		return nil, fmt.Errorf("%w: header has %d columns, tensor has %d", ErrMalformed, len(header), shape[1])
	}
	m := NewMatrix(shape[0], shape[1])
	copy(m.Data, t.Data())
	m.Header = header
	return m, nil
}

// Stack concatenates matrices row-wise. All matrices must have the same
// number of columns; the header of the first is kept.
func Stack(ms ...*Matrix) (*Matrix, error) {
	if len(ms) == 0 {
		return nil, fmt.Errorf("%w: nothing to stack", ErrMalformed)
	}
	rows := 0
	for i, m := range ms {
		if m.Cols != ms[0].Cols {
			return nil, fmt.Errorf("%w: matrix %d has %d columns, want %d", ErrMalformed, i, m.Cols, ms[0].Cols)
		}
		rows += m.Rows
	}

	out := NewMatrix(rows, ms[0].Cols)
	out.Header = ms[0].Header
	off := 0
	for _, m := range ms {
		off += copy(out.Data[off:], m.Data)
	}
	return out, nil
}

// Decode reads a CSV matrix. The first row is treated as a header when any
// of its fields is not a number.
func Decode(r io.Reader) (*Matrix, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	m := &Matrix{}
	line := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		line++

		if line == 1 {
			m.Cols = len(record)
			if !numeric(record) {
				m.Header = append([]string(nil), record...)
				continue
			}
		}

		for col, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %d: %q is not a number", ErrMalformed, line, col+1, field)
			}
			m.Data = append(m.Data, float32(v))
		}
		m.Rows++
	}

	if m.Rows == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrMalformed)
	}
	return m, nil
}

// Encode writes m as CSV, header first when present.
func Encode(w io.Writer, m *Matrix) error {
	if len(m.Data) != m.Rows*m.Cols {
		return fmt.Errorf("%w: %d values for %dx%d", ErrMalformed, len(m.Data), m.Rows, m.Cols)
	}

	cw := csv.NewWriter(w)
	if m.Header != nil {
		if err := cw.Write(m.Header); err != nil {
			return err
		}
	}

	record := make([]string, m.Cols)
	for i := 0; i < m.Rows; i++ {
		for j, v := range m.Row(i) {
			record[j] = strconv.FormatFloat(float64(v), 'g', -1, 32)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func numeric(record []string) bool {
	for _, field := range record {
		if _, err := strconv.ParseFloat(strings.TrimSpace(field), 32); err != nil {
			return false
		}
	}
	return true
}
