package envi

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ReadBands decodes an ENVI data stream into per-band sample vectors
// according to the header's interleave scheme. maxLines > 0 caps the number
// of lines read (cheap subsampling for very long swaths).
func ReadBands(r io.Reader, h Header, maxLines int) ([][]float64, error) {
	lines := h.Lines
	if maxLines > 0 && maxLines < lines {
		lines = maxLines
	}

	switch h.Interleave {
	case InterleaveBIL:
		return readBIL(bufio.NewReader(r), h, lines)
	case InterleaveBSQ:
		return readBSQ(bufio.NewReader(r), h, lines)
	default:
		return nil, fmt.Errorf("unsupported interleave %q", h.Interleave)
	}
}

// readBIL reads band-interleaved-by-line data: each line holds one row of
// samples for every band in turn.
func readBIL(r io.Reader, h Header, lines int) ([][]float64, error) {
	bands := newBandBuffers(h.Bands, lines*h.Samples)
	row := make([]float64, h.Samples)

	for line := 0; line < lines; line++ {
		for b := 0; b < h.Bands; b++ {
			if err := readRow(r, h, row); err != nil {
				return nil, fmt.Errorf("line %d band %d: %w", line, b, err)
			}
			bands[b] = append(bands[b], row...)
		}
	}
	return bands, nil
}

// readBSQ reads band-sequential data: the full raster of band 0, then
// band 1, and so on. When lines < h.Lines the remainder of each band block
// is skipped so later bands stay aligned.
func readBSQ(r io.Reader, h Header, lines int) ([][]float64, error) {
	bands := newBandBuffers(h.Bands, lines*h.Samples)
	row := make([]float64, h.Samples)
	skip := int64(h.Lines-lines) * int64(h.Samples) * int64(h.SampleSize())

	for b := 0; b < h.Bands; b++ {
		for line := 0; line < lines; line++ {
			if err := readRow(r, h, row); err != nil {
				return nil, fmt.Errorf("band %d line %d: %w", b, line, err)
			}
			bands[b] = append(bands[b], row...)
		}
		if skip > 0 && b < h.Bands-1 {
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("skip band %d tail: %w", b, err)
			}
		}
	}
	return bands, nil
}

func newBandBuffers(bands, capacity int) [][]float64 {
	out := make([][]float64, bands)
	for i := range out {
		out[i] = make([]float64, 0, capacity)
	}
	return out
}

// readRow decodes one row of samples in the header's byte order and width.
func readRow(r io.Reader, h Header, row []float64) error {
	order := byteOrder(h)
	buf := make([]byte, len(row)*h.SampleSize())
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("read samples: %w", err)
	}

	if h.DataType == dataTypeFloat32 {
		for i := range row {
			bits := order.Uint32(buf[i*4:])
			row[i] = float64(math.Float32frombits(bits))
		}
		return nil
	}
	for i := range row {
		bits := order.Uint64(buf[i*8:])
		row[i] = math.Float64frombits(bits)
	}
	return nil
}

func byteOrder(h Header) binary.ByteOrder {
	if h.ByteOrder == 1 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
