// Package envi reads ENVI header/data file pairs produced by airborne
// post-processing. Only the navigation-band layout used by the archive
// (time, lat, lon, alt, roll, pitch, heading) is interpreted.
package envi

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Interleave schemes for ENVI data files.
const (
	InterleaveBIL = "bil" // band-interleaved by line
	InterleaveBSQ = "bsq" // band-sequential
)

// ENVI "data type" codes we accept for navigation bands.
const (
	dataTypeFloat32 = 4
	dataTypeFloat64 = 5
)

// Header is a parsed ENVI .hdr file.
type Header struct {
	Samples    int
	Lines      int
	Bands      int
	Interleave string
	DataType   int
	ByteOrder  int // 0 = little-endian, 1 = big-endian
	BandNames  []string

	// Fields holds every raw header entry, lower-cased keys.
	Fields map[string]string
}

// ParseHeader reads an ENVI header: a leading "ENVI" magic line followed by
// "key = value" entries where values may be brace-wrapped lists spanning
// multiple lines.
func ParseHeader(r io.Reader) (Header, error) {
	h := Header{Fields: make(map[string]string)}

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return h, fmt.Errorf("empty header")
	}
	if strings.TrimSpace(scanner.Text()) != "ENVI" {
		return h, fmt.Errorf("missing ENVI magic line")
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if strings.HasPrefix(value, "{") {
			full, err := readBraceValue(scanner, value)
			if err != nil {
				return h, fmt.Errorf("header field %q: %w", key, err)
			}
			value = full
		}

		h.Fields[key] = value
	}
	if err := scanner.Err(); err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}

	if err := h.interpret(); err != nil {
		return h, err
	}
	return h, nil
}

// readBraceValue accumulates a {...} value that may span lines.
func readBraceValue(scanner *bufio.Scanner, first string) (string, error) {
	var b strings.Builder
	b.WriteString(first)
	for !strings.Contains(b.String(), "}") {
		if !scanner.Scan() {
			return "", fmt.Errorf("unterminated brace value")
		}
		b.WriteString(" ")
		b.WriteString(strings.TrimSpace(scanner.Text()))
	}
	s := b.String()
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(strings.TrimSpace(s), "}")
	return strings.TrimSpace(s), nil
}

func (h *Header) interpret() error {
	var err error
	if h.Samples, err = h.intField("samples"); err != nil {
		return err
	}
	if h.Lines, err = h.intField("lines"); err != nil {
		return err
	}
	if h.Bands, err = h.intField("bands"); err != nil {
		return err
	}

	h.Interleave = strings.ToLower(h.Fields["interleave"])
	if h.Interleave != InterleaveBIL && h.Interleave != InterleaveBSQ {
		return fmt.Errorf("unsupported interleave %q", h.Fields["interleave"])
	}

	if h.DataType, err = h.intField("data type"); err != nil {
		return err
	}
	if h.DataType != dataTypeFloat32 && h.DataType != dataTypeFloat64 {
		return fmt.Errorf("unsupported data type %d", h.DataType)
	}

	// Byte order defaults to little-endian when absent.
	if raw, ok := h.Fields["byte order"]; ok {
		if h.ByteOrder, err = strconv.Atoi(raw); err != nil {
			return fmt.Errorf("byte order %q: %w", raw, err)
		}
		if h.ByteOrder != 0 && h.ByteOrder != 1 {
			return fmt.Errorf("byte order must be 0 or 1, got %d", h.ByteOrder)
		}
	}

	if names, ok := h.Fields["band names"]; ok {
		for _, n := range strings.Split(names, ",") {
			h.BandNames = append(h.BandNames, strings.TrimSpace(n))
		}
	}

	return nil
}

func (h *Header) intField(key string) (int, error) {
	raw, ok := h.Fields[key]
	if !ok {
		return 0, fmt.Errorf("header field %q is required", key)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("header field %q = %q: %w", key, raw, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("header field %q must be positive, got %d", key, v)
	}
	return v, nil
}

// SampleSize returns the per-value byte width.
func (h *Header) SampleSize() int {
	if h.DataType == dataTypeFloat32 {
		return 4
	}
	return 8
}
