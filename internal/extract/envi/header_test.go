package envi

import (
	"reflect"
	"strings"
	"testing"
)

const sampleHeader = `ENVI
description = {
  Post-processed navigation }
samples = 1
lines = 4
bands = 7
header offset = 0
file type = ENVI Standard
data type = 5
interleave = bil
sensor type = specim_eagle
byte order = 0
acquisition date = 2014-01-01
band names = {time, latitude, longitude,
 altitude, roll, pitch, heading}
`

func TestParseHeader(t *testing.T) {
	h, err := ParseHeader(strings.NewReader(sampleHeader))
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}

	if h.Samples != 1 || h.Lines != 4 || h.Bands != 7 {
		t.Errorf("dims = %d/%d/%d, want 1/4/7", h.Samples, h.Lines, h.Bands)
	}
	if h.Interleave != InterleaveBIL {
		t.Errorf("interleave = %q", h.Interleave)
	}
	if h.DataType != 5 || h.SampleSize() != 8 {
		t.Errorf("data type = %d size = %d", h.DataType, h.SampleSize())
	}
	if h.ByteOrder != 0 {
		t.Errorf("byte order = %d", h.ByteOrder)
	}

	wantBands := []string{"time", "latitude", "longitude", "altitude", "roll", "pitch", "heading"}
	if !reflect.DeepEqual(h.BandNames, wantBands) {
		t.Errorf("band names = %v, want %v", h.BandNames, wantBands)
	}

	if h.Fields["sensor type"] != "specim_eagle" {
		t.Errorf("sensor type = %q", h.Fields["sensor type"])
	}
	if h.Fields[acquisitionDateField] != "2014-01-01" {
		t.Errorf("acquisition date = %q", h.Fields[acquisitionDateField])
	}
}

func TestParseHeader_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"no_magic", "samples = 1\n"},
		{"missing_samples", "ENVI\nlines = 1\nbands = 1\ndata type = 5\ninterleave = bil\n"},
		{"bad_interleave", "ENVI\nsamples = 1\nlines = 1\nbands = 1\ndata type = 5\ninterleave = bip\n"},
		{"bad_data_type", "ENVI\nsamples = 1\nlines = 1\nbands = 1\ndata type = 2\ninterleave = bil\n"},
		{"zero_lines", "ENVI\nsamples = 1\nlines = 0\nbands = 1\ndata type = 5\ninterleave = bil\n"},
		{"bad_byte_order", "ENVI\nsamples = 1\nlines = 1\nbands = 1\ndata type = 5\ninterleave = bil\nbyte order = 2\n"},
		{"unterminated_brace", "ENVI\nsamples = 1\nlines = 1\nbands = 1\ndata type = 5\ninterleave = bil\nband names = {a,\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseHeader(strings.NewReader(tc.in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseHeader_Float32BigEndian(t *testing.T) {
	in := "ENVI\nsamples = 2\nlines = 3\nbands = 3\ndata type = 4\ninterleave = bsq\nbyte order = 1\n"
	h, err := ParseHeader(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.SampleSize() != 4 {
		t.Errorf("sample size = %d, want 4", h.SampleSize())
	}
	if h.ByteOrder != 1 {
		t.Errorf("byte order = %d, want 1", h.ByteOrder)
	}
	if h.Interleave != InterleaveBSQ {
		t.Errorf("interleave = %q", h.Interleave)
	}
}
