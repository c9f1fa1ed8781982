package mzml

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ChrisMcGann/mzview/pkg/core"
)

// ErrUnsupportedEncoding means a binary array uses a compression or number format the
// reader cannot decode (e.g. MS-Numpress).
var ErrUnsupportedEncoding = errors.New("mzML: unsupported binary array encoding")

// decodeArray decodes one binaryDataArray into float64 values.
func decodeArray(a xmlArray) ([]float64, error) {
	width := 8
	switch {
	case a.CvParams.has(string(core.AccFloat64)):
	case a.CvParams.has(string(core.AccFloat32)):
		width = 4
	default:
		return nil, fmt.Errorf("%w: no 32/64-bit float term", ErrUnsupportedEncoding)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(a.Binary), ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 array: %w", err)
	}

	switch {
	case len(raw) == 0:
	case a.CvParams.has(string(core.AccZlibCompression)):
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to open zlib array: %w", err)
		}
		raw, err = io.ReadAll(zr)
		zr.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to inflate array: %w", err)
		}
	case a.CvParams.has(string(core.AccNoCompression)):
	default:
		return nil, fmt.Errorf("%w: unknown compression", ErrUnsupportedEncoding)
	}

	if len(raw)%width != 0 {
		return nil, fmt.Errorf("array length %d is not a multiple of %d bytes", len(raw), width)
	}

	out := make([]float64, len(raw)/width)
	for i := range out {
		if width == 8 {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		} else {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	}
	return out, nil
}
