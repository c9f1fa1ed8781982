package mzml

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/mzview/pkg/core"
)

// encodeArray produces the base64 text of a binaryDataArray.
func encodeArray(values []float64, wide, compress bool) string {
	var buf bytes.Buffer
	for _, v := range values {
		if wide {
			binary.Write(&buf, binary.LittleEndian, math.Float64bits(v))
		} else {
			binary.Write(&buf, binary.LittleEndian, math.Float32bits(float32(v)))
		}
	}
	raw := buf.Bytes()
	if compress {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		zw.Write(raw)
		zw.Close()
		raw = z.Bytes()
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func arrayXML(kind string, values []float64, wide, compress bool) string {
	width := `<cvParam cvRef="MS" accession="MS:1000521" name="32-bit float" value=""/>`
	if wide {
		width = `<cvParam cvRef="MS" accession="MS:1000523" name="64-bit float" value=""/>`
	}
	comp := `<cvParam cvRef="MS" accession="MS:1000576" name="no compression" value=""/>`
	if compress {
		comp = `<cvParam cvRef="MS" accession="MS:1000574" name="zlib compression" value=""/>`
	}
	return fmt.Sprintf(`<binaryDataArray encodedLength="0">%s%s%s<binary>%s</binary></binaryDataArray>`,
		width, comp, kind, encodeArray(values, wide, compress))
}

const (
	mzKind   = `<cvParam cvRef="MS" accession="MS:1000514" name="m/z array" value="" unitAccession="MS:1000040"/>`
	intKind  = `<cvParam cvRef="MS" accession="MS:1000515" name="intensity array" value=""/>`
	timeKind = `<cvParam cvRef="MS" accession="MS:1000595" name="time array" value="" unitAccession="UO:0000031" unitName="minute"/>`
)

type testSpectrum struct {
	scan    int
	level   int
	rt      float64 // seconds
	tic     string
	mzs     []float64
	ints    []float64
	prec    string
	profile bool
}

func spectrumXML(i int, s testSpectrum) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<spectrum index="%d" id="controllerType=0 controllerNumber=1 scan=%d" defaultArrayLength="%d">`, i, s.scan, len(s.mzs))
	fmt.Fprintf(&b, `<cvParam cvRef="MS" accession="MS:1000511" name="ms level" value="%d"/>`, s.level)
	if s.profile {
		b.WriteString(`<cvParam cvRef="MS" accession="MS:1000128" name="profile spectrum" value=""/>`)
	} else {
		b.WriteString(`<cvParam cvRef="MS" accession="MS:1000127" name="centroid spectrum" value=""/>`)
	}
	if s.tic != "" {
		fmt.Fprintf(&b, `<cvParam cvRef="MS" accession="MS:1000285" name="total ion current" value="%s"/>`, s.tic)
	}
	b.WriteString(`<scanList count="1"><scan>`)
	fmt.Fprintf(&b, `<cvParam cvRef="MS" accession="MS:1000016" name="scan start time" value="%g" unitCvRef="UO" unitAccession="UO:0000010" unitName="second"/>`, s.rt)
	b.WriteString(`<cvParam cvRef="MS" accession="MS:1000512" name="filter string" value="FTMS + p NSI Full ms"/>`)
	b.WriteString(`<scanWindowList count="1"><scanWindow>`)
	b.WriteString(`<cvParam cvRef="MS" accession="MS:1000501" name="scan window lower limit" value="350"/>`)
	b.WriteString(`<cvParam cvRef="MS" accession="MS:1000500" name="scan window upper limit" value="1800"/>`)
	b.WriteString(`</scanWindow></scanWindowList></scan></scanList>`)
	if s.prec != "" {
		fmt.Fprintf(&b, `<precursorList count="1"><precursor><selectedIonList count="1"><selectedIon>%s</selectedIon></selectedIonList></precursor></precursorList>`, s.prec)
	}
	b.WriteString(`<binaryDataArrayList count="2">`)
	b.WriteString(arrayXML(mzKind, s.mzs, true, true))
	b.WriteString(arrayXML(intKind, s.ints, false, false))
	b.WriteString(`</binaryDataArrayList></spectrum>`)
	return b.String()
}

func writeRun(t *testing.T, spectra []testSpectrum, chromTimes, chromInts []float64) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<indexedmzML xmlns="http://psi.hupo.org/ms/mzml"><mzML xmlns="http://psi.hupo.org/ms/mzml" version="1.1.0">` + "\n")
	b.WriteString(`<run id="test">` + "\n")
	fmt.Fprintf(&b, `<spectrumList count="%d">`+"\n", len(spectra))
	for i, s := range spectra {
		b.WriteString(spectrumXML(i, s))
		b.WriteString("\n")
	}
	b.WriteString("</spectrumList>\n")
	if chromTimes != nil {
		b.WriteString(`<chromatogramList count="1"><chromatogram index="0" id="TIC" defaultArrayLength="0">`)
		b.WriteString(`<cvParam cvRef="MS" accession="MS:1000235" name="total ion current chromatogram" value=""/>`)
		b.WriteString(`<binaryDataArrayList count="2">`)
		b.WriteString(arrayXML(timeKind, chromTimes, true, false))
		b.WriteString(arrayXML(intKind, chromInts, true, true))
		b.WriteString("</binaryDataArrayList></chromatogram></chromatogramList>\n")
	}
	b.WriteString("</run></mzML>\n")
	b.WriteString(`<indexList count="1"><index name="spectrum"><offset idRef="scan=1">0</offset></index></indexList>`)
	b.WriteString("</indexedmzML>\n")

	path := filepath.Join(t.TempDir(), "run.mzML")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func sampleRun() []testSpectrum {
	return []testSpectrum{
		{scan: 1, level: 1, rt: 60, tic: "150", mzs: []float64{100, 200}, ints: []float64{50, 100}, profile: true},
		{scan: 2, level: 2, rt: 66, tic: "75", mzs: []float64{150.5, 120.25, 300}, ints: []float64{10, 40, 25},
			prec: `<cvParam cvRef="MS" accession="MS:1000744" name="selected ion m/z" value="500.25"/>` +
				`<cvParam cvRef="MS" accession="MS:1000041" name="charge state" value="2"/>`},
		{scan: 3, level: 1, rt: 72, mzs: []float64{400}, ints: []float64{7}},
	}
}

func TestOpenOffsets(t *testing.T) {
	path := writeRun(t, sampleRun(), []float64{1, 1.1, 1.2}, []float64{150, 75, 7})

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	offsets := r.Offsets()
	require.Len(t, offsets, 4)
	require.Equal(t, "1", offsets[0].Key)
	require.Equal(t, "2", offsets[1].Key)
	require.Equal(t, "3", offsets[2].Key)
	require.Equal(t, TICKey, offsets[3].Key)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, e := range offsets {
		require.True(t, bytes.HasPrefix(data[e.Offset:], []byte("<")), "offset %d of %s", e.Offset, e.Key)
	}
}

func TestSpectrum(t *testing.T) {
	path := writeRun(t, sampleRun(), nil, nil)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	spec, err := r.Spectrum(2)
	require.NoError(t, err)

	require.Equal(t, 2, spec.ID)
	require.Equal(t, 2, spec.MSLevel)
	require.InDelta(t, 1.1, spec.RetentionTime, 1e-9)
	require.InDelta(t, 6.0, spec.ScanDuration, 1e-9)
	require.False(t, spec.Profile)

	require.Equal(t, []float64{120.25, 150.5, 300}, spec.MZs())
	require.Equal(t, []float64{40, 10, 25}, spec.Intensities())

	require.NotNil(t, spec.Precursor)
	require.InDelta(t, 500.25, *spec.Precursor.MZ, 1e-9)
	require.Nil(t, spec.Precursor.Intensity)
	require.Equal(t, 2, *spec.Precursor.Charge)

	v, ok := spec.Get(core.AccFilterString)
	require.True(t, ok)
	require.Equal(t, "FTMS + p NSI Full ms", v)
	v, _ = spec.Get(core.AccScanWindowUpper)
	require.Equal(t, "1800", v)
	v, _ = spec.Get(core.AccCentroidSpectrum)
	require.Equal(t, "true", v)

	first, err := r.Spectrum(1)
	require.NoError(t, err)
	require.True(t, first.Profile)
	require.Nil(t, first.Precursor)

	last, err := r.Spectrum(3)
	require.NoError(t, err)
	require.Zero(t, last.ScanDuration)
}

func TestSpectrumNotFound(t *testing.T) {
	path := writeRun(t, sampleRun(), nil, nil)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Spectrum(42)
	require.True(t, errors.Is(err, core.ErrSpectrumNotFound))
}

func TestTICFromChromatogram(t *testing.T) {
	path := writeRun(t, sampleRun(), []float64{1, 1.1, 1.2}, []float64{1500, 750, 70})

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	tic, err := r.TIC()
	require.NoError(t, err)
	require.Equal(t, []core.TICSample{
		{RetentionTime: 1, Intensity: 1500},
		{RetentionTime: 1.1, Intensity: 750},
		{RetentionTime: 1.2, Intensity: 70},
	}, tic)
}

func TestTICRebuiltWhenChromatogramMisaligned(t *testing.T) {
	path := writeRun(t, sampleRun(), []float64{1, 1.1}, []float64{1500, 750})

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	tic, err := r.TIC()
	require.NoError(t, err)
	require.Len(t, tic, 3)
	require.Equal(t, 150.0, tic[0].Intensity)
	require.Equal(t, 75.0, tic[1].Intensity)
	// scan 3 carries no TIC parameter, so it is summed from its peaks
	require.Equal(t, 7.0, tic[2].Intensity)
	require.InDelta(t, 1.2, tic[2].RetentionTime, 1e-9)
}

func TestIter(t *testing.T) {
	path := writeRun(t, sampleRun(), nil, nil)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	var ids []int
	it := r.Iter()
	for it.Next() {
		ids = append(ids, it.Spectrum().ID)
	}
	require.NoError(t, it.Err())
	require.Equal(t, []int{1, 2, 3}, ids)
}

func TestOpenRejectsNonMzML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<?xml version="1.0"?><library/>`), 0o644))

	_, err := Open(path)
	require.Error(t, err)
}

func TestSpectrumKey(t *testing.T) {
	tests := []struct {
		id    string
		index string
		want  string
	}{
		{"controllerType=0 controllerNumber=1 scan=17", "16", "17"},
		{"scan=5", "", "5"},
		{"scan=007", "6", "7"},
		{" 12 ", "", "12"},
		{"index=3", "3", "3"},
		{"sample=1 period=1 cycle=4 experiment=2", "9", "9"},
		{"sample=1 period=1 cycle=4 experiment=2", "", "sample=1 period=1 cycle=4 experiment=2"},
	}
	for _, tt := range tests {
		if got := spectrumKey(tt.id, tt.index); got != tt.want {
			t.Errorf("spectrumKey(%q, %q): expected %q, got %q", tt.id, tt.index, tt.want, got)
		}
	}
}

func TestOpenKeysByIndexWithoutScanNumbers(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<mzML xmlns="http://psi.hupo.org/ms/mzml"><run id="wiff"><spectrumList count="2">` + "\n")
	for i := 0; i < 2; i++ {
		s := spectrumXML(i, testSpectrum{scan: i + 1, level: 1, rt: float64(60 + i), tic: "10", mzs: []float64{100}, ints: []float64{1}})
		s = strings.Replace(s, fmt.Sprintf("controllerType=0 controllerNumber=1 scan=%d", i+1),
			fmt.Sprintf("sample=1 period=1 cycle=%d experiment=1", i+1), 1)
		b.WriteString(s + "\n")
	}
	b.WriteString("</spectrumList></run></mzML>\n")

	path := filepath.Join(t.TempDir(), "wiff.mzML")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	offsets := r.Offsets()
	require.Len(t, offsets, 2)
	require.Equal(t, "0", offsets[0].Key)
	require.Equal(t, "1", offsets[1].Key)

	spec, err := r.Spectrum(1)
	require.NoError(t, err)
	require.Equal(t, 1, spec.ID)
	require.InDelta(t, 61.0/60, spec.RetentionTime, 1e-9)
}

func TestDecodeArrayUnsupported(t *testing.T) {
	a := xmlArray{
		CvParams: cvParams{
			{Accession: string(core.AccFloat64)},
			{Accession: "MS:1002312"},
		},
		Binary: encodeArray([]float64{1}, true, false),
	}
	_, err := decodeArray(a)
	require.True(t, errors.Is(err, ErrUnsupportedEncoding))
}
