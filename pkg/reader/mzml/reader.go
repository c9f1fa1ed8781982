// Package mzml provides random access to the spectra of mzML run files
package mzml

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mzview/pkg/core"
)

// TICKey is the offset table key of the total ion current chromatogram.
const TICKey = "TIC"

var scanNumber = regexp.MustCompile(`(?:^|\s)scan=(\d+)`)

// header is what the indexing pass remembers about one spectrum.
type header struct {
	key    string
	offset int64
	rt     float64 // minutes
	tic    float64
	hasTIC bool
}

// Reader provides random access to the spectra of one mzML file
type Reader struct {
	path    string
	file    *os.File
	size    int64
	offsets core.OffsetTable
	headers []header
	keyPos  map[string]int // offset key -> headers position
	ticOff  int64
	hasTIC  bool
}

// Open indexes an mzML file. The file stays open until Close.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat run file: %w", err)
	}

	r := &Reader{
		path:   path,
		file:   f,
		size:   info.Size(),
		keyPos: make(map[string]int),
	}

	if err := r.index(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to index %s: %w", path, err)
	}

	return r, nil
}

// index walks the document once, recording the byte offset of every spectrum and
// chromatogram element in document order.
func (r *Reader) index() error {
	dec := xml.NewDecoder(bufio.NewReaderSize(io.NewSectionReader(r.file, 0, r.size), 1<<20))
	sawRoot := false

	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "mzML", "indexedmzML":
			sawRoot = true

		case "spectrum":
			var h spectrumHeader
			if err := dec.DecodeElement(&h, &start); err != nil {
				return fmt.Errorf("spectrum at offset %d: %w", off, err)
			}
			r.addSpectrum(h, off)

		case "chromatogram":
			var h chromatogramHeader
			if err := dec.DecodeElement(&h, &start); err != nil {
				return fmt.Errorf("chromatogram at offset %d: %w", off, err)
			}
			r.offsets = append(r.offsets, core.OffsetEntry{Key: h.ID, Offset: off})
			if !r.hasTIC && (h.ID == TICKey || h.CvParams.has(string(core.AccTICChromatogram))) {
				r.ticOff = off
				r.hasTIC = true
			}

		case "indexList":
			if err := dec.Skip(); err != nil {
				return err
			}
		}
	}

	if !sawRoot {
		return errors.New("not an mzML document")
	}
	return nil
}

func (r *Reader) addSpectrum(h spectrumHeader, off int64) {
	hdr := header{key: spectrumKey(h.ID, h.Index), offset: off}

	if p, ok := h.CvParams.find(string(core.AccTotalIonCurrent)); ok {
		if v, err := strconv.ParseFloat(p.Value, 64); err == nil {
			hdr.tic = v
			hdr.hasTIC = true
		}
	}
	if len(h.Scans) > 0 {
		if p, ok := h.Scans[0].CvParams.find(string(core.AccScanStartTime)); ok {
			hdr.rt = minutes(p)
		}
	}

	if _, dup := r.keyPos[hdr.key]; !dup {
		r.keyPos[hdr.key] = len(r.headers)
	}
	r.headers = append(r.headers, hdr)
	r.offsets = append(r.offsets, core.OffsetEntry{Key: hdr.key, Offset: off})
}

// spectrumKey extracts the scan number from a native id such as
// "controllerType=0 controllerNumber=1 scan=17". Native ids without a scan number
// ("index=5", "sample=1 period=1 cycle=12 experiment=1") fall back to the index
// attribute of the spectrum element; without one the id is used verbatim.
func spectrumKey(id, index string) string {
	key := strings.TrimSpace(id)
	if m := scanNumber.FindStringSubmatch(id); m != nil {
		key = m[1]
	}
	if n, err := strconv.Atoi(key); err == nil {
		return strconv.Itoa(n)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(index)); err == nil {
		return strconv.Itoa(n)
	}
	return key
}

// minutes converts a time parameter to minutes.
func minutes(p cvParam) float64 {
	v, err := strconv.ParseFloat(p.Value, 64)
	if err != nil {
		return 0
	}
	switch core.Accession(p.UnitAccession) {
	case core.UnitSecond:
		return v / 60
	case core.UnitMillisecond:
		return v / 60000
	}
	if strings.HasPrefix(p.UnitName, "second") {
		return v / 60
	}
	return v
}

// Offsets returns the offset table in document order.
func (r *Reader) Offsets() core.OffsetTable {
	out := make(core.OffsetTable, len(r.offsets))
	copy(out, r.offsets)
	return out
}

// Spectrum decodes the spectrum with the given identifier.
func (r *Reader) Spectrum(id int) (*core.Spectrum, error) {
	pos, ok := r.keyPos[strconv.Itoa(id)]
	if !ok {
		return nil, fmt.Errorf("spectrum %d: %w", id, core.ErrSpectrumNotFound)
	}
	hdr := r.headers[pos]

	var xs xmlSpectrum
	if err := r.decodeAt(hdr.offset, "spectrum", &xs); err != nil {
		return nil, fmt.Errorf("spectrum %d: %w", id, err)
	}

	spec, err := r.convert(id, &xs)
	if err != nil {
		return nil, fmt.Errorf("spectrum %d: %w", id, err)
	}

	if pos+1 < len(r.headers) {
		if d := r.headers[pos+1].rt - hdr.rt; d > 0 {
			spec.ScanDuration = d * 60
		}
	}

	return spec, nil
}

// decodeAt decodes the element named local that starts at or after off.
func (r *Reader) decodeAt(off int64, local string, v interface{}) error {
	dec := xml.NewDecoder(io.NewSectionReader(r.file, off, r.size-off))
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to find <%s> at offset %d: %w", local, off, err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			if start.Name.Local != local {
				return fmt.Errorf("expected <%s> at offset %d, found <%s>", local, off, start.Name.Local)
			}
			return dec.DecodeElement(v, &start)
		}
	}
}

func (r *Reader) convert(id int, xs *xmlSpectrum) (*core.Spectrum, error) {
	spec := &core.Spectrum{
		ID:                id,
		RetentionTimeUnit: "minute",
		SourceFile:        r.path,
		SourceFormat:      "mzml",
	}

	collect(spec, xs.CvParams)
	if p, ok := xs.CvParams.find(string(core.AccMSLevel)); ok {
		spec.MSLevel, _ = strconv.Atoi(p.Value)
	}
	spec.Profile = xs.CvParams.has(string(core.AccProfileSpectrum))

	if len(xs.Scans) > 0 {
		scan := xs.Scans[0]
		collect(spec, scan.CvParams)
		if p, ok := scan.CvParams.find(string(core.AccScanStartTime)); ok {
			spec.RetentionTime = minutes(p)
		}
		for _, w := range scan.ScanWindows {
			collect(spec, w.CvParams)
		}
	}

	if len(xs.Precursors) > 0 && len(xs.Precursors[0].SelectedIons) > 0 {
		spec.Precursor = precursor(xs.Precursors[0].SelectedIons[0].CvParams)
	}

	var mzs, ints []float64
	for _, a := range xs.Arrays {
		switch {
		case a.CvParams.has(string(core.AccMZArray)):
			v, err := decodeArray(a)
			if err != nil {
				return nil, fmt.Errorf("m/z array: %w", err)
			}
			mzs = v
		case a.CvParams.has(string(core.AccIntensityArray)):
			v, err := decodeArray(a)
			if err != nil {
				return nil, fmt.Errorf("intensity array: %w", err)
			}
			ints = v
		}
	}
	if len(mzs) != len(ints) {
		return nil, fmt.Errorf("m/z array has %d values but intensity array has %d", len(mzs), len(ints))
	}

	spec.Peaks = make([]core.Peak, len(mzs))
	for i := range mzs {
		spec.Peaks[i] = core.Peak{MZ: mzs[i], Intensity: ints[i]}
	}
	if !spec.ArePeaksSorted() {
		spec.SortPeaks()
	}

	return spec, nil
}

// collect copies cvParams into the record metadata. Parameters without a value are
// flags and are stored as "true".
func collect(spec *core.Spectrum, params cvParams) {
	for _, p := range params {
		if p.Accession == "" {
			continue
		}
		v := p.Value
		if v == "" {
			v = "true"
		}
		spec.Set(core.Accession(p.Accession), v)
	}
}

func precursor(params cvParams) *core.Precursor {
	prec := &core.Precursor{}
	if p, ok := params.find(string(core.AccSelectedIonMZ)); ok {
		if v, err := strconv.ParseFloat(p.Value, 64); err == nil {
			prec.MZ = &v
		}
	}
	if p, ok := params.find(string(core.AccPeakIntensity)); ok {
		if v, err := strconv.ParseFloat(p.Value, 64); err == nil {
			prec.Intensity = &v
		}
	}
	if p, ok := params.find(string(core.AccChargeState)); ok {
		if v, err := strconv.Atoi(p.Value); err == nil {
			prec.Charge = &v
		}
	}
	if prec.MZ == nil && prec.Intensity == nil && prec.Charge == nil {
		return nil
	}
	return prec
}

// TIC returns the total ion current trace aligned with the numeric spectrum keys. The
// run's TIC chromatogram is used when it has one point per numeric spectrum; otherwise
// the trace is rebuilt from the spectra.
func (r *Reader) TIC() ([]core.TICSample, error) {
	var numeric []int
	for i, h := range r.headers {
		if _, err := strconv.Atoi(h.key); err == nil && r.keyPos[h.key] == i {
			numeric = append(numeric, i)
		}
	}

	if r.hasTIC {
		samples, err := r.chromatogram(r.ticOff)
		if err != nil {
			return nil, fmt.Errorf("TIC chromatogram: %w", err)
		}
		if len(samples) == len(numeric) {
			return samples, nil
		}
	}

	samples := make([]core.TICSample, 0, len(numeric))
	for _, pos := range numeric {
		h := r.headers[pos]
		tic := h.tic
		if !h.hasTIC {
			id, _ := strconv.Atoi(h.key)
			spec, err := r.Spectrum(id)
			if err != nil {
				return nil, err
			}
			tic = spec.TotalIonCurrent()
		}
		samples = append(samples, core.TICSample{RetentionTime: h.rt, Intensity: tic})
	}
	return samples, nil
}

func (r *Reader) chromatogram(off int64) ([]core.TICSample, error) {
	var xc xmlChromatogram
	if err := r.decodeAt(off, "chromatogram", &xc); err != nil {
		return nil, err
	}

	var times, ints []float64
	for _, a := range xc.Arrays {
		switch {
		case a.CvParams.has(string(core.AccTimeArray)):
			v, err := decodeArray(a)
			if err != nil {
				return nil, fmt.Errorf("time array: %w", err)
			}
			if p, ok := a.CvParams.find(string(core.AccTimeArray)); ok {
				scale := minutes(cvParam{Value: "1", UnitAccession: p.UnitAccession, UnitName: p.UnitName})
				for i := range v {
					v[i] *= scale
				}
			}
			times = v
		case a.CvParams.has(string(core.AccIntensityArray)):
			v, err := decodeArray(a)
			if err != nil {
				return nil, fmt.Errorf("intensity array: %w", err)
			}
			ints = v
		}
	}
	if len(times) != len(ints) {
		return nil, fmt.Errorf("time array has %d values but intensity array has %d", len(times), len(ints))
	}

	out := make([]core.TICSample, len(times))
	for i := range times {
		out[i] = core.TICSample{RetentionTime: times[i], Intensity: ints[i]}
	}
	return out, nil
}

// Close closes the run file
func (r *Reader) Close() error {
	return r.file.Close()
}

// Iterator walks the spectra of a run in document order.
type Iterator struct {
	r       *Reader
	pos     int
	current *core.Spectrum
	err     error
}

// Iter returns an iterator over all numeric spectra.
func (r *Reader) Iter() *Iterator {
	return &Iterator{r: r}
}

// Next advances to the next spectrum. Returns false when no more spectra or error.
func (it *Iterator) Next() bool {
	it.current = nil
	for it.err == nil && it.pos < len(it.r.headers) {
		h := it.r.headers[it.pos]
		it.pos++

		id, err := strconv.Atoi(h.key)
		if err != nil || it.r.keyPos[h.key] != it.pos-1 {
			continue
		}

		spec, err := it.r.Spectrum(id)
		if err != nil {
			it.err = err
			return false
		}
		it.current = spec
		return true
	}
	return false
}

// Spectrum returns the current spectrum
func (it *Iterator) Spectrum() *core.Spectrum {
	return it.current
}

// Err returns any error encountered during reading
func (it *Iterator) Err() error {
	return it.err
}
