// Package core provides the spectrum record model, run reader contract and error types
// shared by the mzview packages.
package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Spectrum represents a single acquired spectrum as delivered by a run reader.
type Spectrum struct {
	// Required fields
	ID            int     // Numeric spectrum identifier (scan number)
	MSLevel       int     // 1 for survey scans, 2 for fragmentation scans
	RetentionTime float64 // Scan start time
	ScanDuration  float64 // Time until the next scan started
	Peaks         []Peak  // m/z ordered peak list

	// Optional metadata
	Precursor         *Precursor
	Metadata          map[Accession]string
	RetentionTimeUnit string // minute, second
	Profile           bool   // Peaks are profile data, not centroids

	// Internal tracking
	SourceFile   string
	SourceFormat string // mzml, sqlite
}

// Peak represents a single m/z, intensity pair.
type Peak struct {
	MZ        float64
	Intensity float64
}

// Precursor is the selected parent ion of a fragmentation spectrum. Every field is
// optional because instruments report different subsets.
type Precursor struct {
	MZ        *float64
	Intensity *float64
	Charge    *int
}

// Get returns the metadata value stored for an accession.
func (s *Spectrum) Get(acc Accession) (string, bool) {
	if s.Metadata == nil {
		return "", false
	}
	v, ok := s.Metadata[acc]
	return v, ok
}

// Set stores a metadata value, allocating the map on first use.
func (s *Spectrum) Set(acc Accession, value string) {
	if s.Metadata == nil {
		s.Metadata = make(map[Accession]string)
	}
	s.Metadata[acc] = value
}

// Validate checks that a spectrum is structurally usable for display.
func (s *Spectrum) Validate() error {
	var errs []string

	if s.ID <= 0 {
		errs = append(errs, "id must be positive")
	}
	if s.MSLevel <= 0 {
		errs = append(errs, "ms level must be positive")
	}
	if math.IsNaN(s.RetentionTime) || math.IsInf(s.RetentionTime, 0) {
		errs = append(errs, "retention time is not finite")
	}

	for i, peak := range s.Peaks {
		if math.IsNaN(peak.MZ) || math.IsInf(peak.MZ, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid m/z", i))
		}
		if math.IsInf(peak.Intensity, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid intensity", i))
		}
	}

	if !s.ArePeaksSorted() {
		errs = append(errs, "peaks must be sorted by m/z")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   s.Name(),
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// ArePeaksSorted checks if peaks are sorted by m/z in ascending order.
func (s *Spectrum) ArePeaksSorted() bool {
	for i := 1; i < len(s.Peaks); i++ {
		if s.Peaks[i].MZ < s.Peaks[i-1].MZ {
			return false
		}
	}
	return true
}

// SortPeaks sorts peaks by m/z in ascending order.
func (s *Spectrum) SortPeaks() {
	sort.SliceStable(s.Peaks, func(i, j int) bool {
		return s.Peaks[i].MZ < s.Peaks[j].MZ
	})
}

// MZs returns the m/z column of the peak list.
func (s *Spectrum) MZs() []float64 {
	out := make([]float64, len(s.Peaks))
	for i, p := range s.Peaks {
		out[i] = p.MZ
	}
	return out
}

// Intensities returns the intensity column of the peak list.
func (s *Spectrum) Intensities() []float64 {
	out := make([]float64, len(s.Peaks))
	for i, p := range s.Peaks {
		out[i] = p.Intensity
	}
	return out
}

// TotalIonCurrent returns the summed intensity of all peaks.
func (s *Spectrum) TotalIonCurrent() float64 {
	total := 0.0
	for _, p := range s.Peaks {
		total += p.Intensity
	}
	return total
}

// Name returns the spectrum name in format "scan=ID"
func (s *Spectrum) Name() string {
	return fmt.Sprintf("scan=%d", s.ID)
}
