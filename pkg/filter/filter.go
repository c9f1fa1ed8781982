// Package filter provides peak list transformations applied before display
package filter

import (
	"math"
	"sort"

	"github.com/ChrisMcGann/mzview/pkg/core"
)

// Config holds filtering configuration
type Config struct {
	Centroid        bool    // Centroid profile spectra before display
	RemoveZero      bool    // Drop peaks with zero or negative intensity
	IntensityCutoff float64 // Keep only peaks above this % of base peak (0 = no cutoff)
	TopN            int     // Keep only top N most intense peaks (0 = no limit)
}

// Enabled reports whether Apply would change anything.
func (c *Config) Enabled() bool {
	return c.Centroid || c.RemoveZero || c.IntensityCutoff > 0 || c.TopN > 0
}

// Apply applies all configured filters to a spectrum
func (c *Config) Apply(spec *core.Spectrum) {
	// Centroid first so the remaining filters see picked peaks
	if c.Centroid && spec.Profile {
		Centroid(spec)
	}

	if c.RemoveZero {
		RemoveZeroIntensityPeaks(spec)
	}

	// Apply intensity filters
	if c.IntensityCutoff > 0 {
		c.filterByIntensity(spec)
	}

	// Apply top-N filter
	if c.TopN > 0 {
		c.filterTopN(spec)
	}

	// Ensure peaks are sorted after all filtering
	spec.SortPeaks()
}

// filterByIntensity removes peaks below the intensity cutoff percentage
func (c *Config) filterByIntensity(spec *core.Spectrum) {
	if len(spec.Peaks) == 0 {
		return
	}

	// Find maximum intensity
	maxIntensity := 0.0
	for _, peak := range spec.Peaks {
		if peak.Intensity > maxIntensity {
			maxIntensity = peak.Intensity
		}
	}

	// Calculate threshold
	threshold := (c.IntensityCutoff / 100.0) * maxIntensity

	// Filter peaks
	filtered := make([]core.Peak, 0, len(spec.Peaks))
	for _, peak := range spec.Peaks {
		if peak.Intensity >= threshold {
			filtered = append(filtered, peak)
		}
	}

	spec.Peaks = filtered
}

// filterTopN keeps only the N most intense peaks
func (c *Config) filterTopN(spec *core.Spectrum) {
	if len(spec.Peaks) <= c.TopN {
		return
	}

	// Create a copy and sort by intensity descending
	peaks := make([]core.Peak, len(spec.Peaks))
	copy(peaks, spec.Peaks)

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Intensity > peaks[j].Intensity
	})

	// Keep only top N
	spec.Peaks = peaks[:c.TopN]
}

// RemoveZeroIntensityPeaks removes peaks with zero or negative intensity
func RemoveZeroIntensityPeaks(spec *core.Spectrum) {
	filtered := make([]core.Peak, 0, len(spec.Peaks))
	for _, peak := range spec.Peaks {
		if peak.Intensity > 0 {
			filtered = append(filtered, peak)
		}
	}
	spec.Peaks = filtered
}

// Centroid replaces a profile peak list with one peak per local maximum. The apex m/z
// is refined by fitting a Gaussian through the maximum and its two neighbours; the
// apex intensity is kept.
func Centroid(spec *core.Spectrum) {
	if !spec.ArePeaksSorted() {
		spec.SortPeaks()
	}
	p := spec.Peaks

	var centroids []core.Peak
	for i := 1; i+1 < len(p); i++ {
		if p[i].Intensity <= 0 {
			continue
		}
		if p[i].Intensity <= p[i-1].Intensity || p[i].Intensity < p[i+1].Intensity {
			continue
		}
		centroids = append(centroids, core.Peak{
			MZ:        gaussianApex(p[i-1], p[i], p[i+1]),
			Intensity: p[i].Intensity,
		})
	}

	spec.Peaks = centroids
	spec.Profile = false
}

// gaussianApex returns the vertex of the parabola through (mz, ln intensity) of three
// neighbouring profile points, or the middle m/z when the fit is degenerate.
func gaussianApex(a, b, c core.Peak) float64 {
	if a.Intensity <= 0 || c.Intensity <= 0 {
		return b.MZ
	}

	l1, l2, l3 := math.Log(a.Intensity), math.Log(b.Intensity), math.Log(c.Intensity)
	d1 := b.MZ - a.MZ
	d3 := b.MZ - c.MZ

	num := d1*d1*(l2-l3) - d3*d3*(l2-l1)
	den := d1*(l2-l3) - d3*(l2-l1)
	if den == 0 || math.IsNaN(num/den) {
		return b.MZ
	}

	apex := b.MZ - 0.5*num/den
	if apex < a.MZ || apex > c.MZ {
		return b.MZ
	}
	return apex
}
