// Package tic precomputes the run-wide total ion current trace and its hover labels.
package tic

import (
	"fmt"

	"github.com/ChrisMcGann/mzview/pkg/core"
)

// Cache holds the TIC trace as parallel, read-only arrays.
type Cache struct {
	rts    []float64
	ints   []float64
	labels []string
	maxRT  float64
	maxInt float64
}

// Build pairs sample i of the series with identifier i of ids. Both sequences must have
// the same length.
func Build(series []core.TICSample, ids []int) (*Cache, error) {
	if len(series) != len(ids) {
		return nil, &core.AlignmentError{Points: len(series), IDs: len(ids)}
	}

	c := &Cache{
		rts:    make([]float64, len(series)),
		ints:   make([]float64, len(series)),
		labels: make([]string, len(series)),
	}

	for i, s := range series {
		c.rts[i] = s.RetentionTime
		c.ints[i] = s.Intensity
		c.labels[i] = Label(s.RetentionTime, ids[i])
		if i == 0 || s.RetentionTime > c.maxRT {
			c.maxRT = s.RetentionTime
		}
		if i == 0 || s.Intensity > c.maxInt {
			c.maxInt = s.Intensity
		}
	}

	return c, nil
}

// Label formats the hover text of one TIC sample.
func Label(rt float64, id int) string {
	return fmt.Sprintf("RT: %.3f, ID: %d", rt, id)
}

// Len returns the number of samples.
func (c *Cache) Len() int { return len(c.rts) }

// RetentionTimes returns a copy of the x values.
func (c *Cache) RetentionTimes() []float64 { return append([]float64(nil), c.rts...) }

// Intensities returns a copy of the y values.
func (c *Cache) Intensities() []float64 { return append([]float64(nil), c.ints...) }

// Labels returns a copy of the hover labels.
func (c *Cache) Labels() []string { return append([]string(nil), c.labels...) }

// MaxIntensity returns the largest intensity of the trace.
func (c *Cache) MaxIntensity() float64 { return c.maxInt }

// MaxRetentionTime returns the largest retention time of the trace.
func (c *Cache) MaxRetentionTime() float64 { return c.maxRT }
