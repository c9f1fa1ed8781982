package core

// OffsetEntry is one row of a run's offset table. Keys are spectrum identifiers or
// non-numeric sentinels such as "TIC".
type OffsetEntry struct {
	Key    string
	Offset int64
}

// OffsetTable is the ordered offset table of a run.
type OffsetTable []OffsetEntry

// TICSample is one (retention time, intensity) pair of the total ion current trace.
type TICSample struct {
	RetentionTime float64
	Intensity     float64
}

// RunReader provides random access to the spectra of one acquired run.
// Implementations must be safe for concurrent Spectrum calls.
type RunReader interface {
	// Offsets returns the offset table in document order.
	Offsets() OffsetTable

	// Spectrum returns the record for an identifier or an error wrapping ErrSpectrumNotFound.
	Spectrum(id int) (*Spectrum, error)

	// TIC returns the total ion current trace aligned with the numeric offset keys.
	TIC() ([]TICSample, error)

	// Close releases the underlying file.
	Close() error
}
