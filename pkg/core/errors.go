package core

import (
	"errors"
	"fmt"
)

// ErrSpectrumNotFound is returned by run readers for identifiers absent from the run.
var ErrSpectrumNotFound = errors.New("spectrum not found")

// ValidationError represents an error found during spectrum validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// EmptyIndexError reports an offset table without a single numeric spectrum key.
type EmptyIndexError struct {
	Keys int // number of keys inspected
}

func (e *EmptyIndexError) Error() string {
	return fmt.Sprintf("no numeric spectrum identifiers among %d offset table keys", e.Keys)
}

// AlignmentError reports a TIC series that cannot be paired with the spectrum identifiers.
type AlignmentError struct {
	Points int
	IDs    int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("TIC series has %d points but the run has %d spectrum identifiers", e.Points, e.IDs)
}
