// Package reader opens run files of any supported format
package reader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChrisMcGann/mzview/pkg/core"
	"github.com/ChrisMcGann/mzview/pkg/reader/mzml"
	"github.com/ChrisMcGann/mzview/pkg/store/sqlite"
)

// Supported formats
const (
	FormatMzML   = "mzml"
	FormatSQLite = "sqlite"
)

var sqliteMagic = []byte("SQLite format 3\x00")

// DetectFormat identifies a run file by extension, falling back to its leading bytes.
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mzml":
		return FormatMzML, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open run file: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read run file: %w", err)
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, sqliteMagic):
		return FormatSQLite, nil
	case bytes.Contains(head, []byte("<mzML")) || bytes.Contains(head, []byte("<indexedmzML")):
		return FormatMzML, nil
	}

	return "", fmt.Errorf("cannot detect format of '%s'", path)
}

// Open opens a run file with the reader for its format.
func Open(path string) (core.RunReader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("run file not readable: %w", err)
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatMzML:
		r, err := mzml.Open(path)
		if err != nil {
			return nil, err
		}
		return r, nil
	case FormatSQLite:
		r, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Label names a run after the base name of its file. Run databases written by
// mzindex keep the name of the mzML file they were converted from.
func Label(run core.RunReader, path string) string {
	if db, ok := run.(*sqlite.Reader); ok && db.Run().SourceFile != "" {
		return filepath.Base(db.Run().SourceFile)
	}
	return filepath.Base(path)
}
