// Package sqlite stores indexed runs in SQLite database files and reads them back
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ChrisMcGann/mzview/pkg/core"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	// Date format for MaintenanceTable
	maintenanceDateFormat = "2006 01 02"

	// SchemaVersion is written to HeaderTable.version
	SchemaVersion = 1
)

// RunInfo describes the run a database was built from
type RunInfo struct {
	Name         string
	SourceFile   string
	SourceFormat string
}

// Writer handles writing spectra of one run to a SQLite database file
type Writer struct {
	db           *sql.DB
	tx           *sql.Tx
	outputPath   string
	spectrumStmt *sql.Stmt
	metaStmt     *sql.Stmt
	run          RunInfo
	order        int
}

// NewWriter creates a new SQLite writer
func NewWriter(outputPath string, run RunInfo) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		run:        run,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	w.tx, err = db.Begin()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := w.prepareStatements(); err != nil {
		w.tx.Rollback()
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS RunTable (
		RunId INTEGER PRIMARY KEY,
		Name TEXT,
		SourceFile TEXT,
		SourceFormat TEXT,
		SpectrumCount INTEGER,
		CreationDate TEXT
	);

	CREATE TABLE IF NOT EXISTS SpectrumTable (
		SpectrumId INTEGER PRIMARY KEY,
		AcquisitionOrder INTEGER NOT NULL,
		MSLevel INTEGER,
		RetentionTime DOUBLE,
		ScanDuration DOUBLE,
		TotalIonCurrent DOUBLE,
		Profile BOOL,
		PrecursorMass DOUBLE,
		PrecursorIntensity DOUBLE,
		PrecursorCharge INTEGER,
		blobMass BLOB,
		blobIntensity BLOB
	);

	CREATE TABLE IF NOT EXISTS MetadataTable (
		SpectrumId INTEGER REFERENCES SpectrumTable(SpectrumId),
		Accession TEXT,
		Value TEXT
	);

	CREATE INDEX IF NOT EXISTS MetadataSpectrum ON MetadataTable(SpectrumId);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		LastModifiedDate TEXT,
		Description TEXT
	);

	CREATE TABLE IF NOT EXISTS MaintenanceTable (
		CreationDate TEXT,
		NoofSpectra INTEGER,
		Description TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.spectrumStmt, err = w.tx.Prepare(`
		INSERT INTO SpectrumTable (
			SpectrumId, AcquisitionOrder, MSLevel, RetentionTime, ScanDuration,
			TotalIonCurrent, Profile, PrecursorMass, PrecursorIntensity,
			PrecursorCharge, blobMass, blobIntensity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare spectrum statement: %w", err)
	}

	w.metaStmt, err = w.tx.Prepare(`
		INSERT INTO MetadataTable (SpectrumId, Accession, Value) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare metadata statement: %w", err)
	}

	return nil
}

// WriteSpectrum writes a single spectrum and its TIC point to the database.
// Spectra must be written in acquisition order.
func (w *Writer) WriteSpectrum(spec *core.Spectrum, tic float64) error {
	// Ensure peaks are sorted
	if !spec.ArePeaksSorted() {
		spec.SortPeaks()
	}

	// Handle optional precursor values
	var precMZ, precInt, precCharge interface{}
	if p := spec.Precursor; p != nil {
		if p.MZ != nil {
			precMZ = *p.MZ
		}
		if p.Intensity != nil {
			precInt = *p.Intensity
		}
		if p.Charge != nil {
			precCharge = *p.Charge
		}
	}

	_, err := w.spectrumStmt.Exec(
		spec.ID,                               // SpectrumId
		w.order,                               // AcquisitionOrder
		spec.MSLevel,                          // MSLevel
		spec.RetentionTime,                    // RetentionTime
		spec.ScanDuration,                     // ScanDuration
		tic,                                   // TotalIonCurrent
		spec.Profile,                          // Profile
		precMZ,                                // PrecursorMass
		precInt,                               // PrecursorIntensity
		precCharge,                            // PrecursorCharge
		encodePeaksFloat64(spec.Peaks, true),  // blobMass
		encodePeaksFloat64(spec.Peaks, false), // blobIntensity
	)
	if err != nil {
		return fmt.Errorf("failed to insert spectrum %d: %w", spec.ID, err)
	}

	for acc, value := range spec.Metadata {
		if _, err := w.metaStmt.Exec(spec.ID, string(acc), value); err != nil {
			return fmt.Errorf("failed to insert metadata of spectrum %d: %w", spec.ID, err)
		}
	}

	w.order++
	return nil
}

// encodePeaksFloat64 encodes peak data as little-endian float64 blob
func encodePeaksFloat64(peaks []core.Peak, useMZ bool) []byte {
	buf := make([]byte, len(peaks)*8)
	for i, peak := range peaks {
		var value float64
		if useMZ {
			value = peak.MZ
		} else {
			value = peak.Intensity
		}
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(value))
	}
	return buf
}

// decodeFloat64 is the inverse of encodePeaksFloat64 for one column
func decodeFloat64(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(blob))
	}
	out := make([]float64, len(blob)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return out, nil
}

// Finalize writes the run, header and maintenance tables, commits and closes the database
func (w *Writer) Finalize() error {
	if w.spectrumStmt != nil {
		w.spectrumStmt.Close()
	}
	if w.metaStmt != nil {
		w.metaStmt.Close()
	}

	now := time.Now()

	// Write RunTable
	_, err := w.tx.Exec(`
		INSERT INTO RunTable (RunId, Name, SourceFile, SourceFormat, SpectrumCount, CreationDate)
		VALUES (?, ?, ?, ?, ?, ?)
	`, 1, w.run.Name, w.run.SourceFile, w.run.SourceFormat, w.order, now.Format(headerDateFormat))
	if err != nil {
		w.tx.Rollback()
		w.db.Close()
		return fmt.Errorf("failed to insert run: %w", err)
	}

	// Write HeaderTable
	_, err = w.tx.Exec(`
		INSERT INTO HeaderTable (version, CreationDate, LastModifiedDate, Description)
		VALUES (?, ?, ?, ?)
	`, SchemaVersion, now.Format(headerDateFormat), now.Format(headerDateFormat), "mzview run index")
	if err != nil {
		w.tx.Rollback()
		w.db.Close()
		return fmt.Errorf("failed to insert header: %w", err)
	}

	// Write MaintenanceTable
	_, err = w.tx.Exec(`
		INSERT INTO MaintenanceTable (CreationDate, NoofSpectra, Description)
		VALUES (?, ?, ?)
	`, now.Format(maintenanceDateFormat), w.order, "")
	if err != nil {
		w.tx.Rollback()
		w.db.Close()
		return fmt.Errorf("failed to insert maintenance: %w", err)
	}

	if err := w.tx.Commit(); err != nil {
		w.db.Close()
		return fmt.Errorf("failed to commit: %w", err)
	}

	// Close database
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
