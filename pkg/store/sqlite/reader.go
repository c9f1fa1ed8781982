package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/ChrisMcGann/mzview/pkg/core"
)

// TICKey is the offset table key that marks the stored TIC trace.
const TICKey = "TIC"

// Reader serves spectra from a database written by Writer
type Reader struct {
	db      *sql.DB
	path    string
	run     RunInfo
	offsets core.OffsetTable
}

// Open opens a run database read-only and loads its offset table
func Open(path string) (*Reader, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	r := &Reader{db: db, path: path}

	err = db.QueryRow(`SELECT Name, SourceFile, SourceFormat FROM RunTable ORDER BY RunId LIMIT 1`).
		Scan(&r.run.Name, &r.run.SourceFile, &r.run.SourceFormat)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read run table of %s: %w", path, err)
	}

	rows, err := db.Query(`SELECT SpectrumId, AcquisitionOrder FROM SpectrumTable ORDER BY AcquisitionOrder`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to list spectra: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, order int64
		if err := rows.Scan(&id, &order); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to scan spectrum row: %w", err)
		}
		r.offsets = append(r.offsets, core.OffsetEntry{Key: strconv.FormatInt(id, 10), Offset: order})
	}
	if err := rows.Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to list spectra: %w", err)
	}
	r.offsets = append(r.offsets, core.OffsetEntry{Key: TICKey, Offset: -1})

	return r, nil
}

// Run returns the stored run description
func (r *Reader) Run() RunInfo {
	return r.run
}

// Offsets returns spectrum ids in acquisition order followed by the TIC sentinel
func (r *Reader) Offsets() core.OffsetTable {
	out := make(core.OffsetTable, len(r.offsets))
	copy(out, r.offsets)
	return out
}

// Spectrum loads one spectrum with its metadata
func (r *Reader) Spectrum(id int) (*core.Spectrum, error) {
	spec := &core.Spectrum{
		ID:                id,
		RetentionTimeUnit: "minute",
		SourceFile:        r.run.SourceFile,
		SourceFormat:      "sqlite",
	}

	var (
		precMZ, precInt sql.NullFloat64
		precCharge      sql.NullInt64
		mzBlob, intBlob []byte
	)
	err := r.db.QueryRow(`
		SELECT MSLevel, RetentionTime, ScanDuration, Profile, PrecursorMass,
			PrecursorIntensity, PrecursorCharge, blobMass, blobIntensity
		FROM SpectrumTable WHERE SpectrumId = ?
	`, id).Scan(&spec.MSLevel, &spec.RetentionTime, &spec.ScanDuration, &spec.Profile,
		&precMZ, &precInt, &precCharge, &mzBlob, &intBlob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("spectrum %d: %w", id, core.ErrSpectrumNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load spectrum %d: %w", id, err)
	}

	if precMZ.Valid || precInt.Valid || precCharge.Valid {
		spec.Precursor = &core.Precursor{}
		if precMZ.Valid {
			v := precMZ.Float64
			spec.Precursor.MZ = &v
		}
		if precInt.Valid {
			v := precInt.Float64
			spec.Precursor.Intensity = &v
		}
		if precCharge.Valid {
			v := int(precCharge.Int64)
			spec.Precursor.Charge = &v
		}
	}

	mzs, err := decodeFloat64(mzBlob)
	if err != nil {
		return nil, fmt.Errorf("spectrum %d m/z: %w", id, err)
	}
	ints, err := decodeFloat64(intBlob)
	if err != nil {
		return nil, fmt.Errorf("spectrum %d intensity: %w", id, err)
	}
	if len(mzs) != len(ints) {
		return nil, fmt.Errorf("spectrum %d has %d m/z values but %d intensities", id, len(mzs), len(ints))
	}
	spec.Peaks = make([]core.Peak, len(mzs))
	for i := range mzs {
		spec.Peaks[i] = core.Peak{MZ: mzs[i], Intensity: ints[i]}
	}

	rows, err := r.db.Query(`SELECT Accession, Value FROM MetadataTable WHERE SpectrumId = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata of spectrum %d: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var acc, value string
		if err := rows.Scan(&acc, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata of spectrum %d: %w", id, err)
		}
		spec.Set(core.Accession(acc), value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load metadata of spectrum %d: %w", id, err)
	}

	return spec, nil
}

// TIC returns the stored trace in acquisition order
func (r *Reader) TIC() ([]core.TICSample, error) {
	rows, err := r.db.Query(`SELECT RetentionTime, TotalIonCurrent FROM SpectrumTable ORDER BY AcquisitionOrder`)
	if err != nil {
		return nil, fmt.Errorf("failed to load TIC: %w", err)
	}
	defer rows.Close()

	var out []core.TICSample
	for rows.Next() {
		var s core.TICSample
		if err := rows.Scan(&s.RetentionTime, &s.Intensity); err != nil {
			return nil, fmt.Errorf("failed to scan TIC row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close closes the database connection
func (r *Reader) Close() error {
	return r.db.Close()
}
