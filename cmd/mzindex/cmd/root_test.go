package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/mzview/pkg/store/sqlite"
)

// peaks 100/200 m/z, intensities 10/20, uncompressed 64-bit
const spectrumTemplate = `<spectrum index="%d" id="controllerType=0 controllerNumber=1 scan=%d" defaultArrayLength="2">
<cvParam cvRef="MS" accession="MS:1000511" name="ms level" value="1"/>
<cvParam cvRef="MS" accession="MS:1000285" name="total ion current" value="%d"/>
<scanList count="1"><scan><cvParam cvRef="MS" accession="MS:1000016" name="scan start time" value="%d" unitAccession="UO:0000031" unitName="minute"/></scan></scanList>
<binaryDataArrayList count="2">
<binaryDataArray><cvParam accession="MS:1000523"/><cvParam accession="MS:1000576"/><cvParam accession="MS:1000514"/><binary>AAAAAAAAWUAAAAAAAABpQA==</binary></binaryDataArray>
<binaryDataArray><cvParam accession="MS:1000523"/><cvParam accession="MS:1000576"/><cvParam accession="MS:1000515"/><binary>AAAAAAAAJEAAAAAAAAA0QA==</binary></binaryDataArray>
</binaryDataArrayList>
</spectrum>
`

func writeMzML(t *testing.T, scans ...int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<mzML xmlns="http://psi.hupo.org/ms/mzml"><run id="r"><spectrumList>` + "\n")
	for i, scan := range scans {
		fmt.Fprintf(&b, spectrumTemplate, i, scan, 100*(i+1), i+1)
	}
	b.WriteString("</spectrumList></run></mzML>\n")

	path := filepath.Join(t.TempDir(), "sample.mzML")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func TestDefaultOutput(t *testing.T) {
	require.Equal(t, "/data/run.db", defaultOutput("/data/run.mzML"))
	require.Equal(t, "run.db", defaultOutput("run"))
}

func TestIndexRun(t *testing.T) {
	input := writeMzML(t, 10, 11, 12)
	output := filepath.Join(t.TempDir(), "out.db")

	rootCmd.SetArgs([]string{input, output})
	require.NoError(t, rootCmd.Execute())

	r, err := sqlite.Open(output)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, "sample.mzML", r.Run().Name)
	offsets := r.Offsets()
	require.Len(t, offsets, 4)
	require.Equal(t, "10", offsets[0].Key)

	tic, err := r.TIC()
	require.NoError(t, err)
	require.Len(t, tic, 3)
	require.Equal(t, 300.0, tic[2].Intensity)
	require.Equal(t, 3.0, tic[2].RetentionTime)

	spec, err := r.Spectrum(11)
	require.NoError(t, err)
	require.Equal(t, []float64{100, 200}, spec.MZs())
	require.Equal(t, []float64{10, 20}, spec.Intensities())
	require.Equal(t, 60.0, spec.ScanDuration)

	// existing output is kept unless --force is given
	rootCmd.SetArgs([]string{input, output})
	require.Error(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"--force", input, output})
	require.NoError(t, rootCmd.Execute())
	force = false
}

func TestIndexRejectsNonMzML(t *testing.T) {
	input := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(input, []byte("hello"), 0644))

	rootCmd.SetArgs([]string{input})
	require.Error(t, rootCmd.Execute())
}
