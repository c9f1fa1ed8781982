// Package cmd provides the mzindex command
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/mzview/pkg/reader"
	"github.com/ChrisMcGann/mzview/pkg/reader/mzml"
	"github.com/ChrisMcGann/mzview/pkg/store/sqlite"
)

var (
	// Flags
	force bool
)

var rootCmd = &cobra.Command{
	Use:   "mzindex <run.mzML> [out.db]",
	Short: "mzindex - convert an mzML run to a SQLite run database",
	Long: `mzindex decodes every spectrum of an mzML run once and stores peaks, precursor
and metadata in a SQLite database that mzview opens without re-parsing XML.

Examples:
  # Write run.db next to the input
  mzindex run.mzML

  # Choose the output path
  mzindex run.mzML /data/index/run.db`,
	Version:       "1.0.0",
	Args:          cobra.RangeArgs(1, 2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runIndex,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing output database")
}

// defaultOutput replaces the extension of the input with .db
func defaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".db"
}

func runIndex(cmd *cobra.Command, args []string) error {
	inputFile := args[0]
	outputFile := defaultOutput(inputFile)
	if len(args) == 2 {
		outputFile = args[1]
	}

	// Validate input file exists
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	format, err := reader.DetectFormat(inputFile)
	if err != nil {
		return err
	}
	if format != reader.FormatMzML {
		return fmt.Errorf("input must be an mzML run, got %s", format)
	}

	if _, err := os.Stat(outputFile); err == nil {
		if !force {
			return fmt.Errorf("output file already exists: %s (use --force to overwrite)", outputFile)
		}
		if err := os.Remove(outputFile); err != nil {
			return fmt.Errorf("failed to remove existing output: %w", err)
		}
	}

	fmt.Printf("Indexing %s to %s...\n", inputFile, outputFile)

	run, err := mzml.Open(inputFile)
	if err != nil {
		return err
	}
	defer run.Close()

	tic, err := run.TIC()
	if err != nil {
		return fmt.Errorf("failed to read TIC: %w", err)
	}

	writer, err := sqlite.NewWriter(outputFile, sqlite.RunInfo{
		Name:         reader.Label(run, inputFile),
		SourceFile:   inputFile,
		SourceFormat: reader.FormatMzML,
	})
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}

	count := 0
	skipped := 0

	it := run.Iter()
	for i := 0; it.Next(); i++ {
		spec := it.Spectrum()

		// Validate spectrum
		if err := spec.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: invalid spectrum %s: %v\n", spec.Name(), err)
			skipped++
			continue
		}

		// TIC samples follow the iteration order of numeric spectra
		point := spec.TotalIonCurrent()
		if i < len(tic) {
			point = tic[i].Intensity
		}

		if err := writer.WriteSpectrum(spec, point); err != nil {
			writer.Finalize()
			return fmt.Errorf("failed to write spectrum %s: %w", spec.Name(), err)
		}

		count++
		if count%1000 == 0 {
			fmt.Printf("Processed %d spectra...\n", count)
		}
	}

	if err := it.Err(); err != nil {
		writer.Finalize()
		return fmt.Errorf("error reading input file: %w", err)
	}

	// Finalize database
	if err := writer.Finalize(); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}

	fmt.Printf("\nIndexing complete!\n")
	fmt.Printf("Processed: %d spectra\n", count)
	if skipped > 0 {
		fmt.Printf("Skipped: %d spectra (validation errors)\n", skipped)
	}
	fmt.Printf("Output: %s\n", outputFile)

	return nil
}
