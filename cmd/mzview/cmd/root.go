// Package cmd provides the mzview command
package cmd

import (
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/mzview/pkg/config"
	"github.com/ChrisMcGann/mzview/pkg/reader"
	"github.com/ChrisMcGann/mzview/pkg/session"
	"github.com/ChrisMcGann/mzview/pkg/tui"
)

var rootCmd = &cobra.Command{
	Use:   "mzview <run-file>",
	Short: "mzview - browse the spectra of a mass spectrometry run",
	Long: `mzview shows one spectrum of a run at a time next to the run's total ion
current trace, with the retention time of the selected spectrum marked.

The run file is an mzML document or a SQLite run database written by mzindex.
Type a spectrum id, or step with the arrow keys.

Settings are read from $MZVIEW_CONFIG or ~/.config/mzview/config.toml.`,
	Version:       "1.0.0",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runView,
}

func Execute() error {
	return rootCmd.Execute()
}

func runView(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; log to a file or not at all
	if cfg.Log.File != "" {
		f, err := tea.LogToFile(cfg.Log.File, "mzview")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	run, err := reader.Open(path)
	if err != nil {
		return err
	}
	defer run.Close()

	label := reader.Label(run, path)
	log.Printf("opened run %s from %s", label, path)

	s, err := session.New(run, label, session.WithFilter(cfg.Filter()))
	if err != nil {
		return err
	}
	log.Printf("run %s: spectra %d..%d (%d ids)", label, s.Index().Min(), s.Index().Max(), s.Index().Len())

	return tui.Run(s, tui.ExportOptions{
		Dir:    cfg.Export.Dir,
		Width:  cfg.Export.Width,
		Height: cfg.Export.Height,
	})
}
