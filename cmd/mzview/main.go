// mzview - terminal viewer for mass spectrometry runs
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/mzview/cmd/mzview/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
