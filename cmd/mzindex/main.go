// mzindex - converts mzML runs to SQLite run databases
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/mzview/cmd/mzindex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
