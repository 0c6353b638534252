package main

import (
	"fmt"
	"os"

	"github.com/patternlab/ctlaunch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if cmd.IsQuiet(err) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
