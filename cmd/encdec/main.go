package main

import (
	"os"

	"github.com/yourusername/encdec/internal/cli"
)

// Set at build time via ldflags.
var (
	commit  = "HEAD"
	version = "latest"
)

func main() {
	if err := cli.Execute(version, commit); err != nil {
		os.Exit(1)
	}
}
