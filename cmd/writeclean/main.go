package main

import (
	"fmt"
	"os"

	"github.com/spacesedan/writeclean/config"
	"github.com/spacesedan/writeclean/internal/logging"
)

// Set with -ldflags at release time.
var (
	BuildTag    = "dev"
	BuildCommit = "none"
)

func main() {
	config.LoadEnv(config.AppEnv())
	logging.InitLoggerTo(os.Stderr)

	if err := newApp(UI{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "writeclean: %v\n", err)
		os.Exit(1)
	}
}
