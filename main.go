// Package main provides the entry point for the xsim screening trainer.
package main

import (
	"context"
	"log"
	"os"

	"xsim/internal/cli"
	"xsim/internal/version"

	"github.com/charmbracelet/fang"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting xsim %s", version.String())

	if err := fang.Execute(
		context.Background(),
		cli.NewRootCmd(),
		fang.WithVersion(version.String()),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
