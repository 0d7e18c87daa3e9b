package main

import (
	"context"
	"os"

	"github.com/Builtbyjb/tide/pkg/lib/output"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	root := NewRootCmd()

	if err := root.ExecuteContext(context.Background()); err != nil {
		output.NewConsole(os.Stderr).Error(err)
		os.Exit(1)
	}
}
