package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	e := newEnv()
	root := newRootCmd(e)

	err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	)
	e.close()
	if err != nil {
		os.Exit(1)
	}
}
