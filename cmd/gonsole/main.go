// Package main provides the gonsole CLI application entry point.
package main

import (
	"os"

	"gonsole/cmd/gonsole/internal/cli"
)

func main() {
	app := cli.NewApp()
	if err := app.CreateRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
