// main.go
//
// Entry point for the Wordle helper.
// Hands off to the cobra commands in internal/cli:
//   - serve  → JSON API for the browser widget
//   - play   → terminal session
//   - export → board file conversion

package main

import (
	"github.com/robalobadob/wordle-helper/internal/cli"
)

// version is set with -ldflags "-X main.version=..." at build time.
var version = "dev"

func main() {
	cli.Version = version
	cli.Execute(cli.NewRootCommand())
}
