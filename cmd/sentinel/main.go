// Command sentinel is the process entry point: it delegates entirely
// to the cmd package's cobra command tree.
package main

import (
	"os"

	"github.com/rustyeddy/sentinel/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
