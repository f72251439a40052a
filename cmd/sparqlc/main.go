// Command sparqlc compiles declarative JSON query requests into SPARQL.
package main

import (
	"os"

	"github.com/roach88/sparqlc/internal/cli"
)

func main() {
	os.Exit(cli.GetExitCode(cli.NewRootCommand().Execute()))
}
