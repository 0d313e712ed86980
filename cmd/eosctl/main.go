// Command eosctl is a thin plumbing shell over the eos object store:
// each subcommand parses its flags, calls into the core packages, and
// prints. It carries no business logic of its own.
package main

import (
	"fmt"
	"os"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
