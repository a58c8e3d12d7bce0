// Command floralc is the external driver for the Floral ahead-of-time
// compiler: it wires file I/O, flag parsing, and the assembler/linker
// invocation around the pure internal/compiler pipeline (spec.md §6
// "External interfaces").
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
