/*
File: main.go
Description: Bounds-checked demonstration fuzz target. Reads up to 99 bytes from
stdin and dies with SIGABRT when the input starts with "AFL!"; anything else,
including short or empty input, exits 0. Takes no arguments, reads no
environment, writes no output.
*/

package main

import (
	"os"

	"github.com/aflmon/aflmon/pkg/target"
)

func main() {
	os.Exit(target.Run(os.Stdin, target.PolicyChecked))
}
