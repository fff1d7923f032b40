/*
File: main.go
Description: Unchecked variant of the demonstration fuzz target. Identical to
cmd/target except that the trigger inspection indexes the bytes actually read
without a length check, so inputs like "AFL" (3 bytes) or an empty stream fault
with a runtime bounds panic. This preserves the original out-of-bounds read
defect as a distinct, detectable abnormal termination.
*/

package main

import (
	"os"

	"github.com/aflmon/aflmon/pkg/target"
)

func main() {
	os.Exit(target.Run(os.Stdin, target.PolicyUnchecked))
}
