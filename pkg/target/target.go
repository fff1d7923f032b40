/*
File: target.go
Description: Demonstration fuzz target core. Reads a single buffer from an input
stream and deliberately raises SIGABRT when the input starts with the trigger
pattern "AFL!", simulating a crash for external fuzzing harnesses. Ships two
inspection policies: a bounds-checked one and one that preserves the classic
out-of-bounds read defect as a detectable runtime fault.
*/

package target

import (
	"io"
	"os"
	"runtime/debug"
	"syscall"
)

// BufferSize is the fixed capacity of the input buffer. At most BufferSize-1
// bytes are read per invocation, mirroring the classic demo target.
const BufferSize = 100

// Policy selects how the trigger inspection treats input shorter than the
// four-byte pattern.
type Policy int

const (
	// PolicyChecked treats under-length input as a non-match.
	PolicyChecked Policy = iota

	// PolicyUnchecked indexes the bytes actually read without a length check.
	// Input shorter than the inspected positions faults with a runtime bounds
	// panic, keeping the original defect observable by a fuzzer.
	PolicyUnchecked
)

// abort is swapped out in tests; the real implementation never returns.
var abort = raiseAbort

// Matches reports whether data begins with the trigger pattern "AFL!".
// Under-length input is a non-match.
func Matches(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	return MatchesUnchecked(data)
}

// MatchesUnchecked inspects positions 0, 1, 2 and (conditionally) 3 by direct
// index. Like the C original, the inspection short-circuits, so position 3 is
// only touched once the "AFL" prefix matched. Panics if an inspected position
// lies beyond len(data).
func MatchesUnchecked(data []byte) bool {
	if data[0] == 'A' && data[1] == 'F' && data[2] == 'L' {
		if data[3] == '!' {
			return true
		}
	}
	return false
}

// Run executes the target sequence against r: one read of up to BufferSize-1
// bytes, one trigger inspection, one exit outcome. Returns the exit status for
// the caller to pass to os.Exit. On a trigger match it does not return; the
// process dies with SIGABRT.
//
// Go readers report end-of-stream as io.EOF rather than a negative count, so
// EOF maps to the zero-byte-read path and every other error maps to the
// read-failure path (status 1).
func Run(r io.Reader, policy Policy) int {
	buf := make([]byte, BufferSize)
	n, err := r.Read(buf[:BufferSize-1])
	if err != nil && err != io.EOF {
		return 1
	}

	var matched bool
	switch policy {
	case PolicyUnchecked:
		matched = MatchesUnchecked(buf[:n])
	default:
		matched = Matches(buf[:n])
	}

	if matched {
		abort()
	}
	return 0
}

// raiseAbort delivers SIGABRT to the current process, matching C abort()
// semantics: the harness observes a signal-class termination, not an exit code.
//
// The Go runtime normally intercepts SIGABRT, prints a traceback, and exits
// with status 2, which a wait-status harness would misread as a clean exit.
// Raising the traceback level to "crash" makes the runtime restore the default
// disposition and re-raise, so the process genuinely dies by SIGABRT. The
// runtime still emits its traceback on stderr first; only the termination
// status is part of the contract.
func raiseAbort() {
	debug.SetTraceback("crash")
	_ = syscall.Kill(os.Getpid(), syscall.SIGABRT)
	// Only reached if SIGABRT is blocked; 134 is the shell's 128+SIGABRT.
	os.Exit(134)
}
