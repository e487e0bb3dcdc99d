package verifier

import "fmt"

// Unconditional rather than gated behind a "debug" build tag: an
// internal invariant violation here means the simulator itself is in a
// corrupt state, and masking it as a recoverable divergence would hide
// a bug in the block device, superblock, or schema layers.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
