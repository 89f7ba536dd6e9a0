//go:build !noassert

package sim

// AssertionsEnabled tells if protocol assertions are compiled in.
const AssertionsEnabled = true
