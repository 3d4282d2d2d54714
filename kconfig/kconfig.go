// Package kconfig holds the kernel's tunables as a flat block of constants
// and package-level variables, in the style of funxy's internal/config
// package rather than a configuration-file loader — nothing in this kernel
// reads configuration from the environment, so no loader is provided.
package kconfig

// DefaultMaxDepth bounds the concrete and abstract interpreters' call stack.
const DefaultMaxDepth = 1000

// DefaultMaxPythonRecursionDepth has no Go analogue (the teacher's Python
// host raises its own recursion limit during eval); it is kept as a named
// constant only. No package reads it: dataflow's engines bound cross-method
// recursion with DefaultMaxDepth.
const DefaultMaxPythonRecursionDepth = 8192

// DefaultMaxIter bounds rewrite.Fixpoint when the caller does not specify
// one explicitly.
const DefaultMaxIter = 64

// NoFuelLimit disables the interpreter's fuel counter.
const NoFuelLimit = 0

// Debug is copied into each new Interpreter's Debug field by interp.New.
// No interpreter code path reads that field, so it performs no
// statement-result shape check. Off by default.
var Debug = false

// IsTestMode mirrors funxy's config.IsTestMode. No package in this kernel
// (the ident package included) reads it.
var IsTestMode = false
