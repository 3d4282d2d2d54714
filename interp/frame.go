package interp

import "github.com/kirin-lang/kirin/ir"

// Frame is one call's evaluation state: the method being run, the
// statement/line currently executing, a globals snapshot, and the SSA
// value -> host-value environment. Frames are shared across all blocks of
// one region (spec.md §4.4 note: block-crossing does not allocate a new
// frame), matching original_source's Frame dataclass.
type Frame struct {
	Method  *ir.Method
	Stmt    *ir.Statement
	Lino    int
	Globals map[string]any

	entries map[*ir.SSAValue]any
}

// NewFrame builds an empty frame for method.
func NewFrame(method *ir.Method) *Frame {
	return &Frame{Method: method, Globals: make(map[string]any), entries: make(map[*ir.SSAValue]any)}
}

// Get returns the current value bound to key.
func (f *Frame) Get(key *ir.SSAValue) any { return f.entries[key] }

// GetValues returns the current values bound to each of keys, in order.
func (f *Frame) GetValues(keys []*ir.SSAValue) []any {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = f.entries[k]
	}
	return out
}

// SetValues binds each of keys to the corresponding entry of values.
func (f *Frame) SetValues(keys []*ir.SSAValue, values []any) {
	n := len(keys)
	if len(values) < n {
		n = len(values)
	}
	for i := 0; i < n; i++ {
		f.entries[keys[i]] = values[i]
	}
}

// SetStmt records stmt as the frame's current statement.
func (f *Frame) SetStmt(stmt *ir.Statement) *Frame {
	f.Stmt = stmt
	return f
}
