// Package dataflow implements a generic forward dataflow engine
// parameterized over any bounded lattice (spec.md §4.5), grounded on
// original_source/src/kirin/analysis/forward.py and
// original_source/src/kirin/interp/abstract.py's worklist-driven
// run_ssacfg_region/run_block.
package dataflow

import (
	"github.com/kirin-lang/kirin/ir"
	"github.com/kirin-lang/kirin/kconfig"
	"github.com/kirin-lang/kirin/kerr"
	"github.com/kirin-lang/kirin/lattice"
	"github.com/kirin-lang/kirin/types"
)

// Successor is a pending block to visit, paired with the lattice elements
// its block arguments should be joined with (mirrors interp.value.Successor,
// specialized to a lattice element type rather than a concrete value).
type Successor[L any] struct {
	Block     *ir.Block
	BlockArgs []L
}

// Frame is the forward analysis's per-call state: one lattice element per
// SSA value seen so far (joined monotonically, never overwritten), a
// pending-successor worklist, and a slot for analysis-specific extra data
// (e.g. constprop's purity bookkeeping).
type Frame[L lattice.BoundedLattice[L]] struct {
	Entries  map[*ir.SSAValue]L
	Worklist []Successor[L]
	Extra    any
}

// NewFrame builds an empty frame.
func NewFrame[L lattice.BoundedLattice[L]]() *Frame[L] {
	return &Frame[L]{Entries: make(map[*ir.SSAValue]L)}
}

// PushSuccessor enqueues block for evaluation with the given argument
// elements. Branch-like statement implementations call this directly
// (mirroring how the original's control-flow dialect pushes onto
// frame.worklist as a side effect of evaluating a terminator).
func (f *Frame[L]) PushSuccessor(block *ir.Block, args ...L) {
	f.Worklist = append(f.Worklist, Successor[L]{Block: block, BlockArgs: args})
}

func (f *Frame[L]) popSuccessor() (Successor[L], bool) {
	if len(f.Worklist) == 0 {
		var zero Successor[L]
		return zero, false
	}
	n := len(f.Worklist)
	s := f.Worklist[n-1]
	f.Worklist = f.Worklist[:n-1]
	return s, true
}

// Get returns the current lattice element bound to key, or the lattice's
// Bottom if key has not been recorded yet.
func (f *Frame[L]) Get(key *ir.SSAValue) L {
	if v, ok := f.Entries[key]; ok {
		return v
	}
	var zero L
	return zero.Bottom()
}

// SetValues joins each of keys' current element (if any) with the
// corresponding entry of values, matching ForwardExtra.set_values: a
// dataflow frame never loses information by revisiting a value, it only
// accumulates.
func (f *Frame[L]) SetValues(keys []*ir.SSAValue, values []L) {
	n := len(keys)
	if len(values) < n {
		n = len(values)
	}
	for i := 0; i < n; i++ {
		k, v := keys[i], values[i]
		if existing, ok := f.Entries[k]; ok {
			f.Entries[k] = existing.Join(v)
		} else {
			f.Entries[k] = v
		}
	}
}

// ResultKind tags a statement's outcome within the forward engine.
type ResultKind int

const (
	// Values carries one lattice element per declared result.
	Values ResultKind = iota
	// Return unwinds the enclosing block with a single element (must be
	// the block's last statement).
	Return
	// NoOp means the implementation already pushed its own successors
	// onto the frame's worklist (a branch-like terminator) and nothing
	// further needs to happen for this statement.
	NoOp
)

// Result is the outcome of evaluating one statement under the forward
// engine.
type Result[L any] struct {
	Kind   ResultKind
	Values []L
	Return L
}

// AsValues builds a Values result.
func AsValues[L any](values ...L) Result[L] { return Result[L]{Kind: Values, Values: values} }

// AsReturn builds a Return result.
func AsReturn[L any](v L) Result[L] { return Result[L]{Kind: Return, Return: v} }

// AsNoOp builds a NoOp result.
func AsNoOp[L any]() Result[L] { return Result[L]{Kind: NoOp} }

// Impl is the analysis-dispatch signature every dialect registers under an
// analysis's chosen key (e.g. "typeinfer", "constprop").
type Impl[L lattice.BoundedLattice[L]] func(engine *Engine[L], frame *Frame[L], stmt *ir.Statement) (Result[L], error)

// Engine drives the forward dataflow analysis: dispatch table plus the
// max-depth bound on cross-method calls (spec.md §4.5 "bounded by
// max_depth").
type Engine[L lattice.BoundedLattice[L]] struct {
	Dialects *ir.DialectGroup
	Key      string
	registry *ir.InterpRegistry

	MaxDepth int
	depth    int

	SaveAllSSA bool
	Results    map[*ir.SSAValue]L

	// Oracle, if set, is consulted before the dialect registry for every
	// statement; returning handled=false falls through to the normal
	// dispatch. constprop uses this to short-circuit ConstantLike/Pure
	// statements through the concrete interpreter instead of a
	// hand-written constprop.Impl (spec.md §4.5 "use the concrete
	// interpreter as oracle"), mirroring Propagate.eval_stmt's
	// try_eval_const special case in the original.
	Oracle func(frame *Frame[L], stmt *ir.Statement) (Result[L], bool, error)
}

// New builds a forward-analysis engine selecting dialects' Key
// interpretation tables (falling back to "empty"), per spec.md §4.3.
func New[L lattice.BoundedLattice[L]](dialects *ir.DialectGroup, key string) *Engine[L] {
	return &Engine[L]{
		Dialects: dialects,
		Key:      key,
		registry: dialects.Registry([]string{key, "empty"}),
		MaxDepth: kconfig.DefaultMaxDepth,
		Results:  make(map[*ir.SSAValue]L),
	}
}

// Run analyzes method, starting every argument at the lattice's Top
// element (the standard "nothing is known yet, narrow from the top"
// dataflow convention), and returns the per-SSA-value result map plus the
// method's overall return element.
func (e *Engine[L]) Run(method *ir.Method) (map[*ir.SSAValue]L, L, error) {
	var zero L
	argTypes, err := method.ArgTypes()
	if err != nil {
		return nil, zero.Bottom(), err
	}
	args := make([]L, len(argTypes))
	for i := range args {
		args[i] = zero.Top()
	}
	return e.RunWithArgs(method, args)
}

// RunWithArgs analyzes method starting from the given argument elements
// (used by cross-method call handling to narrow a callee with the
// caller's actual argument lattice elements instead of Top). args are the
// actual arguments only: the entry block's first slot is the method's
// self binding (see ir.Method.Args), which starts at Top.
func (e *Engine[L]) RunWithArgs(method *ir.Method, args []L) (map[*ir.SSAValue]L, L, error) {
	var zero L
	if e.depth >= e.MaxDepth {
		return nil, zero.Bottom(), kerr.NewDepthExceededError(e.MaxDepth)
	}
	e.depth++
	defer func() { e.depth-- }()

	region, err := method.CallableRegion()
	if err != nil {
		return nil, zero.Bottom(), err
	}

	frame := NewFrame[L]()
	args = append([]L{zero.Top()}, args...)
	result, err := e.runRegion(frame, region, args)
	if err != nil {
		return nil, zero.Bottom(), err
	}

	if e.SaveAllSSA {
		for k, v := range frame.Entries {
			e.Results[k] = v
		}
	} else {
		e.Results = frame.Entries
	}
	return frame.Entries, result, nil
}

func (e *Engine[L]) runRegion(frame *Frame[L], region *ir.Region, args []L) (L, error) {
	var zero L
	if len(region.Blocks) == 0 {
		return zero.Bottom(), nil
	}
	entry := region.Entry()
	frame.PushSuccessor(entry, args...)

	result := zero.Bottom()
	for {
		succ, ok := frame.popSuccessor()
		if !ok {
			break
		}
		blockResult, err := e.runBlock(frame, succ)
		if err != nil {
			return zero.Bottom(), err
		}
		result = blockResult.Join(result)
	}
	return result, nil
}

// RunYieldingRegion runs region's SSA-CFG to completion the same way
// runRegion does, except termination is a statement whose class signature
// matches yieldSig (an scf.Yield) rather than a func.Return: that
// statement's operand elements are read directly out of the frame and
// returned, without being dispatched through the registry — it performs no
// computation of its own, it is purely the exit marker of a structured
// control-flow region owned by an enclosing statement (spec.md §4.5,
// "YieldValue(values) -> produce region result"). Used by scf.IfElse/For's
// constprop and typeinfer tables to analyze their nested regions with the
// same dispatch the enclosing engine already has configured.
func RunYieldingRegion[L lattice.BoundedLattice[L]](e *Engine[L], region *ir.Region, yieldSig ir.Signature) ([]L, error) {
	if len(region.Blocks) == 0 {
		return nil, nil
	}
	frame := NewFrame[L]()
	frame.PushSuccessor(region.Entry())

	for {
		succ, ok := frame.popSuccessor()
		if !ok {
			return nil, nil
		}
		frame.SetValues(succ.Block.Args, succ.BlockArgs)

		for stmt := succ.Block.FirstStmt(); stmt != nil; stmt = stmt.Next() {
			if ir.ClassSignature(stmt.Kind) == yieldSig {
				values := make([]L, len(stmt.Args))
				for i, a := range stmt.Args {
					values[i] = frame.Get(a)
				}
				return values, nil
			}
			res, err := e.evalStmt(frame, stmt)
			if err != nil {
				return nil, err
			}
			switch res.Kind {
			case Values:
				frame.SetValues(stmt.Results, res.Values)
			case Return:
				return []L{res.Return}, nil
			case NoOp:
				// the implementation pushed its own successors.
			}
		}
	}
}

func (e *Engine[L]) runBlock(frame *Frame[L], succ Successor[L]) (L, error) {
	frame.SetValues(succ.Block.Args, succ.BlockArgs)

	for stmt := succ.Block.FirstStmt(); stmt != nil; stmt = stmt.Next() {
		res, err := e.evalStmt(frame, stmt)
		if err != nil {
			var zero L
			return zero, err
		}
		switch res.Kind {
		case Values:
			frame.SetValues(stmt.Results, res.Values)
		case Return:
			return res.Return, nil
		case NoOp:
			// the implementation pushed its own successors.
		}
	}
	var zero L
	return zero.Bottom(), nil
}

func (e *Engine[L]) evalStmt(frame *Frame[L], stmt *ir.Statement) (Result[L], error) {
	if e.Oracle != nil {
		if res, handled, err := e.Oracle(frame, stmt); handled || err != nil {
			return res, err
		}
	}
	impl, ok := e.lookup(stmt)
	if !ok {
		return Result[L]{}, kerr.NewDispatchError(stmt.Kind.Name(), string(e.buildSignature(stmt)))
	}
	return impl(e, frame, stmt)
}

func (e *Engine[L]) buildSignature(stmt *ir.Statement) ir.Signature {
	argTypes := make([]types.Type, len(stmt.Args))
	for i, a := range stmt.Args {
		if a != nil {
			argTypes[i] = a.Type
		}
	}
	return ir.StmtSignature(stmt.Kind, argTypes)
}

func (e *Engine[L]) lookup(stmt *ir.Statement) (Impl[L], bool) {
	sig := e.buildSignature(stmt)
	if entry, ok := e.registry.Table[sig]; ok {
		if impl, ok := entry.Impl.(Impl[L]); ok {
			return impl, true
		}
	}
	classSig := ir.ClassSignature(stmt.Kind)
	if entry, ok := e.registry.Table[classSig]; ok {
		if impl, ok := entry.Impl.(Impl[L]); ok {
			return impl, true
		}
	}
	return nil, false
}
