package interp

import (
	"github.com/kirin-lang/kirin/ir"
	"github.com/kirin-lang/kirin/kconfig"
	"github.com/kirin-lang/kirin/kerr"
	"github.com/kirin-lang/kirin/types"
)

// Impl is the concrete-interpretation signature every dialect registers
// under the "main" key: given the running interpreter, the current frame,
// and the statement, produce its Result.
type Impl func(interp *Interpreter, frame *Frame, stmt *ir.Statement) (Result, error)

// Keys is the key-preference list the concrete interpreter selects
// per-dialect interpretation tables with (spec.md §4.3/§4.4): "main" first,
// falling back to a dialect's "empty" table if it declares no main
// implementation for some statement kind.
var Keys = []string{"main", "empty"}

// Interpreter is the concrete, tree-walking interpreter over the SSA-CFG
// region convention.
type Interpreter struct {
	Dialects *ir.DialectGroup
	registry *ir.InterpRegistry
	state    *State

	Fuel        int
	FuelLimited bool
	MaxDepth    int
	Debug       bool

	evaluating bool
}

// SetFuel bounds the interpreter to n statement evaluations. Passing
// kconfig.NoFuelLimit disables the bound again.
func (in *Interpreter) SetFuel(n int) {
	in.Fuel = n
	in.FuelLimited = n != kconfig.NoFuelLimit
}

// New builds a concrete interpreter over dialects, with kconfig's defaults
// for fuel (unlimited) and max depth.
func New(dialects *ir.DialectGroup) *Interpreter {
	return &Interpreter{
		Dialects: dialects,
		registry: dialects.Registry(Keys),
		state:    &State{},
		Fuel:     kconfig.NoFuelLimit,
		MaxDepth: kconfig.DefaultMaxDepth,
		Debug:    kconfig.Debug,
	}
}

// State exposes the interpreter's live frame stack, e.g. for attaching a
// trace to an error.
func (in *Interpreter) State() *State { return in.state }

// Call evaluates a top-level Callable with args. Calling a Method takes the
// reentrancy lock and resets interpreter state, matching the original's
// __call_method convention: a second call into the same Interpreter while
// one is already running is an error, forcing callers to either use a
// fresh Interpreter or call the bare statement via CallStmt instead.
func (in *Interpreter) Call(c Callable, args ...any) (any, error) {
	if m, ok := c.(methodCallable); ok {
		return in.callMethod(m.m, args...)
	}
	return in.callStmt(c.callableStmt(), nil, args...)
}

// CallNested invokes method from within a statement implementation that is
// itself already running under Call's reentrancy lock (e.g. the func
// dialect's Call/Invoke): it pushes a new frame onto the interpreter's
// existing call stack via callStmt, enforcing the same max-depth bound,
// without resetting interpreter state or re-taking the lock. This is the
// "ordinary nested function call" path; Call/top-level re-entry into an
// idle Interpreter still goes through Call and is rejected while one is
// already in flight.
func (in *Interpreter) CallNested(m *ir.Method, args ...any) (any, error) {
	return in.callStmt(m.Code, m, args...)
}

func (in *Interpreter) callMethod(m *ir.Method, args ...any) (any, error) {
	if in.evaluating {
		return nil, kerr.NewReentrancyError("Interpreter")
	}
	in.evaluating = true
	in.state = &State{}
	defer func() { in.evaluating = false }()

	result, err := in.callStmt(m.Code, m, args...)
	if err != nil {
		return nil, kerr.NewInterpreterError("call failed", in.state.FrameTrace(), err)
	}
	return result, nil
}

func (in *Interpreter) callStmt(code *ir.Statement, method *ir.Method, args ...any) (any, error) {
	if in.state.Depth() >= in.MaxDepth {
		return nil, kerr.NewDepthExceededError(in.MaxDepth)
	}

	trait, ok := ir.HasStmtTrait[ir.CallableStmtInterface](code)
	if !ok {
		return nil, kerr.NewDispatchError(code.Kind.Name(), "CallableStmtInterface")
	}

	frame := NewFrame(method)
	in.state.PushFrame(frame)
	defer in.state.PopFrame()

	if method != nil {
		// Slot 0 of a method's entry block is its self binding (see
		// ir.Method.Args); the caller's args fill the slots after it.
		args = append([]any{method}, args...)
	}
	region := trait.GetCallableRegion(code)
	return in.runRegion(frame, region, args)
}

// runRegion drives the SSA-CFG region convention: start at the entry block
// with args bound to its block arguments, execute statements in order,
// and follow Successor/Return results until the region yields (spec.md
// §4.4).
func (in *Interpreter) runRegion(frame *Frame, region *ir.Region, args []any) (any, error) {
	if len(region.Blocks) == 0 {
		return nil, nil
	}

	block := region.Entry()
	for block != nil {
		frame.SetValues(block.Args, args)

		stmt := block.FirstStmt()
		var next *ir.Block
		for stmt != nil {
			if !in.consumeFuel() {
				return nil, kerr.NewFuelExhaustedError(in.Fuel)
			}

			frame.SetStmt(stmt)
			result, err := in.evalStmt(frame, stmt)
			if err != nil {
				return nil, err
			}

			switch result.Kind {
			case Values:
				frame.SetValues(stmt.Results, result.ResultValues)
			case Return:
				return result.ReturnValue, nil
			case ToSuccessor:
				next = result.Block
				args = result.BlockArgs
				stmt = nil
				continue
			}
			stmt = stmt.Next()
		}
		if next == nil && block.Terminator() == nil {
			return nil, kerr.NewNonTerminatedBlockError(block.Name)
		}
		block = next
	}
	return nil, nil
}

// EvalStmt evaluates stmt in isolation, binding its operands to args by
// position rather than pulling them from a live frame. constprop uses this
// to run the concrete interpreter as an oracle for ConstantLike/Pure
// statements (spec.md §4.5), mirroring the original's
// Interpreter.eval_stmt(stmt, args) entry point used the same way by
// Propagate.try_eval_const.
func (in *Interpreter) EvalStmt(stmt *ir.Statement, args []any) (Result, error) {
	frame := NewFrame(nil)
	frame.SetValues(stmt.Args, args)
	frame.SetStmt(stmt)
	return in.evalStmt(frame, stmt)
}

// evalStmt looks up and runs stmt's implementation, falling back to a
// dispatch error when the registry has no entry for its signature under
// either of the two resolution levels (spec.md §4.3).
func (in *Interpreter) evalStmt(frame *Frame, stmt *ir.Statement) (Result, error) {
	impl, ok := in.lookup(stmt)
	if !ok {
		return Result{}, kerr.NewDispatchError(stmt.Kind.Name(), string(in.buildSignature(stmt)))
	}
	return impl(in, frame, stmt)
}

func (in *Interpreter) buildSignature(stmt *ir.Statement) ir.Signature {
	argTypes := make([]types.Type, len(stmt.Args))
	for i, a := range stmt.Args {
		if a != nil {
			argTypes[i] = a.Type
		}
	}
	return ir.StmtSignature(stmt.Kind, argTypes)
}

func (in *Interpreter) lookup(stmt *ir.Statement) (Impl, bool) {
	sig := in.buildSignature(stmt)
	if entry, ok := in.registry.Table[sig]; ok {
		if impl, ok := entry.Impl.(Impl); ok {
			return impl, true
		}
	}
	classSig := ir.ClassSignature(stmt.Kind)
	if entry, ok := in.registry.Table[classSig]; ok {
		if impl, ok := entry.Impl.(Impl); ok {
			return impl, true
		}
	}
	return nil, false
}

func (in *Interpreter) consumeFuel() bool {
	if !in.FuelLimited {
		return true
	}
	if in.Fuel <= 0 {
		return false
	}
	in.Fuel--
	return true
}
