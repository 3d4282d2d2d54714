// Package scf is the structured-control-flow dialect: IfElse (two
// SSA-CFG regions yielding a joined result, scenario 3's vehicle for a
// union-typed branch return) and For (one region carrying loop state
// through block arguments). Grounded on
// original_source/src/kirin/dialects/scf/{stmts.py,interp.py,constprop.py,
// typeinfer.py}.
package scf

import (
	"github.com/kirin-lang/kirin/constprop"
	"github.com/kirin-lang/kirin/dataflow"
	"github.com/kirin-lang/kirin/interp"
	"github.com/kirin-lang/kirin/ir"
	"github.com/kirin-lang/kirin/kerr"
	"github.com/kirin-lang/kirin/types"
)

// yieldKind is scf's region terminator: it carries zero-or-more values out
// of a region to the statement that owns it (IfElse's branch regions,
// For's body region), distinct from func.Return which unwinds the whole
// callable.
type yieldKind struct{}

func (yieldKind) Name() string      { return "yield" }
func (yieldKind) Dialect() string   { return "scf" }
func (yieldKind) Traits() []ir.Trait { return []ir.Trait{ir.IsTerminator} }
func (yieldKind) NumRegions() int   { return 0 }

// YieldKind is the singleton tag for scf.Yield.
var YieldKind ir.StatementKind = yieldKind{}

// NewYield builds an scf.Yield producing values as the owning region's
// result.
func NewYield(values ...*ir.SSAValue) *ir.Statement {
	return ir.NewStatement(yieldKind{}, values, nil, nil, nil, nil)
}

type ifElseKind struct{}

func (ifElseKind) Name() string    { return "if_else" }
func (ifElseKind) Dialect() string { return "scf" }
func (ifElseKind) Traits() []ir.Trait {
	return []ir.Trait{ir.IsolatedFromAbove}
}
func (ifElseKind) NumRegions() int { return 2 }

// IfElseKind is the singleton tag for scf.IfElse.
var IfElseKind ir.StatementKind = ifElseKind{}

// NewIfElse builds an scf.IfElse testing cond, running thenRegion when true
// and elseRegion when false, both of which must end every path in an
// scf.Yield producing len(resultTypes) values.
func NewIfElse(cond *ir.SSAValue, thenRegion, elseRegion *ir.Region, resultTypes []types.Type) *ir.Statement {
	return ir.NewStatement(ifElseKind{}, []*ir.SSAValue{cond}, nil, nil, []*ir.Region{thenRegion, elseRegion}, resultTypes)
}

type forKind struct{}

func (forKind) Name() string    { return "for" }
func (forKind) Dialect() string { return "scf" }
func (forKind) Traits() []ir.Trait {
	return []ir.Trait{ir.IsolatedFromAbove}
}
func (forKind) NumRegions() int { return 1 }

// ForKind is the singleton tag for scf.For.
var ForKind ir.StatementKind = forKind{}

// NewFor builds an scf.For iterating iterable (a host iterator/sequence
// value) with body's entry block bound to (element, loop-carried...) each
// iteration; body must end every path in an scf.Yield producing the next
// loop-carried values. Results mirror the final loop-carried values.
func NewFor(iterable *ir.SSAValue, initial []*ir.SSAValue, body *ir.Region, resultTypes []types.Type) *ir.Statement {
	args := append([]*ir.SSAValue{iterable}, initial...)
	return ir.NewStatement(forKind{}, args, nil, nil, []*ir.Region{body}, resultTypes)
}

// Dialect is the scf dialect: Yield/IfElse/For plus their "main",
// "constprop", and "typeinfer" tables.
var Dialect = buildDialect()

func buildDialect() *ir.Dialect {
	d := ir.NewDialect("scf")
	d.RegisterStmt(yieldKind{})
	d.RegisterStmt(ifElseKind{})
	d.RegisterStmt(forKind{})

	registerConcrete(d)
	registerConstprop(d)
	registerTypeinfer(d)
	return d
}

func registerConcrete(d *ir.Dialect) {
	main := d.Interp("main")

	// runYieldingRegion intercepts Yield before dispatch reaches this
	// table; this registration only fires if a caller evaluates a bare
	// Yield statement directly (e.g. via Interpreter.EvalStmt).
	main.Register(ir.ClassSignature(yieldKind{}), interp.Impl(func(_ *interp.Interpreter, frame *interp.Frame, s *ir.Statement) (interp.Result, error) {
		return interp.AsValues(frame.GetValues(s.Args)...), nil
	}))

	main.Register(ir.ClassSignature(ifElseKind{}), interp.Impl(func(in *interp.Interpreter, frame *interp.Frame, s *ir.Statement) (interp.Result, error) {
		cond, ok := frame.Get(s.Args[0]).(bool)
		if !ok {
			return interp.Result{}, kerr.NewDispatchError("scf.if_else", "condition is not a bool")
		}
		region := s.Regions[1]
		if cond {
			region = s.Regions[0]
		}
		values, err := runYieldingRegion(in, frame, region, nil)
		if err != nil {
			return interp.Result{}, err
		}
		return interp.AsValues(values...), nil
	}))

	main.Register(ir.ClassSignature(forKind{}), interp.Impl(func(in *interp.Interpreter, frame *interp.Frame, s *ir.Statement) (interp.Result, error) {
		iterable := frame.Get(s.Args[0])
		carried := frame.GetValues(s.Args[1:])
		items, err := toSlice(iterable)
		if err != nil {
			return interp.Result{}, err
		}
		for _, item := range items {
			args := append([]any{item}, carried...)
			values, err := runYieldingRegion(in, frame, s.Regions[0], args)
			if err != nil {
				return interp.Result{}, err
			}
			carried = values
		}
		return interp.AsValues(carried...), nil
	}))
}

// runYieldingRegion drives region's SSA-CFG exactly like
// Interpreter.runRegion, except a non-terminating exit is an scf.Yield
// instead of func.Return: this is the "structured control flow with its
// own local CFG" shape spec.md §4.4 describes generically for any
// CallableStmtInterface-adjacent nested region.
func runYieldingRegion(in *interp.Interpreter, frame *interp.Frame, region *ir.Region, args []any) ([]any, error) {
	if len(region.Blocks) == 0 {
		return nil, nil
	}
	block := region.Entry()
	for block != nil {
		frame.SetValues(block.Args, args)
		stmt := block.FirstStmt()
		var next *ir.Block
		for stmt != nil {
			if ir.ClassSignature(stmt.Kind) == yieldClassSig {
				return frame.GetValues(stmt.Args), nil
			}
			result, err := in.EvalStmt(stmt, frame.GetValues(stmt.Args))
			if err != nil {
				return nil, err
			}
			switch result.Kind {
			case interp.Values:
				frame.SetValues(stmt.Results, result.ResultValues)
			case interp.ToSuccessor:
				next = result.Block
				args = result.BlockArgs
				stmt = nil
				continue
			}
			stmt = stmt.Next()
		}
		block = next
	}
	return nil, nil
}

func toSlice(v any) ([]any, error) {
	switch x := v.(type) {
	case []any:
		return x, nil
	case []int64:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out, nil
	}
	return nil, kerr.NewDispatchError("scf.for", "iterable is not a sequence")
}

// registerConstprop registers constprop's narrowing of IfElse (the taken
// branch's Yield results when the condition is a known bool, otherwise the
// join of both branches' Yield results, matching the original's
// conservative over-approximation) and For (Unknown for every result — a
// sound over-approximation; the loop body is not analyzed, since the
// kernel does not attempt trip-count reasoning).
func registerConstprop(d *ir.Dialect) {
	cp := d.Interp("constprop")

	cp.Register(ir.ClassSignature(ifElseKind{}), dataflow.Impl[constprop.Result](func(engine *dataflow.Engine[constprop.Result], frame *dataflow.Frame[constprop.Result], s *ir.Statement) (dataflow.Result[constprop.Result], error) {
		condElem := frame.Get(s.Args[0])
		thenVals, err := runAnalysisRegion(engine, s.Regions[0], len(s.Results))
		if err != nil {
			return dataflow.Result[constprop.Result]{}, err
		}
		if condElem.Kind == constprop.KindValue {
			if b, ok := condElem.Data.(bool); ok {
				if b {
					return dataflow.AsValues(thenVals...), nil
				}
				elseVals, err := runAnalysisRegion(engine, s.Regions[1], len(s.Results))
				if err != nil {
					return dataflow.Result[constprop.Result]{}, err
				}
				return dataflow.AsValues(elseVals...), nil
			}
		}
		elseVals, err := runAnalysisRegion(engine, s.Regions[1], len(s.Results))
		if err != nil {
			return dataflow.Result[constprop.Result]{}, err
		}
		joined := make([]constprop.Result, len(s.Results))
		for i := range joined {
			joined[i] = thenVals[i].Join(elseVals[i])
		}
		return dataflow.AsValues(joined...), nil
	}))

	cp.Register(ir.ClassSignature(forKind{}), dataflow.Impl[constprop.Result](func(_ *dataflow.Engine[constprop.Result], frame *dataflow.Frame[constprop.Result], s *ir.Statement) (dataflow.Result[constprop.Result], error) {
		out := make([]constprop.Result, len(s.Results))
		for i := range out {
			out[i] = constprop.Unknown()
		}
		return dataflow.AsValues(out...), nil
	}))
}

// runAnalysisRegion runs region's blocks directly against frame-shared
// lattice state, per spec.md §4.5's treatment of a nested SSA-CFG region:
// a scaled-down version of Engine.runRegion that stops at scf.Yield instead
// of func.Return.
func runAnalysisRegion(engine *dataflow.Engine[constprop.Result], region *ir.Region, numResults int) ([]constprop.Result, error) {
	if len(region.Blocks) == 0 {
		out := make([]constprop.Result, numResults)
		for i := range out {
			out[i] = constprop.BottomResult()
		}
		return out, nil
	}
	values, err := dataflow.RunYieldingRegion(engine, region, yieldClassSig)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = make([]constprop.Result, numResults)
		for i := range values {
			values[i] = constprop.BottomResult()
		}
	}
	return values, nil
}

var yieldClassSig = ir.ClassSignature(yieldKind{})

// registerTypeinfer mirrors registerConstprop's IfElse/For join logic over
// the type lattice instead: IfElse's result type is the Union of both
// branches (spec.md §8 scenario 3: "Inferred return type is Int ∪ Float"),
// For's is the Join of the initial and post-body types (a single widening
// step, matching the const lattice's own one-step widening convention).
func registerTypeinfer(d *ir.Dialect) {
	ti := d.Interp("typeinfer")

	ti.Register(ir.ClassSignature(ifElseKind{}), dataflow.Impl[types.Elem](func(engine *dataflow.Engine[types.Elem], _ *dataflow.Frame[types.Elem], s *ir.Statement) (dataflow.Result[types.Elem], error) {
		thenVals, err := dataflow.RunYieldingRegion(engine, s.Regions[0], yieldClassSig)
		if err != nil {
			return dataflow.Result[types.Elem]{}, err
		}
		elseVals, err := dataflow.RunYieldingRegion(engine, s.Regions[1], yieldClassSig)
		if err != nil {
			return dataflow.Result[types.Elem]{}, err
		}
		out := make([]types.Elem, len(s.Results))
		for i := range out {
			var t, e types.Elem
			if i < len(thenVals) {
				t = thenVals[i]
			} else {
				t = types.Of(types.Bottom())
			}
			if i < len(elseVals) {
				e = elseVals[i]
			} else {
				e = types.Of(types.Bottom())
			}
			out[i] = t.Join(e)
		}
		return dataflow.AsValues(out...), nil
	}))

	ti.Register(ir.ClassSignature(forKind{}), dataflow.Impl[types.Elem](func(engine *dataflow.Engine[types.Elem], frame *dataflow.Frame[types.Elem], s *ir.Statement) (dataflow.Result[types.Elem], error) {
		initial := make([]types.Elem, len(s.Args)-1)
		for i, a := range s.Args[1:] {
			initial[i] = frame.Get(a)
		}
		bodyVals, err := dataflow.RunYieldingRegion(engine, s.Regions[0], yieldClassSig)
		if err != nil {
			return dataflow.Result[types.Elem]{}, err
		}
		out := make([]types.Elem, len(s.Results))
		for i := range out {
			acc := initial[i]
			if i < len(bodyVals) {
				acc = acc.Join(bodyVals[i])
			}
			out[i] = acc
		}
		return dataflow.AsValues(out...), nil
	}))
}
