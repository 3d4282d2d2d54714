// Package funcd is the function/call dialect: the Func statement a
// Method's Code is built from, Return, and the dynamic (Call) / static
// (Invoke) call statements that exercise the cross-method recursion paths
// of spec.md §4.5 and the Call2Invoke rewrite of §4.8. Grounded on
// original_source/src/kirin/dialects/func/{stmts.py,interp.py,
// constprop.py,infer.py}; named funcd (not func) because func is a Go
// keyword.
package funcd

import (
	"fmt"

	"github.com/kirin-lang/kirin/constprop"
	"github.com/kirin-lang/kirin/dataflow"
	"github.com/kirin-lang/kirin/interp"
	"github.com/kirin-lang/kirin/ir"
	"github.com/kirin-lang/kirin/kerr"
	"github.com/kirin-lang/kirin/types"
)

// FuncValue is the concrete runtime value a first-class method reference
// evaluates to: the Call statement's callee operand, once evaluated, must
// be one of these (matching the original's bound Method-as-value
// convention for func.Call's dynamic dispatch).
type FuncValue struct {
	Method *ir.Method
}

func (f FuncValue) String() string { return fmt.Sprintf("<func %s>", f.Method.SymName) }

type funcKind struct{}

func (funcKind) Name() string    { return "func" }
func (funcKind) Dialect() string { return "func" }
func (funcKind) Traits() []ir.Trait {
	return []ir.Trait{
		ir.CallableStmtInterface{RegionIndex: 0},
		ir.SymbolOpInterface{AttrKey: "sym_name"},
		ir.IsolatedFromAbove,
	}
}
func (funcKind) NumRegions() int { return 1 }

// FuncKind is the singleton tag for func.Func.
var FuncKind ir.StatementKind = funcKind{}

// NewFunc builds a func.Func statement whose sole region is body, carrying
// symName as its declared symbol (spec.md §3 "Method owns its top-level
// callable Statement").
func NewFunc(symName string, body *ir.Region) *ir.Statement {
	return ir.NewStatement(funcKind{}, nil, map[string]ir.Attribute{
		"sym_name": ir.SymbolAttr{Name: symName},
	}, nil, []*ir.Region{body}, nil)
}

type returnKind struct{}

func (returnKind) Name() string         { return "return" }
func (returnKind) Dialect() string      { return "func" }
func (returnKind) Traits() []ir.Trait   { return []ir.Trait{ir.IsTerminator} }
func (returnKind) NumRegions() int      { return 0 }

// ReturnKind is the singleton tag for func.Return.
var ReturnKind ir.StatementKind = returnKind{}

// NewReturn builds a func.Return unwinding the enclosing callable region
// with value.
func NewReturn(value *ir.SSAValue) *ir.Statement {
	return ir.NewStatement(returnKind{}, []*ir.SSAValue{value}, nil, nil, nil, nil)
}

type constMethodKind struct{}

func (constMethodKind) Name() string    { return "const_method" }
func (constMethodKind) Dialect() string { return "func" }
func (constMethodKind) Traits() []ir.Trait {
	return []ir.Trait{ir.ConstantLike, ir.Pure}
}
func (constMethodKind) NumRegions() int { return 0 }

// ConstMethodKind is the singleton tag for func.ConstMethod: a
// ConstantLike statement lifting a statically-known *ir.Method into an SSA
// value of signature type, the vehicle by which a lowering front-end (or a
// test) hands a first-class method reference to a func.Call.
var ConstMethodKind ir.StatementKind = constMethodKind{}

// NewConstMethod builds a func.ConstMethod producing a FuncValue for m.
func NewConstMethod(m *ir.Method, sig types.Type) *ir.Statement {
	return ir.NewStatement(constMethodKind{}, nil, map[string]ir.Attribute{
		"method": methodAttr{m: m},
	}, nil, nil, []types.Type{sig})
}

// methodAttr boxes an *ir.Method as an ir.Attribute payload (identity
// equality — two ConstMethod statements are equal only if they reference
// the exact same Method, matching how the original treats bound methods as
// opaque compile-time constants rather than structurally comparable data).
type methodAttr struct{ m *ir.Method }

func (methodAttr) AttrKind() string { return "func.method" }
func (a methodAttr) String() string { return a.m.SymName }
func (a methodAttr) AttrEqual(other ir.Attribute) bool {
	o, ok := other.(methodAttr)
	return ok && a.m == o.m
}

// ConstMethodOf reads the Method a func.ConstMethod statement carries.
func ConstMethodOf(s *ir.Statement) *ir.Method {
	return s.Attributes["method"].(methodAttr).m
}

type callKind struct{}

func (callKind) Name() string      { return "call" }
func (callKind) Dialect() string   { return "func" }
func (callKind) Traits() []ir.Trait { return []ir.Trait{ir.MaybePure} }
func (callKind) NumRegions() int   { return 0 }

// CallKind is the singleton tag for func.Call: dynamic dispatch on a
// first-class method value (spec.md §6 supplemented dialects).
var CallKind ir.StatementKind = callKind{}

// NewCall builds a func.Call whose first operand is the callee (a FuncValue
// at runtime) and the rest are the actual arguments.
func NewCall(callee *ir.SSAValue, args []*ir.SSAValue, result types.Type) *ir.Statement {
	allArgs := append([]*ir.SSAValue{callee}, args...)
	return ir.NewStatement(callKind{}, allArgs, nil, nil, nil, []types.Type{result})
}

type invokeKind struct{}

func (invokeKind) Name() string      { return "invoke" }
func (invokeKind) Dialect() string   { return "func" }
func (invokeKind) Traits() []ir.Trait { return []ir.Trait{ir.MaybePure} }
func (invokeKind) NumRegions() int   { return 0 }

// InvokeKind is the singleton tag for func.Invoke: statically-known-callee
// dispatch, the target of the Call2Invoke rewrite (spec.md §4.8).
var InvokeKind ir.StatementKind = invokeKind{}

// NewInvoke builds a func.Invoke of callee with args, all of which are the
// actual arguments (no callee operand — the callee is compile-time data).
func NewInvoke(callee *ir.Method, args []*ir.SSAValue, result types.Type) *ir.Statement {
	return ir.NewStatement(invokeKind{}, args, map[string]ir.Attribute{
		"callee": methodAttr{m: callee},
	}, nil, nil, []types.Type{result})
}

// InvokeCallee reads the statically-known Method an Invoke targets.
func InvokeCallee(s *ir.Statement) *ir.Method {
	return s.Attributes["callee"].(methodAttr).m
}

// Dialect is the func dialect: Func/Return/ConstMethod/Call/Invoke plus
// their "main" (concrete), "constprop", and "typeinfer" tables.
var Dialect = buildDialect()

func buildDialect() *ir.Dialect {
	d := ir.NewDialect("func")
	d.RegisterStmt(funcKind{})
	d.RegisterStmt(returnKind{})
	d.RegisterStmt(constMethodKind{})
	d.RegisterStmt(callKind{})
	d.RegisterStmt(invokeKind{})

	registerConcrete(d)
	registerConstprop(d)
	registerTypeinfer(d)
	return d
}

func registerConcrete(d *ir.Dialect) {
	main := d.Interp("main")

	main.Register(ir.ClassSignature(returnKind{}), interp.Impl(func(_ *interp.Interpreter, frame *interp.Frame, s *ir.Statement) (interp.Result, error) {
		return interp.AsReturn(frame.Get(s.Args[0])), nil
	}))

	main.Register(ir.ClassSignature(constMethodKind{}), interp.Impl(func(_ *interp.Interpreter, _ *interp.Frame, s *ir.Statement) (interp.Result, error) {
		return interp.AsValues(FuncValue{Method: ConstMethodOf(s)}), nil
	}))

	main.Register(ir.ClassSignature(callKind{}), interp.Impl(func(in *interp.Interpreter, frame *interp.Frame, s *ir.Statement) (interp.Result, error) {
		callee := frame.Get(s.Args[0])
		fv, ok := callee.(FuncValue)
		if !ok {
			return interp.Result{}, kerr.NewDispatchError("func.call", "callee is not a FuncValue")
		}
		args := frame.GetValues(s.Args[1:])
		ret, err := in.CallNested(fv.Method, args...)
		if err != nil {
			return interp.Result{}, err
		}
		return interp.AsValues(ret), nil
	}))

	main.Register(ir.ClassSignature(invokeKind{}), interp.Impl(func(in *interp.Interpreter, frame *interp.Frame, s *ir.Statement) (interp.Result, error) {
		args := frame.GetValues(s.Args)
		ret, err := in.CallNested(InvokeCallee(s), args...)
		if err != nil {
			return interp.Result{}, err
		}
		return interp.AsValues(ret), nil
	}))
}

// registerConstprop registers the constprop-key dispatch table for
// Return/Call/Invoke: Return is neither ConstantLike nor Pure so constprop's
// oracle never short-circuits it, and Call/Invoke must recurse into the
// callee's own analysis (spec.md §4.5 "cross-method calls"), bounded by the
// engine's MaxDepth, degrading to Bottom at depth exhaustion per the
// forward-analysis under-approximation convention.
func registerConstprop(d *ir.Dialect) {
	cp := d.Interp("constprop")

	cp.Register(ir.ClassSignature(returnKind{}), dataflow.Impl[constprop.Result](func(_ *dataflow.Engine[constprop.Result], frame *dataflow.Frame[constprop.Result], s *ir.Statement) (dataflow.Result[constprop.Result], error) {
		return dataflow.AsReturn(frame.Get(s.Args[0])), nil
	}))

	cp.Register(ir.ClassSignature(callKind{}), dataflow.Impl[constprop.Result](func(engine *dataflow.Engine[constprop.Result], frame *dataflow.Frame[constprop.Result], s *ir.Statement) (dataflow.Result[constprop.Result], error) {
		calleeElem := frame.Get(s.Args[0])
		if calleeElem.Kind != constprop.KindValue {
			return dataflow.AsValues(constprop.Unknown()), nil
		}
		fv, ok := calleeElem.Data.(FuncValue)
		if !ok {
			return dataflow.AsValues(constprop.Unknown()), nil
		}
		return invokeCrossMethod(engine, frame, fv.Method, s.Args[1:])
	}))

	cp.Register(ir.ClassSignature(invokeKind{}), dataflow.Impl[constprop.Result](func(engine *dataflow.Engine[constprop.Result], frame *dataflow.Frame[constprop.Result], s *ir.Statement) (dataflow.Result[constprop.Result], error) {
		return invokeCrossMethod(engine, frame, InvokeCallee(s), s.Args)
	}))
}

func invokeCrossMethod(engine *dataflow.Engine[constprop.Result], frame *dataflow.Frame[constprop.Result], callee *ir.Method, argVals []*ir.SSAValue) (dataflow.Result[constprop.Result], error) {
	args := make([]constprop.Result, len(argVals))
	for i, a := range argVals {
		args[i] = frame.Get(a)
	}
	_, ret, err := engine.RunWithArgs(callee, args)
	if err != nil {
		if _, ok := err.(*kerr.DepthExceededError); ok {
			return dataflow.AsValues(constprop.BottomResult()), nil
		}
		return dataflow.Result[constprop.Result]{}, err
	}
	return dataflow.AsValues(ret), nil
}

// registerTypeinfer registers the typeinfer-key table: ConstMethod yields a
// Signature type over the callee's declared arg/return types; Call widens
// to Any (the callee is not statically known, so overload resolution
// cannot narrow further without a joint const component — see package
// joint); Invoke recurses into the callee with InferMethod's
// inferred-flag memoization (spec.md §4.5 "inferred on first call...
// prevents divergence on recursion").
func registerTypeinfer(d *ir.Dialect) {
	ti := d.Interp("typeinfer")

	ti.Register(ir.ClassSignature(returnKind{}), dataflow.Impl[types.Elem](func(_ *dataflow.Engine[types.Elem], frame *dataflow.Frame[types.Elem], s *ir.Statement) (dataflow.Result[types.Elem], error) {
		return dataflow.AsReturn(frame.Get(s.Args[0])), nil
	}))

	ti.Register(ir.ClassSignature(constMethodKind{}), dataflow.Impl[types.Elem](func(_ *dataflow.Engine[types.Elem], _ *dataflow.Frame[types.Elem], s *ir.Statement) (dataflow.Result[types.Elem], error) {
		return dataflow.AsValues(types.Of(s.Result(0).Type)), nil
	}))

	ti.Register(ir.ClassSignature(callKind{}), dataflow.Impl[types.Elem](func(_ *dataflow.Engine[types.Elem], _ *dataflow.Frame[types.Elem], _ *ir.Statement) (dataflow.Result[types.Elem], error) {
		return dataflow.AsValues(types.Of(types.Any())), nil
	}))

	ti.Register(ir.ClassSignature(invokeKind{}), dataflow.Impl[types.Elem](func(engine *dataflow.Engine[types.Elem], frame *dataflow.Frame[types.Elem], s *ir.Statement) (dataflow.Result[types.Elem], error) {
		callee := InvokeCallee(s)
		argTypes := make([]types.Type, len(s.Args))
		for i, a := range s.Args {
			argTypes[i] = frame.Get(a).T
		}
		rt, err := InferMethod(engine, callee, argTypes)
		if err != nil {
			if _, ok := err.(*kerr.DepthExceededError); ok {
				return dataflow.AsValues(types.Of(types.Bottom())), nil
			}
			return dataflow.Result[types.Elem]{}, err
		}
		return dataflow.AsValues(types.Of(rt)), nil
	}))
}

// InferMethod runs (or recalls) callee's inferred return type, narrowing
// with argTypes. If callee is already marked Inferred — whether a prior
// call completed, or an enclosing recursive call is still in flight — its
// current ReturnType (Bottom until the first completion) is returned
// instead of re-descending, matching the original's
// `method.inferred` / `method.return_type` memoization (spec.md §4.5).
func InferMethod(engine *dataflow.Engine[types.Elem], callee *ir.Method, argTypes []types.Type) (types.Type, error) {
	if callee.Inferred {
		if callee.ReturnType == nil {
			return types.Bottom(), nil
		}
		return callee.ReturnType, nil
	}
	callee.Inferred = true
	callee.ReturnType = types.Bottom()

	args := make([]types.Elem, len(argTypes))
	for i, t := range argTypes {
		args[i] = types.Of(t)
	}
	_, retElem, err := engine.RunWithArgs(callee, args)
	if err != nil {
		return nil, err
	}
	callee.ReturnType = retElem.T
	return callee.ReturnType, nil
}
