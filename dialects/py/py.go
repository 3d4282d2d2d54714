// Package py is a minimal arithmetic/comparison/constant dialect: enough
// statement kinds to drive the interpreter, constant propagation, type
// inference, and the rewrite passes against real programs, grounded on
// original_source/src/kirin/dialects/py/{constant.py,cmp/stmts.py} (the
// binop statement shapes themselves are not present in the filtered
// original_source tree — only their lowering — so Add/Sub/Mult/Div/Mod are
// authored from spec.md §6's prose plus cmp/stmts.py's Cmp pattern).
package py

import (
	"fmt"
	"math"

	"github.com/kirin-lang/kirin/dataflow"
	"github.com/kirin-lang/kirin/interp"
	"github.com/kirin-lang/kirin/ir"
	"github.com/kirin-lang/kirin/types"
)

// IntType, FloatType, BoolType, and StringType are the PyClass types this
// dialect's statements are declared over.
func IntType() types.Type    { return types.PyClass{Name: "Int"} }
func FloatType() types.Type  { return types.PyClass{Name: "Float"} }
func BoolType() types.Type   { return types.PyClass{Name: "Bool"} }
func StringType() types.Type { return types.PyClass{Name: "String"} }

type constantKind struct{}

func (constantKind) Name() string    { return "constant" }
func (constantKind) Dialect() string { return "py" }
func (constantKind) Traits() []ir.Trait {
	return []ir.Trait{ir.ConstantLike, ir.Pure, ir.FromPythonCall}
}
func (constantKind) NumRegions() int { return 0 }

// ConstantKind is the singleton tag for py.Constant, exported so callers can
// pattern-match it (e.g. CommonSubexpressionElimination's "(class, literal)"
// hashing rule).
var ConstantKind ir.StatementKind = constantKind{}

// NewConstant builds a py.Constant carrying value, statically typed typ.
func NewConstant(value any, typ types.Type) *ir.Statement {
	return ir.NewStatement(constantKind{}, nil, map[string]ir.Attribute{
		"value": ir.PyAttr{Data: value, Typ: typ},
	}, nil, nil, []types.Type{typ})
}

// ConstantValue reads the host literal carried by a py.Constant statement.
func ConstantValue(s *ir.Statement) any {
	return s.Attributes["value"].(ir.PyAttr).Data
}

type binopKind struct {
	name string
	op   func(a, b any) (any, error)
}

func (k binopKind) Name() string        { return k.name }
func (binopKind) Dialect() string       { return "py" }
func (binopKind) Traits() []ir.Trait    { return []ir.Trait{ir.Pure, ir.FromPythonCall} }
func (binopKind) NumRegions() int       { return 0 }

var (
	AddKind  ir.StatementKind = binopKind{name: "add", op: addOp}
	SubKind  ir.StatementKind = binopKind{name: "sub", op: subOp}
	MultKind ir.StatementKind = binopKind{name: "mult", op: multOp}
	DivKind  ir.StatementKind = binopKind{name: "div", op: divOp}
	ModKind  ir.StatementKind = binopKind{name: "mod", op: modOp}
)

func newBinop(kind ir.StatementKind, lhs, rhs *ir.SSAValue, result types.Type) *ir.Statement {
	return ir.NewStatement(kind, []*ir.SSAValue{lhs, rhs}, nil, nil, nil, []types.Type{result})
}

// NewAdd, NewSub, NewMult, NewDiv, NewMod build the five arithmetic
// statements over lhs/rhs, declared to produce result.
func NewAdd(lhs, rhs *ir.SSAValue, result types.Type) *ir.Statement {
	return newBinop(AddKind, lhs, rhs, result)
}
func NewSub(lhs, rhs *ir.SSAValue, result types.Type) *ir.Statement {
	return newBinop(SubKind, lhs, rhs, result)
}
func NewMult(lhs, rhs *ir.SSAValue, result types.Type) *ir.Statement {
	return newBinop(MultKind, lhs, rhs, result)
}
func NewDiv(lhs, rhs *ir.SSAValue, result types.Type) *ir.Statement {
	return newBinop(DivKind, lhs, rhs, result)
}
func NewMod(lhs, rhs *ir.SSAValue, result types.Type) *ir.Statement {
	return newBinop(ModKind, lhs, rhs, result)
}

type cmpKind struct {
	name string
	cmp  func(a, b any) (bool, error)
}

func (k cmpKind) Name() string     { return k.name }
func (cmpKind) Dialect() string    { return "py" }
func (cmpKind) Traits() []ir.Trait { return []ir.Trait{ir.Pure, ir.FromPythonCall} }
func (cmpKind) NumRegions() int    { return 0 }

var (
	LtKind ir.StatementKind = cmpKind{name: "lt", cmp: ltOp}
	GtKind ir.StatementKind = cmpKind{name: "gt", cmp: gtOp}
	EqKind ir.StatementKind = cmpKind{name: "eq", cmp: eqOp}
)

func newCmp(kind ir.StatementKind, lhs, rhs *ir.SSAValue) *ir.Statement {
	return ir.NewStatement(kind, []*ir.SSAValue{lhs, rhs}, nil, nil, nil, []types.Type{BoolType()})
}

// NewLt, NewGt, NewEq build the three comparison statements over lhs/rhs,
// always producing Bool (matching cmp/stmts.py's Cmp base).
func NewLt(lhs, rhs *ir.SSAValue) *ir.Statement { return newCmp(LtKind, lhs, rhs) }
func NewGt(lhs, rhs *ir.SSAValue) *ir.Statement { return newCmp(GtKind, lhs, rhs) }
func NewEq(lhs, rhs *ir.SSAValue) *ir.Statement { return newCmp(EqKind, lhs, rhs) }

type tupleKind struct{}

func (tupleKind) Name() string      { return "tuple" }
func (tupleKind) Dialect() string   { return "py" }
func (tupleKind) Traits() []ir.Trait { return []ir.Trait{ir.Pure, ir.FromPythonCall} }
func (tupleKind) NumRegions() int   { return 0 }

// TupleKind is the singleton tag for py.Tuple: a literal tuple constructor,
// grounded on PyAttr's own "bool/int/float/string/tuple/..." literal data
// shape (spec.md §3) and constprop.Result's KindPartialTuple, which expects
// a concrete tuple value to be a Go []any.
var TupleKind ir.StatementKind = tupleKind{}

// NewTuple builds a py.Tuple over elems, declared to produce result (a
// types.Generic tuple type built by TupleType).
func NewTuple(elems []*ir.SSAValue, result types.Type) *ir.Statement {
	return ir.NewStatement(tupleKind{}, elems, nil, nil, nil, []types.Type{result})
}

// TupleType builds the types.Generic a py.Tuple of elemTypes is declared to
// produce.
func TupleType(elemTypes []types.Type) types.Type {
	return types.Generic{Body: types.PyClass{Name: "tuple"}, Vars: elemTypes}
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func addOp(a, b any) (any, error) {
	if x, ok := a.(int64); ok {
		if y, ok := b.(int64); ok {
			return x + y, nil
		}
	}
	x, ok1 := asFloat(a)
	y, ok2 := asFloat(b)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("py.add: unsupported operands %T, %T", a, b)
	}
	return x + y, nil
}

func subOp(a, b any) (any, error) {
	if x, ok := a.(int64); ok {
		if y, ok := b.(int64); ok {
			return x - y, nil
		}
	}
	x, ok1 := asFloat(a)
	y, ok2 := asFloat(b)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("py.sub: unsupported operands %T, %T", a, b)
	}
	return x - y, nil
}

func multOp(a, b any) (any, error) {
	if x, ok := a.(int64); ok {
		if y, ok := b.(int64); ok {
			return x * y, nil
		}
	}
	x, ok1 := asFloat(a)
	y, ok2 := asFloat(b)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("py.mult: unsupported operands %T, %T", a, b)
	}
	return x * y, nil
}

// divOp is always true division, matching Python's "/" operator — it
// returns a float64 even for two ints.
func divOp(a, b any) (any, error) {
	x, ok1 := asFloat(a)
	y, ok2 := asFloat(b)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("py.div: unsupported operands %T, %T", a, b)
	}
	if y == 0 {
		return nil, fmt.Errorf("py.div: division by zero")
	}
	return x / y, nil
}

func modOp(a, b any) (any, error) {
	if x, ok := a.(int64); ok {
		if y, ok := b.(int64); ok {
			if y == 0 {
				return nil, fmt.Errorf("py.mod: modulo by zero")
			}
			return x % y, nil
		}
	}
	x, ok1 := asFloat(a)
	y, ok2 := asFloat(b)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("py.mod: unsupported operands %T, %T", a, b)
	}
	return math.Mod(x, y), nil
}

func ltOp(a, b any) (bool, error) {
	x, ok1 := asFloat(a)
	y, ok2 := asFloat(b)
	if ok1 && ok2 {
		return x < y, nil
	}
	if sx, ok := a.(string); ok {
		if sy, ok := b.(string); ok {
			return sx < sy, nil
		}
	}
	return false, fmt.Errorf("py.lt: unsupported operands %T, %T", a, b)
}

func gtOp(a, b any) (bool, error) {
	x, ok1 := asFloat(a)
	y, ok2 := asFloat(b)
	if ok1 && ok2 {
		return x > y, nil
	}
	if sx, ok := a.(string); ok {
		if sy, ok := b.(string); ok {
			return sx > sy, nil
		}
	}
	return false, fmt.Errorf("py.gt: unsupported operands %T, %T", a, b)
}

func eqOp(a, b any) (bool, error) {
	if x, ok := asFloat(a); ok {
		if y, ok := asFloat(b); ok {
			return x == y, nil
		}
	}
	return a == b, nil
}

// Dialect is the py dialect: the constant/arithmetic/comparison statement
// kinds plus their "main" (concrete) and "typeinfer" interpretation tables.
// Constant-propagation needs no dedicated "constprop"/"empty" table of its
// own — every statement here is ConstantLike or Pure, so constprop.New's
// oracle handles it directly (either by short-circuiting through the
// "main" table, or, when a Pure statement's operands are not yet fully
// known, by widening to Unknown) without ever consulting the registry
// under the "constprop"/"empty" keys (spec.md §4.5).
var Dialect = buildDialect()

func buildDialect() *ir.Dialect {
	d := ir.NewDialect("py")
	d.RegisterStmt(constantKind{})
	d.RegisterStmt(AddKind)
	d.RegisterStmt(SubKind)
	d.RegisterStmt(MultKind)
	d.RegisterStmt(DivKind)
	d.RegisterStmt(ModKind)
	d.RegisterStmt(LtKind)
	d.RegisterStmt(GtKind)
	d.RegisterStmt(EqKind)
	d.RegisterStmt(TupleKind)

	registerConcrete(d)
	registerTypeinfer(d)
	return d
}

func registerConcrete(d *ir.Dialect) {
	main := d.Interp("main")
	main.Register(ir.ClassSignature(constantKind{}), interp.Impl(func(_ *interp.Interpreter, _ *interp.Frame, s *ir.Statement) (interp.Result, error) {
		return interp.AsValues(ConstantValue(s)), nil
	}))

	for _, bk := range []ir.StatementKind{AddKind, SubKind, MultKind, DivKind, ModKind} {
		k := bk.(binopKind)
		main.Register(ir.ClassSignature(k), interp.Impl(func(_ *interp.Interpreter, frame *interp.Frame, s *ir.Statement) (interp.Result, error) {
			a, b := frame.Get(s.Args[0]), frame.Get(s.Args[1])
			v, err := k.op(a, b)
			if err != nil {
				return interp.Result{}, err
			}
			return interp.AsValues(v), nil
		}))
	}

	for _, ck := range []ir.StatementKind{LtKind, GtKind, EqKind} {
		k := ck.(cmpKind)
		main.Register(ir.ClassSignature(k), interp.Impl(func(_ *interp.Interpreter, frame *interp.Frame, s *ir.Statement) (interp.Result, error) {
			a, b := frame.Get(s.Args[0]), frame.Get(s.Args[1])
			v, err := k.cmp(a, b)
			if err != nil {
				return interp.Result{}, err
			}
			return interp.AsValues(v), nil
		}))
	}

	main.Register(ir.ClassSignature(tupleKind{}), interp.Impl(func(_ *interp.Interpreter, frame *interp.Frame, s *ir.Statement) (interp.Result, error) {
		elems := make([]any, len(s.Args))
		for i, a := range s.Args {
			elems[i] = frame.Get(a)
		}
		return interp.AsValues(elems), nil
	}))
}

// registerTypeinfer demonstrates the two-level (kind, arg-types) -> (kind)
// dispatch from spec.md §4.3 concretely: Add/Sub/Mult/Mod each get an exact
// overload for (Int,Int) and (Float,Float) in addition to a class-level
// fallback that widens to the statement's own statically declared result
// type — used when operands carry a type the exact overload table does not
// name (e.g. a still-unresolved TypeVar or a Union arriving from an
// unstable branch).
func registerTypeinfer(d *ir.Dialect) {
	ti := d.Interp("typeinfer")

	ti.Register(ir.ClassSignature(constantKind{}), dataflow.Impl[types.Elem](func(_ *dataflow.Engine[types.Elem], _ *dataflow.Frame[types.Elem], s *ir.Statement) (dataflow.Result[types.Elem], error) {
		return dataflow.AsValues(types.Of(s.Result(0).Type)), nil
	}))

	for _, bk := range []ir.StatementKind{AddKind, SubKind, MultKind, ModKind} {
		registerBinopOverloads(ti, bk.(binopKind))
	}
	registerDivOverload(ti)

	for _, ck := range []ir.StatementKind{LtKind, GtKind, EqKind} {
		k := ck
		ti.Register(ir.ClassSignature(k), dataflow.Impl[types.Elem](func(_ *dataflow.Engine[types.Elem], _ *dataflow.Frame[types.Elem], _ *ir.Statement) (dataflow.Result[types.Elem], error) {
			return dataflow.AsValues(types.Of(BoolType())), nil
		}))
	}

	ti.Register(ir.ClassSignature(tupleKind{}), dataflow.Impl[types.Elem](func(_ *dataflow.Engine[types.Elem], _ *dataflow.Frame[types.Elem], s *ir.Statement) (dataflow.Result[types.Elem], error) {
		return dataflow.AsValues(types.Of(s.Result(0).Type)), nil
	}))
}

func registerBinopOverloads(ti *ir.MethodTable, k binopKind) {
	ti.Register(ir.StmtSignature(k, []types.Type{IntType(), IntType()}), dataflow.Impl[types.Elem](func(_ *dataflow.Engine[types.Elem], _ *dataflow.Frame[types.Elem], _ *ir.Statement) (dataflow.Result[types.Elem], error) {
		return dataflow.AsValues(types.Of(IntType())), nil
	}))
	ti.Register(ir.StmtSignature(k, []types.Type{FloatType(), FloatType()}), dataflow.Impl[types.Elem](func(_ *dataflow.Engine[types.Elem], _ *dataflow.Frame[types.Elem], _ *ir.Statement) (dataflow.Result[types.Elem], error) {
		return dataflow.AsValues(types.Of(FloatType())), nil
	}))
	ti.Register(ir.ClassSignature(k), dataflow.Impl[types.Elem](func(_ *dataflow.Engine[types.Elem], _ *dataflow.Frame[types.Elem], s *ir.Statement) (dataflow.Result[types.Elem], error) {
		return dataflow.AsValues(types.Of(s.Result(0).Type)), nil
	}))
}

// registerDivOverload is separate from registerBinopOverloads because
// true-division always yields Float, even for two Ints.
func registerDivOverload(ti *ir.MethodTable) {
	ti.Register(ir.ClassSignature(DivKind), dataflow.Impl[types.Elem](func(_ *dataflow.Engine[types.Elem], _ *dataflow.Frame[types.Elem], _ *ir.Statement) (dataflow.Result[types.Elem], error) {
		return dataflow.AsValues(types.Of(FloatType())), nil
	}))
}
