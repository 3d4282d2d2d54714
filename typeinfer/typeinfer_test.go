package typeinfer

import (
	"testing"

	funcd "github.com/kirin-lang/kirin/dialects/func"
	"github.com/kirin-lang/kirin/dialects/py"
	"github.com/kirin-lang/kirin/dialects/scf"
	"github.com/kirin-lang/kirin/ir"
	"github.com/kirin-lang/kirin/types"
)

func newGroup() *ir.DialectGroup {
	return ir.NewDialectGroup(py.Dialect, funcd.Dialect, scf.Dialect)
}

// addOne builds `def f(self, x): return x + 1`.
func addOne(group *ir.DialectGroup) *ir.Method {
	entry := ir.NewBlock([]types.Type{py.IntType(), py.IntType()})
	x := entry.Args[1]

	one := py.NewConstant(int64(1), py.IntType())
	add := py.NewAdd(x, one.Result(0), py.IntType())
	ret := funcd.NewReturn(add.Result(0))

	ir.Append(entry, one)
	ir.Append(entry, add)
	ir.Append(entry, ret)

	body := ir.NewRegion(entry)
	code := funcd.NewFunc("f", body)
	return ir.NewMethod("f", []string{"self", "x"}, group, code)
}

func TestInferReturnsIntForAddOfInts(t *testing.T) {
	group := newGroup()
	method := addOne(group)
	engine := New(group)

	_, ret, err := Infer(engine, method)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if ret != py.IntType() {
		t.Fatalf("expected Int, got %v", ret)
	}
}

func TestInferMemoizesOnInferredFlag(t *testing.T) {
	group := newGroup()
	method := addOne(group)
	engine := New(group)

	if _, _, err := Infer(engine, method); err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if !method.Inferred {
		t.Fatalf("expected method.Inferred to be set after Infer")
	}

	// A second call should short-circuit through the Inferred flag rather
	// than re-running the engine, returning the already-recorded type.
	_, ret, err := Infer(engine, method)
	if err != nil {
		t.Fatalf("second Infer: %v", err)
	}
	if ret != py.IntType() {
		t.Fatalf("expected memoized Int, got %v", ret)
	}
}

func TestInferWithArgTypesNarrowsFloat(t *testing.T) {
	group := newGroup()
	method := addOne(group)
	engine := New(group)

	_, ret, err := InferWithArgTypes(engine, method, []types.Type{py.FloatType(), py.FloatType()})
	if err != nil {
		t.Fatalf("InferWithArgTypes: %v", err)
	}
	// addOne's "1" constant is statically typed Int, so Float + Int widens
	// only as far as the dialect's class-level fallback, which returns the
	// statement's own declared result type (Int here, since NewAdd was
	// built with py.IntType() as its result) — this asserts the class
	// fallback path specifically, not operand-driven overload resolution.
	if ret != py.IntType() {
		t.Fatalf("expected the statement's declared result type, got %v", ret)
	}
}
