package constprop

import (
	"reflect"
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

// TestConstantFoldingScenario builds `y = 1 + 2; return y + x` (spec.md §8
// scenario 1) and asserts the engine evaluates the constant sub-add to 3
// through the concrete-interpreter oracle, leaving x's own contribution
// Unknown since x starts at Top.
func TestConstantFoldingScenario(t *testing.T) {
	group := newGroup()
	entry := ir.NewBlock([]types.Type{py.IntType(), py.IntType()})
	x := entry.Args[1]

	one := py.NewConstant(int64(1), py.IntType())
	two := py.NewConstant(int64(2), py.IntType())
	y := py.NewAdd(one.Result(0), two.Result(0), py.IntType())
	total := py.NewAdd(y.Result(0), x, py.IntType())
	ret := funcd.NewReturn(total.Result(0))
	ir.Append(entry, one)
	ir.Append(entry, two)
	ir.Append(entry, y)
	ir.Append(entry, total)
	ir.Append(entry, ret)
	code := funcd.NewFunc("f", ir.NewRegion(entry))
	method := ir.NewMethod("f", []string{"self", "x"}, group, code)

	engine := New(group)
	values, ret2, err := engine.Run(method)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := values[y.Result(0)]; got.Kind != KindValue || got.Data != int64(3) {
		t.Fatalf("expected y folded to Value(3), got %v", got)
	}
	if ret2.Kind != KindUnknown {
		t.Fatalf("expected the overall return to stay Unknown (x is Top), got %v", ret2)
	}
}

// fooMethod builds `def foo(self, x): return x + 1`.
func fooMethod(group *ir.DialectGroup) *ir.Method {
	entry := ir.NewBlock([]types.Type{py.IntType(), py.IntType()})
	x := entry.Args[1]
	one := py.NewConstant(int64(1), py.IntType())
	add := py.NewAdd(x, one.Result(0), py.IntType())
	ir.Append(entry, one)
	ir.Append(entry, add)
	ir.Append(entry, funcd.NewReturn(add.Result(0)))
	code := funcd.NewFunc("foo", ir.NewRegion(entry))
	return ir.NewMethod("foo", []string{"self", "x"}, group, code)
}

// gooMethod builds `def goo(self, x): return (foo(2), foo(x))`.
func gooMethod(group *ir.DialectGroup, foo *ir.Method) *ir.Method {
	entry := ir.NewBlock([]types.Type{py.IntType(), py.IntType()})
	x := entry.Args[1]

	two := py.NewConstant(int64(2), py.IntType())
	invoke1 := funcd.NewInvoke(foo, []*ir.SSAValue{two.Result(0)}, py.IntType())
	invoke2 := funcd.NewInvoke(foo, []*ir.SSAValue{x}, py.IntType())
	tuple := py.NewTuple([]*ir.SSAValue{invoke1.Result(0), invoke2.Result(0)}, py.TupleType([]types.Type{py.IntType(), py.IntType()}))
	ir.Append(entry, two)
	ir.Append(entry, invoke1)
	ir.Append(entry, invoke2)
	ir.Append(entry, tuple)
	ir.Append(entry, funcd.NewReturn(tuple.Result(0)))
	code := funcd.NewFunc("goo", ir.NewRegion(entry))
	return ir.NewMethod("goo", []string{"self", "x"}, group, code)
}

// mainMethod builds `def main(self): return goo(3)`.
func mainMethod(group *ir.DialectGroup, goo *ir.Method) *ir.Method {
	entry := ir.NewBlock(nil)
	three := py.NewConstant(int64(3), py.IntType())
	invoke := funcd.NewInvoke(goo, []*ir.SSAValue{three.Result(0)}, py.TupleType([]types.Type{py.IntType(), py.IntType()}))
	ir.Append(entry, three)
	ir.Append(entry, invoke)
	ir.Append(entry, funcd.NewReturn(invoke.Result(0)))
	code := funcd.NewFunc("main", ir.NewRegion(entry))
	return ir.NewMethod("main", []string{"self"}, group, code)
}

// TestCrossMethodConstantPropagation is spec.md §8 scenario 2: running
// constprop on main() with no arguments returns Value((3, 4)).
func TestCrossMethodConstantPropagation(t *testing.T) {
	group := newGroup()
	foo := fooMethod(group)
	goo := gooMethod(group, foo)
	main := mainMethod(group, goo)

	engine := New(group)
	_, ret, err := engine.Run(main)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ret.Kind != KindValue {
		t.Fatalf("expected a known Value, got %v", ret)
	}
	if !reflect.DeepEqual(ret.Data, []any{int64(3), int64(4)}) {
		t.Fatalf("expected Value((3, 4)), got %v", ret.Data)
	}
}

// TestDepthExhaustionDegradesToBottom checks that cross-method recursion
// beyond the engine's MaxDepth degrades to Bottom rather than propagating
// a DepthExceededError (spec.md §4.5 "at depth exhaustion, return ⊥").
func TestDepthExhaustionDegradesToBottom(t *testing.T) {
	group := newGroup()
	foo := fooMethod(group)
	goo := gooMethod(group, foo)
	main := mainMethod(group, goo)

	engine := New(group)
	engine.MaxDepth = 1
	_, ret, err := engine.Run(main)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ret.Kind != KindBottom {
		t.Fatalf("expected Bottom once depth is exhausted, got %v", ret)
	}
}

func TestJoinWidensDifferentValuesToUnknown(t *testing.T) {
	a := NewValue(int64(1))
	b := NewValue(int64(2))
	if joined := a.Join(b); joined.Kind != KindUnknown {
		t.Fatalf("expected two distinct Values to join to Unknown, got %v", joined)
	}
}

func TestPartialTupleCanonicalizesToValue(t *testing.T) {
	pt := NewPartialTuple([]Result{NewValue(int64(1)), NewValue(int64(2))})
	if pt.Kind != KindValue {
		t.Fatalf("expected a fully-known partial tuple to canonicalize to Value, got %v", pt)
	}
	if !reflect.DeepEqual(pt.Data, []any{int64(1), int64(2)}) {
		t.Fatalf("unexpected tuple data: %v", pt.Data)
	}
}
