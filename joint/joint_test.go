package joint

import (
	"testing"

	funcd "github.com/kirin-lang/kirin/dialects/func"
	"github.com/kirin-lang/kirin/dialects/py"
	"github.com/kirin-lang/kirin/dialects/scf"
	"github.com/kirin-lang/kirin/ir"
)

func newGroup() *ir.DialectGroup {
	return ir.NewDialectGroup(py.Dialect, funcd.Dialect, scf.Dialect)
}

// constTwoPlusThree builds `def f(self): return 2 + 3`, a pure, fully
// constant method — every component of the joint lattice should resolve
// to its most precise element.
func constTwoPlusThree(group *ir.DialectGroup) *ir.Method {
	entry := ir.NewBlock(nil)
	two := py.NewConstant(int64(2), py.IntType())
	three := py.NewConstant(int64(3), py.IntType())
	add := py.NewAdd(two.Result(0), three.Result(0), py.IntType())
	ret := funcd.NewReturn(add.Result(0))

	ir.Append(entry, two)
	ir.Append(entry, three)
	ir.Append(entry, add)
	ir.Append(entry, ret)

	body := ir.NewRegion(entry)
	code := funcd.NewFunc("f", body)
	return ir.NewMethod("f", []string{"self"}, group, code)
}

func TestAnalyzeConstantPureMethod(t *testing.T) {
	group := newGroup()
	method := constTwoPlusThree(group)

	_, ret, err := Analyze(group, method)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if ret.First.T != py.IntType() {
		t.Fatalf("expected Int in the type component, got %v", ret.First.T)
	}
	if ret.Third.Kind != PurityPure {
		t.Fatalf("expected a Pure purity component, got %v", ret.Third)
	}
}

// callsImpure builds `def g(self): return h()` where h is a method whose
// body contains a statement with no Pure/MaybePure trait at all (modeled
// here by a bare unregistered-kind statement standing in for a real
// side-effecting op), to exercise InferPurity's conservative Impure
// default.
type sideEffectKind struct{}

func (sideEffectKind) Name() string         { return "side_effect" }
func (sideEffectKind) Dialect() string      { return "test" }
func (sideEffectKind) Traits() []ir.Trait   { return nil }
func (sideEffectKind) NumRegions() int      { return 0 }

func TestInferPurityImpureDefault(t *testing.T) {
	entry := ir.NewBlock(nil)
	ir.Append(entry, ir.NewStatement(sideEffectKind{}, nil, nil, nil, nil, nil))
	ir.Append(entry, funcd.NewReturn(nil))
	body := ir.NewRegion(entry)
	code := funcd.NewFunc("g", body)
	method := ir.NewMethod("g", []string{"self"}, nil, code)

	p := InferPurity(method, make(map[*ir.Method]Purity))
	if p.Kind != PurityImpure {
		t.Fatalf("expected Impure for a statement with no Pure/MaybePure trait, got %v", p)
	}
}

func TestInferPurityCyclicCallsStayPure(t *testing.T) {
	group := newGroup()

	// f calls itself recursively via func.Invoke, with every other
	// statement Pure: InferPurity's visiting-map cycle guard should let
	// the recursive call settle at Pure rather than diverging.
	entry := ir.NewBlock(nil)
	one := py.NewConstant(int64(1), py.IntType())
	ir.Append(entry, one)
	body := ir.NewRegion(entry)
	code := funcd.NewFunc("f", body)
	method := ir.NewMethod("f", []string{"self"}, group, code)

	invoke := funcd.NewInvoke(method, nil, py.IntType())
	ret := funcd.NewReturn(invoke.Result(0))
	ir.Append(entry, invoke)
	ir.Append(entry, ret)

	p := InferPurity(method, make(map[*ir.Method]Purity))
	if p.Kind != PurityPure {
		t.Fatalf("expected a self-recursive all-Pure method to settle at Pure, got %v", p)
	}
}

func TestPurityJoinAndMeet(t *testing.T) {
	pure := Purity{PurityPure}
	impure := Purity{PurityImpure}

	if pure.Join(impure).Kind != PurityTop {
		t.Fatalf("expected Pure join Impure to widen to Top")
	}
	if pure.Meet(Purity{PurityTop}).Kind != PurityPure {
		t.Fatalf("expected Pure meet Top to stay Pure (Top is Meet's identity)")
	}
	if pure.Meet(impure).Kind != PurityBottom {
		t.Fatalf("expected Pure meet Impure to narrow to Bottom")
	}
}
