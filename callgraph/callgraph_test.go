package callgraph

import (
	"testing"

	funcd "github.com/kirin-lang/kirin/dialects/func"
	"github.com/kirin-lang/kirin/dialects/py"
	"github.com/kirin-lang/kirin/dialects/scf"
	"github.com/kirin-lang/kirin/ir"
	"github.com/kirin-lang/kirin/rewrite"
)

func newGroup() *ir.DialectGroup {
	return ir.NewDialectGroup(py.Dialect, funcd.Dialect, scf.Dialect)
}

// leaf builds `def leaf(self): return 1`.
func leaf(group *ir.DialectGroup) *ir.Method {
	entry := ir.NewBlock(nil)
	one := py.NewConstant(int64(1), py.IntType())
	ir.Append(entry, one)
	ir.Append(entry, funcd.NewReturn(one.Result(0)))
	code := funcd.NewFunc("leaf", ir.NewRegion(entry))
	return ir.NewMethod("leaf", []string{"self"}, group, code)
}

// caller builds `def caller(self): return leaf()`.
func caller(group *ir.DialectGroup, callee *ir.Method) *ir.Method {
	entry := ir.NewBlock(nil)
	invoke := funcd.NewInvoke(callee, nil, py.IntType())
	ir.Append(entry, invoke)
	ir.Append(entry, funcd.NewReturn(invoke.Result(0)))
	code := funcd.NewFunc("caller", ir.NewRegion(entry))
	return ir.NewMethod("caller", []string{"self"}, group, code)
}

func TestBuildCollectsNodesAndEdges(t *testing.T) {
	group := newGroup()
	l := leaf(group)
	c := caller(group, l)

	g, err := Build(c)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.Nodes()) != 2 {
		t.Fatalf("expected 2 nodes (caller, leaf), got %d", len(g.Nodes()))
	}
	neighbors := g.Neighbors(c)
	if len(neighbors) != 1 || neighbors[0] != l {
		t.Fatalf("expected caller's sole neighbor to be leaf, got %v", neighbors)
	}
	edges := g.Edges()
	if len(edges) != 1 || edges[0][0] != c || edges[0][1] != l {
		t.Fatalf("expected one (caller, leaf) edge, got %v", edges)
	}
}

func TestBuildDisambiguatesSharedSymName(t *testing.T) {
	group := newGroup()
	a := leaf(group)
	b := leaf(group) // a distinct *ir.Method sharing the "leaf" SymName

	g, err := Build(a, b)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	nameA, nameB := g.Name(a), g.Name(b)
	if nameA == nameB {
		t.Fatalf("expected distinct display names for two methods sharing a SymName, got %q and %q", nameA, nameB)
	}
	if nameA != "leaf" && nameB != "leaf" {
		t.Fatalf("expected one of the two to keep the bare name, got %q and %q", nameA, nameB)
	}
}

func TestBuildHandlesCyclicCallees(t *testing.T) {
	group := newGroup()
	entry := ir.NewBlock(nil)
	code := funcd.NewFunc("f", ir.NewRegion(entry))
	method := ir.NewMethod("f", []string{"self"}, group, code)

	invoke := funcd.NewInvoke(method, nil, py.IntType())
	ir.Append(entry, invoke)
	ir.Append(entry, funcd.NewReturn(invoke.Result(0)))

	g, err := Build(method)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.Nodes()) != 1 {
		t.Fatalf("expected self-recursion to settle at one node, got %d", len(g.Nodes()))
	}
}

func TestCallGraphPassCopiesAndRewires(t *testing.T) {
	group := newGroup()
	l := leaf(group)
	c := caller(group, l)

	g, err := Build(c)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	copies, err := CallGraphPass(g, rewrite.DeadCodeElimination(), 10)
	if err != nil {
		t.Fatalf("CallGraphPass: %v", err)
	}
	if len(copies) != 2 {
		t.Fatalf("expected a copy for every node, got %d", len(copies))
	}

	lCopy, cCopy := copies[l], copies[c]
	if lCopy == l || cCopy == c {
		t.Fatalf("expected fresh *ir.Method copies distinct from the originals")
	}

	region, err := cCopy.CallableRegion()
	if err != nil {
		t.Fatalf("CallableRegion: %v", err)
	}
	var sawInvoke bool
	for s := region.Blocks[0].FirstStmt(); s != nil; s = s.Next() {
		if s.Kind == funcd.InvokeKind {
			sawInvoke = true
			if funcd.InvokeCallee(s) != lCopy {
				t.Fatalf("expected caller copy's Invoke rewired to leaf's copy, got callee %v", funcd.InvokeCallee(s))
			}
		}
	}
	if !sawInvoke {
		t.Fatalf("expected caller's copy to still contain an Invoke statement")
	}
}
