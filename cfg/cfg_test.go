package cfg

import (
	"testing"

	"github.com/kirin-lang/kirin/ir"
)

type branchKind struct{ name string }

func (k branchKind) Name() string    { return k.name }
func (k branchKind) Dialect() string { return "test" }
func (k branchKind) Traits() []ir.Trait {
	return []ir.Trait{ir.IsTerminator}
}
func (k branchKind) NumRegions() int { return 0 }

var condBranch = branchKind{name: "cond_branch"}
var jump = branchKind{name: "jump"}
var ret = branchKind{name: "return"}

func terminator(kind branchKind, successors ...*ir.Block) *ir.Statement {
	return ir.NewStatement(kind, nil, nil, successors, nil, nil)
}

// diamond builds entry -> {left, right} -> merge -> (back-edge-less) exit,
// a standard diamond CFG.
func diamond() (*ir.Region, *ir.Block, *ir.Block, *ir.Block, *ir.Block) {
	entry := ir.NewBlock(nil)
	left := ir.NewBlock(nil)
	right := ir.NewBlock(nil)
	merge := ir.NewBlock(nil)

	ir.Append(entry, terminator(condBranch, left, right))
	ir.Append(left, terminator(jump, merge))
	ir.Append(right, terminator(jump, merge))
	ir.Append(merge, terminator(ret))

	region := ir.NewRegion(entry, left, right, merge)
	return region, entry, left, right, merge
}

func TestSuccessorsPredecessors(t *testing.T) {
	region, entry, left, right, merge := diamond()
	g := Build(region)

	succ := g.Successors(entry)
	if len(succ) != 2 {
		t.Fatalf("expected entry to have 2 successors, got %d", len(succ))
	}
	preds := g.Predecessors(merge)
	if len(preds) != 2 {
		t.Fatalf("expected merge to have 2 predecessors, got %d", len(preds))
	}
	if len(g.Successors(left)) != 1 || g.Successors(left)[0] != merge {
		t.Fatalf("expected left -> merge")
	}
	if len(g.Successors(right)) != 1 || g.Successors(right)[0] != merge {
		t.Fatalf("expected right -> merge")
	}
}

func TestDominators(t *testing.T) {
	region, entry, left, right, merge := diamond()
	g := Build(region)

	if !g.Dominates(entry, merge) {
		t.Fatalf("expected entry to dominate merge")
	}
	if g.Dominates(left, merge) {
		t.Fatalf("left does not dominate merge (right is an alternate path)")
	}
	if g.Dominates(right, merge) {
		t.Fatalf("right does not dominate merge (left is an alternate path)")
	}
	if !g.Dominates(entry, left) || !g.Dominates(entry, right) {
		t.Fatalf("expected entry to dominate both branches")
	}
}

func TestDominatorTree(t *testing.T) {
	region, entry, left, right, merge := diamond()
	g := Build(region)
	tree := g.DominatorTree()

	if tree[left] != entry || tree[right] != entry {
		t.Fatalf("expected entry to be the immediate dominator of both branches")
	}
	if tree[merge] != entry {
		t.Fatalf("expected entry to be merge's immediate dominator (neither branch alone dominates it), got %v", tree[merge])
	}
}

func TestNearestCommonDominator(t *testing.T) {
	region, entry, left, right, _ := diamond()
	g := Build(region)

	ncd := g.NearestCommonDominator(left, right)
	if ncd != entry {
		t.Fatalf("expected nearest common dominator of left/right to be entry")
	}
}

func TestLinearChainDominance(t *testing.T) {
	a := ir.NewBlock(nil)
	b := ir.NewBlock(nil)
	c := ir.NewBlock(nil)
	ir.Append(a, terminator(jump, b))
	ir.Append(b, terminator(jump, c))
	ir.Append(c, terminator(ret))
	region := ir.NewRegion(a, b, c)

	g := Build(region)
	tree := g.DominatorTree()
	if tree[b] != a || tree[c] != b {
		t.Fatalf("expected a straight-line immediate-dominator chain a -> b -> c")
	}
	if !g.Dominates(a, c) {
		t.Fatalf("expected a to transitively dominate c")
	}
}
