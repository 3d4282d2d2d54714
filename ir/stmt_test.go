package ir

import (
	"testing"

	"github.com/kirin-lang/kirin/types"
)

// testKind is a minimal StatementKind used only by this package's tests.
type testKind struct {
	name    string
	traits  []Trait
	regions int
}

func (k testKind) Name() string      { return k.name }
func (k testKind) Dialect() string   { return "test" }
func (k testKind) Traits() []Trait   { return k.traits }
func (k testKind) NumRegions() int   { return k.regions }

var (
	constKind = testKind{name: "const", traits: []Trait{ConstantLike, Pure}, regions: 0}
	addKind   = testKind{name: "add", traits: []Trait{Pure}, regions: 0}
	retKind   = testKind{name: "return", traits: []Trait{IsTerminator}, regions: 0}
)

func intT() types.Type { return types.PyClass{Name: "Int"} }

func buildSimpleBlock() (*Block, *Statement, *Statement) {
	block := NewBlock(nil)
	c := NewStatement(constKind, nil, map[string]Attribute{"value": PyAttr{Data: int64(1), Typ: intT()}}, nil, nil, []types.Type{intT()})
	Append(block, c)
	add := NewStatement(addKind, []*SSAValue{c.Result(0), c.Result(0)}, nil, nil, nil, []types.Type{intT()})
	Append(block, add)
	ret := NewStatement(retKind, []*SSAValue{add.Result(0)}, nil, nil, nil, nil)
	Append(block, ret)
	return block, c, add
}

func TestUseSymmetry(t *testing.T) {
	_, c, add := buildSimpleBlock()
	uses := c.Result(0).Uses()
	if len(uses) != 2 {
		t.Fatalf("expected 2 uses of constant result, got %d", len(uses))
	}
	for _, u := range uses {
		if u.User != add {
			t.Fatalf("expected both uses to be the add statement")
		}
	}
}

func TestOwnership(t *testing.T) {
	_, c, _ := buildSimpleBlock()
	r := c.Result(0)
	if r.OwnerStmt != c || r.Index != 0 {
		t.Fatalf("result owner/index mismatch")
	}
}

func TestTerminatorDiscipline(t *testing.T) {
	block, _, _ := buildSimpleBlock()
	stmt := NewStatement(testKind{name: "func", regions: 1}, nil, nil, nil, []*Region{NewRegion(block)}, nil)
	if err := Verify(stmt); err != nil {
		t.Fatalf("expected well-formed program to verify, got %v", err)
	}
}

func TestTerminatorDisciplineViolation(t *testing.T) {
	block := NewBlock(nil)
	add := NewStatement(addKind, nil, nil, nil, nil, []types.Type{intT()})
	Append(block, add) // no terminator
	stmt := NewStatement(testKind{name: "func", regions: 1}, nil, nil, nil, []*Region{NewRegion(block)}, nil)
	if err := Verify(stmt); err == nil {
		t.Fatalf("expected verification error for missing terminator")
	}
}

func TestDeleteRequiresNoUses(t *testing.T) {
	_, c, _ := buildSimpleBlock()
	if err := Delete(c); err == nil {
		t.Fatalf("expected delete to fail while result has live uses")
	}
}

func TestReplaceTransfersUses(t *testing.T) {
	block, c, add := buildSimpleBlock()
	newConst := NewStatement(constKind, nil, map[string]Attribute{"value": PyAttr{Data: int64(2), Typ: intT()}}, nil, nil, []types.Type{intT()})
	if err := Replace(c, newConst); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if block.FirstStmt() != newConst {
		t.Fatalf("expected new const to be first statement")
	}
	for _, arg := range add.Args {
		if arg != newConst.Result(0) {
			t.Fatalf("expected add's operands to point at replacement result")
		}
	}
}

func TestStructuralEquality(t *testing.T) {
	b1, _, _ := buildSimpleBlock()
	b2, _, _ := buildSimpleBlock()
	f1 := NewStatement(testKind{name: "func", regions: 1}, nil, nil, nil, []*Region{NewRegion(b1)}, nil)
	f2 := NewStatement(testKind{name: "func", regions: 1}, nil, nil, nil, []*Region{NewRegion(b2)}, nil)
	if !StructurallyEqual(f1, f2) {
		t.Fatalf("expected two independently-built but isomorphic programs to be structurally equal")
	}
}

func TestWalkPreOrder(t *testing.T) {
	block, c, add := buildSimpleBlock()
	var seen []*Statement
	stmt := NewStatement(testKind{name: "func", regions: 1}, nil, nil, nil, []*Region{NewRegion(block)}, nil)
	Walk(stmt, func(s *Statement) { seen = append(seen, s) })
	if len(seen) != 4 {
		t.Fatalf("expected 4 statements visited (func, const, add, return), got %d", len(seen))
	}
	if seen[1] != c || seen[2] != add {
		t.Fatalf("unexpected walk order")
	}
}

func TestDialectGroupRegistry(t *testing.T) {
	d1 := NewDialect("d1")
	d1.Interp("main").Register(ClassSignature(addKind), "d1-add")
	d2 := NewDialect("d2")
	d2.Interp("main").Register(ClassSignature(addKind), "d2-add-shadow")
	d2.Interp("main").Register(ClassSignature(constKind), "d2-const")

	group := NewDialectGroup(d1, d2)
	reg := group.Registry([]string{"main"})

	if reg.Table[ClassSignature(addKind)].Impl != "d1-add" {
		t.Fatalf("expected first dialect's entry to win, got %v", reg.Table[ClassSignature(addKind)].Impl)
	}
	if reg.Table[ClassSignature(constKind)].Impl != "d2-const" {
		t.Fatalf("expected second dialect's unique entry to be present")
	}
}

func TestDialectGroupEquality(t *testing.T) {
	d1 := NewDialect("a")
	d2 := NewDialect("b")
	g1 := NewDialectGroup(d1, d2)
	g2 := NewDialectGroup(d2, d1)
	if !g1.Equal(g2) {
		t.Fatalf("expected groups with the same dialects in different order to be equal")
	}
}
