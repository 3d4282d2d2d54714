package types

import "testing"

func TestIsSubseteqBasics(t *testing.T) {
	intT := PyClass{Name: "Int"}
	numT := PyClass{Name: "Number"}
	intT.Ancestors = []string{"Number", "object"}

	if !IsSubseteq(intT, Any()) {
		t.Fatalf("Int should be subseteq Any")
	}
	if !IsSubseteq(Bottom(), intT) {
		t.Fatalf("Bottom should be subseteq Int")
	}
	if !IsSubseteq(intT, numT) {
		t.Fatalf("Int should be subseteq Number via ancestors")
	}
	if IsSubseteq(numT, intT) {
		t.Fatalf("Number should not be subseteq Int")
	}
}

func TestLiteralSubtyping(t *testing.T) {
	intT := PyClass{Name: "Int"}
	three := Literal{Value: int64(3)}
	if !IsSubseteq(three, intT) {
		t.Fatalf("Literal(3) should be subseteq Int")
	}
	four := Literal{Value: int64(4)}
	if IsSubseteq(three, four) {
		t.Fatalf("distinct literals should not be subseteq of one another")
	}
}

func TestUnionDistribution(t *testing.T) {
	intT := PyClass{Name: "Int"}
	floatT := PyClass{Name: "Float"}
	u := NewUnion(intT, floatT)

	if !IsSubseteq(intT, u) {
		t.Fatalf("Int should be subseteq Int|Float")
	}
	if IsSubseteq(u, intT) {
		t.Fatalf("Int|Float should not be subseteq Int alone")
	}
	if !IsSubseteq(u, NewUnion(floatT, intT, PyClass{Name: "Bool"})) {
		t.Fatalf("Int|Float should be subseteq of a superset union")
	}
}

func TestJoinMeet(t *testing.T) {
	intT := PyClass{Name: "Int"}
	floatT := PyClass{Name: "Float"}

	j := Join(intT, floatT)
	if !IsEqual(j, NewUnion(intT, floatT)) {
		t.Fatalf("join of disjoint classes should be their union, got %s", j)
	}

	m := Meet(intT, floatT)
	if !IsEqual(m, Bottom()) {
		t.Fatalf("meet of disjoint classes should be Bottom, got %s", m)
	}

	if !IsEqual(Join(intT, Any()), Any()) {
		t.Fatalf("join with Any should be Any")
	}
	if !IsEqual(Meet(intT, Bottom()), Bottom()) {
		t.Fatalf("meet with Bottom should be Bottom")
	}
}

func TestHintedAdvisory(t *testing.T) {
	intT := PyClass{Name: "Int"}
	h := Hinted{Data: "from-literal", Inner: intT}
	if !IsSubseteq(h, Any()) {
		t.Fatalf("Hinted should defer to inner for subseteq")
	}
	if !IsSubseteq(h, intT) {
		t.Fatalf("Hinted(Int) should be subseteq Int")
	}
}

func TestResolveGeneric(t *testing.T) {
	tv := TypeVar{Name: "T", Bound: Any()}
	listT := Generic{Body: PyClass{Name: "List"}, Vars: []Type{tv}}
	intT := PyClass{Name: "Int"}

	s := Resolve(listT.Vars, listT.Vararg, []Type{intT})
	resolved := Apply(listT, s)
	g, ok := resolved.(Generic)
	if !ok {
		t.Fatalf("expected Generic, got %T", resolved)
	}
	if !IsEqual(g.Vars[0], intT) {
		t.Fatalf("expected resolved var Int, got %s", g.Vars[0])
	}
}
