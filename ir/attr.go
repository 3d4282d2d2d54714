package ir

import (
	"fmt"

	"github.com/kirin-lang/kirin/types"
)

// Attribute is a compile-time immutable value attached to a statement:
// literal host data (PyAttr), a type (TypeAttr), a function signature
// (SignatureAttr), or an analysis lattice element wrapped for storage
// (LatticeAttr). All attributes support structural equality.
type Attribute interface {
	fmt.Stringer
	AttrKind() string
	AttrEqual(other Attribute) bool
}

// PyAttr carries a host literal (bool/int/float/string/tuple/list/dict/nil)
// plus its type.
type PyAttr struct {
	Data any
	Typ  types.Type
}

func (PyAttr) AttrKind() string { return "py" }
func (p PyAttr) String() string { return fmt.Sprintf("%v", p.Data) }
func (p PyAttr) AttrEqual(other Attribute) bool {
	o, ok := other.(PyAttr)
	return ok && p.Data == o.Data
}

// TypeAttr wraps a types.Type as an Attribute, letting a statement carry a
// declared type as ordinary compile-time data (e.g. an Invoke's declared
// return type).
type TypeAttr struct {
	T types.Type
}

func (TypeAttr) AttrKind() string { return "type" }
func (t TypeAttr) String() string { return t.T.String() }
func (t TypeAttr) AttrEqual(other Attribute) bool {
	o, ok := other.(TypeAttr)
	return ok && types.IsEqual(t.T, o.T)
}

// SignatureAttr wraps a types.Signature (function type) as an Attribute.
type SignatureAttr struct {
	Sig types.Signature
}

func (SignatureAttr) AttrKind() string { return "signature" }
func (s SignatureAttr) String() string { return s.Sig.String() }
func (s SignatureAttr) AttrEqual(other Attribute) bool {
	o, ok := other.(SignatureAttr)
	if !ok || len(s.Sig.Inputs) != len(o.Sig.Inputs) {
		return false
	}
	for i := range s.Sig.Inputs {
		if !types.IsEqual(s.Sig.Inputs[i], o.Sig.Inputs[i]) {
			return false
		}
	}
	return types.IsEqual(s.Sig.Output, o.Sig.Output)
}

// SymbolAttr carries a statement's declared symbol name (used by
// SymbolOpInterface-bearing statements such as func.Func).
type SymbolAttr struct {
	Name string
}

func (SymbolAttr) AttrKind() string { return "symbol" }
func (s SymbolAttr) String() string { return s.Name }
func (s SymbolAttr) AttrEqual(other Attribute) bool {
	o, ok := other.(SymbolAttr)
	return ok && s.Name == o.Name
}

// LatticeAttr boxes an arbitrary analysis lattice element (constprop
// result, purity, the joint product...) so it can live in a statement's
// Attributes map or an SSA value's Hints, per spec.md §3 "Lattice
// attributes for analyses".
type LatticeAttr struct {
	Kind  string // e.g. "const.Result", "Purity"
	Value fmt.Stringer
	Eq    func(a, b fmt.Stringer) bool
}

func (l LatticeAttr) AttrKind() string { return l.Kind }
func (l LatticeAttr) String() string   { return l.Value.String() }
func (l LatticeAttr) AttrEqual(other Attribute) bool {
	o, ok := other.(LatticeAttr)
	if !ok || l.Kind != o.Kind {
		return false
	}
	if l.Eq != nil {
		return l.Eq(l.Value, o.Value)
	}
	return l.Value.String() == o.Value.String()
}
