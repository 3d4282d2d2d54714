// Package joint implements the joint (type × const × purity) analysis
// (spec.md §4.5 "Joint analysis combines (type, const, purity)
// component-wise with product-lattice ⊑/join/meet"), grounded on
// original_source/src/kirin/analysis/typeinfer.py's JointResult sibling of
// const.Propagate's Result, and on ir/traits.go's Pure/MaybePure markers for
// the purity component.
//
// Rather than registering a third per-dialect dispatch table alongside
// "constprop" and "typeinfer", joint composes the two already-built engines
// (package constprop, package typeinfer) with a dedicated static purity
// inference: type and const are each already fully determined by those
// engines, and purity is already fully determined by the Pure/MaybePure
// traits declared on each statement kind, so a duplicate dispatch table
// would add indirection without adding information.
package joint

import (
	"fmt"

	"github.com/kirin-lang/kirin/constprop"
	"github.com/kirin-lang/kirin/dataflow"
	"github.com/kirin-lang/kirin/dialects/func"
	"github.com/kirin-lang/kirin/ir"
	"github.com/kirin-lang/kirin/lattice"
	"github.com/kirin-lang/kirin/types"
)

// PurityKind tags a Purity lattice element (spec.md §4.2: "purity a
// 4-element lattice").
type PurityKind int

const (
	// PurityBottom is "not yet determined" (unreached).
	PurityBottom PurityKind = iota
	// PurityPure marks a statement/method with no observable side effects.
	PurityPure
	// PurityImpure marks a statement/method known to have side effects.
	PurityImpure
	// PurityTop is "conflicting or unresolvable" (e.g. a dynamic func.Call
	// whose callee purity cannot be determined statically).
	PurityTop
)

func (k PurityKind) String() string {
	switch k {
	case PurityBottom:
		return "⊥"
	case PurityPure:
		return "Pure"
	case PurityImpure:
		return "Impure"
	case PurityTop:
		return "⊤"
	}
	return "?"
}

// Purity is the bounded lattice {Bottom, Pure, Impure, Top} ordered
// Bottom ⊑ Pure ⊑ Top and Bottom ⊑ Impure ⊑ Top, with Pure and Impure
// themselves incomparable.
type Purity struct{ Kind PurityKind }

func (p Purity) String() string { return p.Kind.String() }

func (Purity) Top() Purity    { return Purity{PurityTop} }
func (Purity) Bottom() Purity { return Purity{PurityBottom} }

func (p Purity) IsEqual(other Purity) bool { return p.Kind == other.Kind }

func (p Purity) IsSubseteq(other Purity) bool {
	if p.Kind == other.Kind || p.Kind == PurityBottom || other.Kind == PurityTop {
		return true
	}
	return false
}

func (p Purity) Join(other Purity) Purity {
	if p.Kind == other.Kind {
		return p
	}
	if p.Kind == PurityBottom {
		return other
	}
	if other.Kind == PurityBottom {
		return p
	}
	return Purity{PurityTop}
}

func (p Purity) Meet(other Purity) Purity {
	if p.Kind == other.Kind {
		return p
	}
	if p.Kind == PurityTop {
		return other
	}
	if other.Kind == PurityTop {
		return p
	}
	return Purity{PurityBottom}
}

// Elem is the joint analysis's product lattice element: type × const ×
// purity, built on lattice.Triple exactly as spec.md §4.5 names it.
type Elem = lattice.Triple[types.Elem, constprop.Result, Purity]

// NewElem builds a joint element from its three components.
func NewElem(t types.Elem, c constprop.Result, p Purity) Elem {
	return Elem{First: t, Second: c, Third: p}
}

func (e Elem) String() string {
	return fmt.Sprintf("(%s, %s, %s)", e.First, e.Second, e.Third)
}

// Analyze runs constprop and typeinfer over method (each independently
// memoized the way their own packages already memoize cross-method
// recursion), infers method's purity statically, and combines the three
// into one map[*ir.SSAValue]Elem plus the method's overall joint result.
func Analyze(dialects *ir.DialectGroup, method *ir.Method) (map[*ir.SSAValue]Elem, Elem, error) {
	typeEngine := dataflow.New[types.Elem](dialects, "typeinfer")
	typeValues, retType, err := typeEngine.Run(method)
	if err != nil {
		return nil, Elem{}, err
	}

	constEngine := constprop.New(dialects)
	constValues, retConst, err := constEngine.Run(method)
	if err != nil {
		return nil, Elem{}, err
	}

	purity := InferPurity(method, make(map[*ir.Method]Purity))

	values := make(map[*ir.SSAValue]Elem)
	for v, t := range typeValues {
		c, ok := constValues[v]
		if !ok {
			c = constprop.BottomResult()
		}
		values[v] = NewElem(t, c, purity)
	}
	for v, c := range constValues {
		if _, ok := values[v]; !ok {
			values[v] = NewElem(types.Of(types.Bottom()), c, purity)
		}
	}

	return values, NewElem(types.Of(retType), retConst, purity), nil
}

// InferPurity statically classifies method as Pure only if every statement
// reachable from its callable region (recursively, including nested
// regions) is Pure, or a MaybePure statement whose callee resolves (via
// func.Invoke's statically-known callee) to a Pure method in turn. Any
// Impure statement makes the method Impure. A dynamic func.Call's callee
// is never statically known, so it widens the method to Top, as does an
// invoked callee classified Top; Impure still takes precedence over Top.
// visiting guards against infinite recursion on a call cycle: a method
// already being classified higher up the recursion is optimistically
// treated as Pure, the same "assume best case, let the cycle's actual
// statements falsify it" approach dataflow fixpoints use.
func InferPurity(method *ir.Method, visiting map[*ir.Method]Purity) Purity {
	if p, ok := visiting[method]; ok {
		return p
	}
	visiting[method] = Purity{PurityPure}

	result := Purity{PurityPure}
	ir.Walk(method.Code, func(s *ir.Statement) {
		if s == method.Code || result.Kind == PurityImpure {
			return
		}
		p := statementPurity(s, visiting)
		_, maybePure := ir.HasStmtTrait[ir.MaybePureTrait](s)
		switch {
		case p.Kind == PurityImpure:
			result = p
		case maybePure && p.Kind == PurityTop:
			result = p
		case result.Kind != PurityTop:
			result = result.Meet(p)
		}
	})

	visiting[method] = result
	return result
}

// statementPurity classifies one statement, in isolation from its nested
// regions (Walk visits those separately, so their own contributions are
// combined in independently): Pure-tagged statements contribute Pure;
// MaybePure's contribution depends on whether its callee is statically
// known (func.Invoke, recurse) or not (func.Call, widen to Top); a
// statement that owns nested regions (scf.IfElse/For) or is merely a
// terminator with no operation of its own (func.Return, scf.Yield)
// contributes Top, the Meet identity — its regions' and operands'
// statements already account for any real effect. Anything else is
// Impure: a conservative default for a future dialect statement that adds
// a genuine side effect without declaring Pure/MaybePure.
func statementPurity(s *ir.Statement, visiting map[*ir.Method]Purity) Purity {
	if _, ok := ir.HasStmtTrait[ir.PureTrait](s); ok {
		return Purity{PurityPure}
	}
	if _, ok := ir.HasStmtTrait[ir.MaybePureTrait](s); ok {
		if callee := invokeCallee(s); callee != nil {
			return InferPurity(callee, visiting)
		}
		return Purity{PurityTop}
	}
	if len(s.Regions) > 0 {
		return Purity{PurityTop}
	}
	if _, ok := ir.HasStmtTrait[ir.IsTerminatorTrait](s); ok {
		return Purity{PurityTop}
	}
	return Purity{PurityImpure}
}

// invokeCallee returns s's statically-known callee if s is a func.Invoke,
// or nil for anything else (in particular a func.Call, whose callee is a
// runtime value).
func invokeCallee(s *ir.Statement) *ir.Method {
	if s.Kind.Name() == "invoke" && s.Kind.Dialect() == "func" {
		return funcd.InvokeCallee(s)
	}
	return nil
}
