// Package types implements the type lattice described in spec.md §4.6: the
// partial order (⊑) over PyClass/Generic/Literal/TypeVar/Vararg/Union/
// Hinted kinds, with Any as top and Bottom as bottom. It is the
// TypeAttribute half of the Attribute variants in the IR data model.
//
// Grounded on the substitution/cycle-safety machinery of funxy's
// internal/typesystem (types.go, unify.go, kinds.go), adapted from a
// Hindley-Milner unifier to the simpler subtyping lattice kirin's
// TypeAttribute describes: no unification variables are solved to a single
// type, only joined/met/compared under ⊑.
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kirin-lang/kirin/lattice"
)

// Type is the interface every type-lattice element implements.
type Type interface {
	fmt.Stringer
	isType()
}

// AnyType is the lattice top: every type is ⊑ Any.
type AnyType struct{}

func (AnyType) isType()       {}
func (AnyType) String() string { return "Any" }

// Any returns the canonical top element.
func Any() Type { return anySingleton }

var anySingleton = lattice.Intern("types.Any", func() Type { return AnyType{} })

// BottomType is the lattice bottom: Bottom is ⊑ every type.
type BottomType struct{}

func (BottomType) isType()        {}
func (BottomType) String() string { return "Bottom" }

// Bottom returns the canonical bottom element.
func Bottom() Type { return bottomSingleton }

var bottomSingleton = lattice.Intern("types.Bottom", func() Type { return BottomType{} })

// PyClass names a host class by its fully-qualified name plus the chain of
// ancestor class names (most-derived first, excluding itself) needed to
// decide subclassing without a live runtime class object.
type PyClass struct {
	Name      string
	Ancestors []string
}

func (PyClass) isType() {}
func (p PyClass) String() string { return p.Name }

// IsSubclassOf reports whether p is c or a descendant of c, per the
// Ancestors chain supplied at construction.
func (p PyClass) IsSubclassOf(c PyClass) bool {
	if p.Name == c.Name {
		return true
	}
	for _, a := range p.Ancestors {
		if a == c.Name {
			return true
		}
	}
	return false
}

// Generic is a parameterized type: body applied to a list of type
// arguments, with an optional trailing Vararg-shaped argument.
type Generic struct {
	Body   Type
	Vars   []Type
	Vararg *VarargType // nil if the generic has no variadic tail
}

func (Generic) isType() {}
func (g Generic) String() string {
	parts := make([]string, len(g.Vars))
	for i, v := range g.Vars {
		parts[i] = v.String()
	}
	if g.Vararg != nil {
		parts = append(parts, g.Vararg.String())
	}
	return fmt.Sprintf("%s[%s]", g.Body, strings.Join(parts, ", "))
}

// Literal pins a type to a single known host value, e.g. the literal 3
// rather than the class Int.
type Literal struct {
	Value any
}

func (Literal) isType() {}
func (l Literal) String() string { return fmt.Sprintf("Literal(%v)", l.Value) }

// TypeVar is an unresolved type variable with an upper bound; it behaves as
// Bottom until resolved and as Bound above that.
type TypeVar struct {
	Name  string
	Bound Type
}

func (TypeVar) isType() {}
func (t TypeVar) String() string { return t.Name }

// VarargType marks the trailing element type of a variadic parameter list.
type VarargType struct {
	Elem Type
}

func (VarargType) isType() {}
func (v VarargType) String() string { return fmt.Sprintf("*%s", v.Elem) }

// Union is a finite, order-independent set of alternative types.
type Union struct {
	Options []Type
}

func (Union) isType() {}
func (u Union) String() string {
	parts := make([]string, len(u.Options))
	for i, o := range u.Options {
		parts[i] = o.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, " | ")
}

// NewUnion builds a Union, flattening nested unions and deduplicating
// structurally-equal members. A single remaining member collapses to that
// member directly (no singleton unions survive construction).
func NewUnion(options ...Type) Type {
	var flat []Type
	for _, o := range options {
		if u, ok := o.(Union); ok {
			flat = append(flat, u.Options...)
		} else {
			flat = append(flat, o)
		}
	}
	var dedup []Type
	for _, f := range flat {
		found := false
		for _, d := range dedup {
			if IsEqual(d, f) {
				found = true
				break
			}
		}
		if !found {
			dedup = append(dedup, f)
		}
	}
	if len(dedup) == 1 {
		return dedup[0]
	}
	if len(dedup) == 0 {
		return Bottom()
	}
	return Union{Options: dedup}
}

// Hinted attaches advisory side data to an inner type; the hint never
// affects ⊑, only downstream consumers that know to look for it (e.g. a
// lowering front-end attaching a source-syntax hint).
type Hinted struct {
	Data  any
	Inner Type
}

func (Hinted) isType() {}
func (h Hinted) String() string { return fmt.Sprintf("%s{%v}", h.Inner, h.Data) }

// Signature is a function type: a tuple of input types and a single output
// type. It is itself an Attribute (spec.md §3, "Signature: a function type")
// distinct from ir's dispatch-key Signature, which pairs a statement class
// with a tuple of argument types.
type Signature struct {
	Inputs []Type
	Output Type
}

func (Signature) isType() {}
func (s Signature) String() string {
	parts := make([]string, len(s.Inputs))
	for i, in := range s.Inputs {
		parts[i] = in.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), s.Output)
}
