// Package constprop implements the constant-propagation lattice and a
// forward analysis that uses the concrete interpreter as an oracle for
// ConstantLike and Pure statements (spec.md §4.5), grounded on
// original_source/src/kirin/analysis/const/{lattice,prop}.py.
//
// The original also defines Predecessor/Union elements that track a
// per-incoming-edge constant (used by a CFG-compaction pass this kernel
// does not carry over); this port implements only the lattice the
// dataflow engine itself needs — Unknown/Bottom/Value/PartialTuple/
// PartialLambda — per the resolved Open Question in SPEC_FULL.md §11.
package constprop

import (
	"fmt"
	"reflect"

	"github.com/kirin-lang/kirin/ir"
)

// Kind tags a Result the way ir.Statement is tagged by StatementKind,
// following design note §9's declarative-variant approach instead of a
// Result/Value/PartialTuple/PartialLambda class hierarchy.
type Kind int

const (
	KindBottom Kind = iota
	KindUnknown
	KindValue
	KindPartialTuple
	KindPartialLambda
)

// Result is one constant-propagation lattice element.
type Result struct {
	Kind Kind

	Data any // KindValue

	Elems []Result // KindPartialTuple

	Code     *ir.Statement // KindPartialLambda
	Captured []Result
	ArgNames []string
}

// Unknown is the lattice's top element: nothing is known about the value.
func Unknown() Result { return Result{Kind: KindUnknown} }

// BottomResult is the lattice's bottom element: unreachable / no
// information yet.
func BottomResult() Result { return Result{Kind: KindBottom} }

// NewValue wraps a concrete host value.
func NewValue(data any) Result { return Result{Kind: KindValue, Data: data} }

// NewPartialTuple builds a partial tuple result, canonicalizing to a plain
// Value when every element is already a known Value (mirroring the
// original's PartialTupleMeta canonicalization, done here as a plain
// constructor check instead of a metaclass hook).
func NewPartialTuple(elems []Result) Result {
	data := make([]any, len(elems))
	allValues := true
	for i, e := range elems {
		if e.Kind != KindValue {
			allValues = false
			break
		}
		data[i] = e.Data
	}
	if allValues {
		return NewValue(data)
	}
	return Result{Kind: KindPartialTuple, Elems: elems}
}

// NewPartialLambda builds a closure-value result over code's captured
// environment.
func NewPartialLambda(code *ir.Statement, captured []Result, argNames []string) Result {
	return Result{Kind: KindPartialLambda, Code: code, Captured: captured, ArgNames: argNames}
}

func (r Result) String() string {
	switch r.Kind {
	case KindBottom:
		return "⊥"
	case KindUnknown:
		return "Unknown"
	case KindValue:
		return fmt.Sprintf("Value(%v)", r.Data)
	case KindPartialTuple:
		return fmt.Sprintf("PartialTuple(%v)", r.Elems)
	case KindPartialLambda:
		return fmt.Sprintf("PartialLambda(%v)", r.ArgNames)
	}
	return "?"
}

// Top returns Unknown (lattice.BoundedLattice contract).
func (Result) Top() Result { return Unknown() }

// Bottom returns BottomResult (lattice.BoundedLattice contract).
func (Result) Bottom() Result { return BottomResult() }

// IsEqual reports structural equality.
func (r Result) IsEqual(other Result) bool {
	if r.Kind != other.Kind {
		return false
	}
	switch r.Kind {
	case KindBottom, KindUnknown:
		return true
	case KindValue:
		return reflect.DeepEqual(r.Data, other.Data)
	case KindPartialTuple:
		if len(r.Elems) != len(other.Elems) {
			return false
		}
		for i := range r.Elems {
			if !r.Elems[i].IsEqual(other.Elems[i]) {
				return false
			}
		}
		return true
	case KindPartialLambda:
		if r.Code != other.Code || len(r.Captured) != len(other.Captured) {
			return false
		}
		for i := range r.Captured {
			if !r.Captured[i].IsEqual(other.Captured[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// IsSubseteq implements the lattice order: Bottom beneath everything,
// Unknown atop everything, tuples/lambdas compared pointwise, and a
// Value/PartialTuple cross-check mirroring the original's
// is_subseteq_Value override on PartialTuple.
func (r Result) IsSubseteq(other Result) bool {
	switch r.Kind {
	case KindBottom:
		return true
	case KindUnknown:
		return other.Kind == KindUnknown
	case KindValue:
		switch other.Kind {
		case KindUnknown:
			return true
		case KindValue:
			return reflect.DeepEqual(r.Data, other.Data)
		case KindPartialTuple:
			tuple, ok := r.Data.([]any)
			if !ok || len(tuple) != len(other.Elems) {
				return false
			}
			for i, e := range other.Elems {
				if !NewValue(tuple[i]).IsSubseteq(e) {
					return false
				}
			}
			return true
		}
		return false
	case KindPartialTuple:
		switch other.Kind {
		case KindUnknown:
			return true
		case KindPartialTuple:
			if len(r.Elems) != len(other.Elems) {
				return false
			}
			for i := range r.Elems {
				if !r.Elems[i].IsSubseteq(other.Elems[i]) {
					return false
				}
			}
			return true
		case KindValue:
			tuple, ok := other.Data.([]any)
			if !ok || len(tuple) != len(r.Elems) {
				return false
			}
			for i, e := range r.Elems {
				if !e.IsSubseteq(NewValue(tuple[i])) {
					return false
				}
			}
			return true
		}
		return false
	case KindPartialLambda:
		if other.Kind == KindUnknown {
			return true
		}
		if other.Kind != KindPartialLambda || r.Code != other.Code || len(r.Captured) != len(other.Captured) {
			return false
		}
		for i := range r.Captured {
			if !r.Captured[i].IsSubseteq(other.Captured[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Join computes the least upper bound, specializing PartialTuple/
// PartialLambda the way the original's Result.join overrides do, and
// otherwise falling back to "either side already contains the other, else
// Unknown" (its SimpleJoinMixin default).
func (r Result) Join(other Result) Result {
	if r.IsSubseteq(other) {
		return other
	}
	if other.IsSubseteq(r) {
		return r
	}
	switch r.Kind {
	case KindPartialTuple:
		if other.Kind == KindPartialTuple && len(r.Elems) == len(other.Elems) {
			elems := make([]Result, len(r.Elems))
			for i := range elems {
				elems[i] = r.Elems[i].Join(other.Elems[i])
			}
			return NewPartialTuple(elems)
		}
		if other.Kind == KindValue {
			if tuple, ok := other.Data.([]any); ok && len(tuple) == len(r.Elems) {
				elems := make([]Result, len(r.Elems))
				for i := range elems {
					elems[i] = r.Elems[i].Join(NewValue(tuple[i]))
				}
				return NewPartialTuple(elems)
			}
		}
		return Unknown()
	case KindPartialLambda:
		if other.Kind == KindBottom {
			return r
		}
		if other.Kind != KindPartialLambda || r.Code != other.Code {
			return Unknown()
		}
		if len(r.Captured) != len(other.Captured) {
			return Unknown()
		}
		captured := make([]Result, len(r.Captured))
		for i := range captured {
			captured[i] = r.Captured[i].Join(other.Captured[i])
		}
		return NewPartialLambda(r.Code, captured, r.ArgNames)
	default:
		return Unknown()
	}
}

// Meet computes the greatest lower bound, mirroring Join's structure with
// Bottom as the "give up" fallback instead of Unknown.
func (r Result) Meet(other Result) Result {
	if r.IsSubseteq(other) {
		return r
	}
	if other.IsSubseteq(r) {
		return other
	}
	switch r.Kind {
	case KindPartialTuple:
		if other.Kind == KindPartialTuple && len(r.Elems) == len(other.Elems) {
			elems := make([]Result, len(r.Elems))
			for i := range elems {
				elems[i] = r.Elems[i].Meet(other.Elems[i])
			}
			return NewPartialTuple(elems)
		}
		if other.Kind == KindValue {
			if tuple, ok := other.Data.([]any); ok && len(tuple) == len(r.Elems) {
				elems := make([]Result, len(r.Elems))
				for i := range elems {
					elems[i] = r.Elems[i].Meet(NewValue(tuple[i]))
				}
				return NewPartialTuple(elems)
			}
		}
		return r.Bottom()
	case KindPartialLambda:
		if other.Kind != KindPartialLambda || r.Code != other.Code {
			return r.Bottom()
		}
		if len(r.Captured) != len(other.Captured) {
			return r.Bottom()
		}
		captured := make([]Result, len(r.Captured))
		for i := range captured {
			captured[i] = r.Captured[i].Meet(other.Captured[i])
		}
		return NewPartialLambda(r.Code, captured, r.ArgNames)
	default:
		return r.Bottom()
	}
}
