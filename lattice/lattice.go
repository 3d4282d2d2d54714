// Package lattice defines the abstract bounded-lattice contract shared by
// every analysis in this kernel (the type lattice, constant-propagation
// lattice, purity lattice, and their joint product), plus the singleton
// interning machinery for canonical top/bottom elements and generic product
// lattices.
//
// This is a direct port of the role kirin.lattice.abc plays in the Python
// original: there, lattice "top"/"bottom" singletons are produced by a
// metaclass so that `is` comparison is valid; Go has no metaclasses, so we
// use an explicit process-wide interning table instead (see Intern below),
// matching design note §9 ("Metaclass-driven singletons").
package lattice

import "sync"

// Element is the bounded-lattice contract every analysis lattice element
// implements: a partial order with join, meet, and ⊑ (IsSubseteq).
// Implementations are expected to be small immutable value types.
type Element[T any] interface {
	// Join computes the least upper bound (⊔) of the receiver and other.
	Join(other T) T
	// Meet computes the greatest lower bound (⊓) of the receiver and other.
	Meet(other T) T
	// IsSubseteq reports whether the receiver ⊑ other.
	IsSubseteq(other T) bool
	// IsEqual reports structural equality, independent of Go's == operator
	// (lattice elements are frequently interfaces or contain slices/maps).
	IsEqual(other T) bool
}

// BoundedLattice additionally exposes the lattice's top (⊤) and bottom (⊥)
// elements. Top() and Bottom() are expected to always return the same
// canonical value for a given lattice kind — see Intern.
type BoundedLattice[T any] interface {
	Element[T]
	Top() T
	Bottom() T
}

var (
	internMu    sync.Mutex
	internTable = make(map[string]any)
)

// Intern returns the canonical singleton registered under key, constructing
// it with ctor on first use. This realizes the "process-wide interning
// table per lattice kind" called for by design note §9: top()/bottom()
// implementations call Intern once per kind so repeated calls return the
// identical value, letting callers compare lattice tops/bottoms by identity
// when that matters (e.g. a type-lattice cache keyed by pointer).
func Intern[T any](key string, ctor func() T) T {
	internMu.Lock()
	defer internMu.Unlock()
	if v, ok := internTable[key]; ok {
		return v.(T)
	}
	v := ctor()
	internTable[key] = v
	return v
}

// Pair is a product lattice over two component lattices: join, meet, and ⊑
// are computed component-wise. Triple below is the three-component
// counterpart that the joint analysis uses.
type Pair[A BoundedLattice[A], B BoundedLattice[B]] struct {
	First  A
	Second B
}

func (p Pair[A, B]) Join(other Pair[A, B]) Pair[A, B] {
	return Pair[A, B]{First: p.First.Join(other.First), Second: p.Second.Join(other.Second)}
}

func (p Pair[A, B]) Meet(other Pair[A, B]) Pair[A, B] {
	return Pair[A, B]{First: p.First.Meet(other.First), Second: p.Second.Meet(other.Second)}
}

func (p Pair[A, B]) IsSubseteq(other Pair[A, B]) bool {
	return p.First.IsSubseteq(other.First) && p.Second.IsSubseteq(other.Second)
}

func (p Pair[A, B]) IsEqual(other Pair[A, B]) bool {
	return p.First.IsEqual(other.First) && p.Second.IsEqual(other.Second)
}

func (p Pair[A, B]) Top() Pair[A, B] {
	var a A
	var b B
	return Pair[A, B]{First: a.Top(), Second: b.Top()}
}

func (p Pair[A, B]) Bottom() Pair[A, B] {
	var a A
	var b B
	return Pair[A, B]{First: a.Bottom(), Second: b.Bottom()}
}

// Triple is a product lattice over three component lattices. The joint
// analysis (spec.md §4.5, "Joint analysis") uses Triple[Type, Const,
// Purity] to track (type × const × purity) component-wise in one pass.
type Triple[A BoundedLattice[A], B BoundedLattice[B], C BoundedLattice[C]] struct {
	First  A
	Second B
	Third  C
}

func (t Triple[A, B, C]) Join(other Triple[A, B, C]) Triple[A, B, C] {
	return Triple[A, B, C]{
		First:  t.First.Join(other.First),
		Second: t.Second.Join(other.Second),
		Third:  t.Third.Join(other.Third),
	}
}

func (t Triple[A, B, C]) Meet(other Triple[A, B, C]) Triple[A, B, C] {
	return Triple[A, B, C]{
		First:  t.First.Meet(other.First),
		Second: t.Second.Meet(other.Second),
		Third:  t.Third.Meet(other.Third),
	}
}

func (t Triple[A, B, C]) IsSubseteq(other Triple[A, B, C]) bool {
	return t.First.IsSubseteq(other.First) &&
		t.Second.IsSubseteq(other.Second) &&
		t.Third.IsSubseteq(other.Third)
}

func (t Triple[A, B, C]) IsEqual(other Triple[A, B, C]) bool {
	return t.First.IsEqual(other.First) &&
		t.Second.IsEqual(other.Second) &&
		t.Third.IsEqual(other.Third)
}

func (t Triple[A, B, C]) Top() Triple[A, B, C] {
	var a A
	var b B
	var c C
	return Triple[A, B, C]{First: a.Top(), Second: b.Top(), Third: c.Top()}
}

func (t Triple[A, B, C]) Bottom() Triple[A, B, C] {
	var a A
	var b B
	var c C
	return Triple[A, B, C]{First: a.Bottom(), Second: b.Bottom(), Third: c.Bottom()}
}
