package types

// Elem adapts Type to the lattice.BoundedLattice[Elem] contract so the
// generic forward dataflow engine (package dataflow) can be instantiated
// over the type lattice directly, the same way it is instantiated over
// constprop.Result.
type Elem struct {
	T Type
}

// Of wraps a concrete Type as a lattice element.
func Of(t Type) Elem { return Elem{T: t} }

func (e Elem) Join(other Elem) Elem        { return Elem{T: Join(e.T, other.T)} }
func (e Elem) Meet(other Elem) Elem        { return Elem{T: Meet(e.T, other.T)} }
func (e Elem) IsSubseteq(other Elem) bool  { return IsSubseteq(e.T, other.T) }
func (e Elem) IsEqual(other Elem) bool     { return IsEqual(e.T, other.T) }
func (e Elem) Top() Elem                   { return Elem{T: Any()} }
func (e Elem) Bottom() Elem                { return Elem{T: Bottom()} }
func (e Elem) String() string {
	if e.T == nil {
		return "<nil>"
	}
	return e.T.String()
}
