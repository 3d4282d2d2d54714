package ir

import "github.com/kirin-lang/kirin/kerr"

// Trait is a declarative marker attached to a StatementKind: it may gate
// lowering, expose structured accessors, or gate a verification rule
// (spec.md §4.2).
type Trait interface {
	TraitName() string
}

// Verifier is implemented by traits that run an extra check against each
// statement that bears them, beyond the structural checks Verify always
// performs.
type Verifier interface {
	Trait
	VerifyStmt(s *Statement) error
}

// Pure marks a statement as side-effect free; queried by DCE and const prop.
type PureTrait struct{}

func (PureTrait) TraitName() string { return "Pure" }

var Pure Trait = PureTrait{}

// MaybePureTrait marks a statement (typically a Call) that may be pure if
// its callee is; purity is then recorded as an attribute by analysis
// rather than declared statically. See MaybePureIsPure/MaybePureSetPure
// below.
type MaybePureTrait struct{}

func (MaybePureTrait) TraitName() string { return "MaybePure" }

var MaybePure Trait = MaybePureTrait{}

const purityAttrKey = "purity"

// MaybePureIsPure reports whether a prior analysis pass has proven s pure
// via MaybePureSetPure.
func MaybePureIsPure(s *Statement) bool {
	a, ok := s.Attributes[purityAttrKey]
	if !ok {
		return false
	}
	p, ok := a.(PyAttr)
	return ok && p.Data == true
}

// MaybePureSetPure records that analysis has proven s pure.
func MaybePureSetPure(s *Statement) {
	if s.Attributes == nil {
		s.Attributes = make(map[string]Attribute)
	}
	s.Attributes[purityAttrKey] = PyAttr{Data: true}
}

// ConstantLikeTrait marks a statement as representing a compile-time
// constant value (e.g. py.Constant).
type ConstantLikeTrait struct{}

func (ConstantLikeTrait) TraitName() string { return "ConstantLike" }

var ConstantLike Trait = ConstantLikeTrait{}

// IsTerminatorTrait marks a statement that must be the last statement of
// its block.
type IsTerminatorTrait struct{}

func (IsTerminatorTrait) TraitName() string { return "IsTerminator" }

func (IsTerminatorTrait) VerifyStmt(s *Statement) error {
	if s.Parent == nil {
		return kerr.NewVerificationError(s.Kind.Name(), "terminator has no parent block")
	}
	if s.Parent.LastStmt() != s {
		return kerr.NewVerificationError(s.Kind.Name(), "terminator is not the last statement of its block")
	}
	return nil
}

var IsTerminator Trait = IsTerminatorTrait{}

// NoTerminatorTrait marks a region whose blocks are not required to end in
// a terminator (attached to the owning statement, not the region itself).
type NoTerminatorTrait struct{}

func (NoTerminatorTrait) TraitName() string { return "NoTerminator" }

var NoTerminator Trait = NoTerminatorTrait{}

// IsolatedFromAboveTrait marks a statement whose regions may not
// implicitly capture SSA values defined outside them.
type IsolatedFromAboveTrait struct{}

func (IsolatedFromAboveTrait) TraitName() string { return "IsolatedFromAbove" }

var IsolatedFromAbove Trait = IsolatedFromAboveTrait{}

// HasParentTrait requires that the statement's parent chain contain an
// instance of one of Parents.
type HasParentTrait struct {
	Parents []StatementKind
}

func (HasParentTrait) TraitName() string { return "HasParent" }

func (h HasParentTrait) VerifyStmt(s *Statement) error {
	block := s.Parent
	for block != nil {
		owner := block.Parent.Owner
		if owner != nil {
			for _, want := range h.Parents {
				if owner.Kind.Name() == want.Name() {
					return nil
				}
			}
		}
		if owner == nil {
			break
		}
		block = owner.Parent
	}
	return kerr.NewVerificationError(s.Kind.Name(), "parent chain does not contain a required ancestor")
}

// CallableStmtInterface exposes the region that constitutes a callable
// statement's body (spec.md glossary: "Callable statement").
type CallableStmtInterface struct {
	RegionIndex int
}

func (CallableStmtInterface) TraitName() string { return "CallableStmtInterface" }

func (c CallableStmtInterface) GetCallableRegion(s *Statement) *Region {
	return s.Regions[c.RegionIndex]
}

// SymbolOpInterface exposes a statement's declared symbol name.
type SymbolOpInterface struct {
	AttrKey string
}

func (SymbolOpInterface) TraitName() string { return "SymbolOpInterface" }

func (si SymbolOpInterface) GetSymName(s *Statement) string {
	key := si.AttrKey
	if key == "" {
		key = "sym_name"
	}
	a, ok := s.Attributes[key]
	if !ok {
		return ""
	}
	sa, ok := a.(SymbolAttr)
	if !ok {
		return ""
	}
	return sa.Name
}

// FromPythonCallTrait gates lowering of a Python call expression to this
// statement kind (an external lowering front-end's concern; declared here
// so the registry's lowering tables have something to key on).
type FromPythonCallTrait struct{}

func (FromPythonCallTrait) TraitName() string { return "FromPythonCall" }

var FromPythonCall Trait = FromPythonCallTrait{}

// FromPythonWithTrait gates lowering of a Python with-statement.
type FromPythonWithTrait struct{}

func (FromPythonWithTrait) TraitName() string { return "FromPythonWith" }

var FromPythonWith Trait = FromPythonWithTrait{}

// HasTrait reports whether kind declares a trait assignable to T, and
// returns it.
func HasTrait[T Trait](kind StatementKind) (T, bool) {
	var zero T
	for _, tr := range kind.Traits() {
		if t, ok := tr.(T); ok {
			return t, true
		}
	}
	return zero, false
}
