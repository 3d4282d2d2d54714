// Package ir implements the IR graph described in spec.md §3–§4.1–§4.2: SSA
// values, uses, statements, blocks, regions, attributes, traits, and the
// dialect registry that binds statement kinds to interpretation/lowering
// implementations (§4.3).
//
// Grounded on design note §9 ("deep inheritance... replace by a declarative
// schema... tagged variants plus a trait-as-bitset"): statements are a
// single concrete struct carrying a StatementKind tag rather than a class
// hierarchy, and traits are markers looked up by type-switch against a
// per-kind slice rather than virtual dispatch.
package ir

import "github.com/kirin-lang/kirin/types"

// Use identifies an operand slot: the statement using a value, and the
// positional index of that operand within the user's Args. Use is
// comparable, so a value's use-set can be represented directly as
// map[Use]struct{} — adding/removing a use is then just a map write,
// matching spec.md §3's "maintained bidirectionally with SSAValue".
type Use struct {
	User    *Statement
	Operand int
}

// SSAValue is a use-def reference: either a BlockArgument (owned by a
// Block, whose Index matches its position in the block's argument list) or
// a ResultValue (owned by a Statement, whose Index matches its position in
// the statement's results).
type SSAValue struct {
	Type types.Type
	Name string // optional symbolic name, preserved by a lowering front-end

	OwnerBlock *Block     // non-nil iff this is a BlockArgument
	OwnerStmt  *Statement // non-nil iff this is a ResultValue
	Index      int

	uses  map[Use]struct{}
	Hints map[string]any // advisory, keyed by string (e.g. "const" -> lattice element)
}

// IsBlockArgument reports whether v is a BlockArgument (as opposed to a
// ResultValue).
func (v *SSAValue) IsBlockArgument() bool { return v.OwnerBlock != nil }

// Uses returns the set of uses currently recorded against v. The returned
// slice is a snapshot; mutating the IR while iterating it is unsafe.
func (v *SSAValue) Uses() []Use {
	out := make([]Use, 0, len(v.uses))
	for u := range v.uses {
		out = append(out, u)
	}
	return out
}

// HasNoUses reports whether v's use-set is empty, the precondition for
// deleting its owner (spec.md §3 invariant: "deleting a value requires its
// use-set to be empty").
func (v *SSAValue) HasNoUses() bool { return len(v.uses) == 0 }

func (v *SSAValue) addUse(u Use) {
	if v.uses == nil {
		v.uses = make(map[Use]struct{})
	}
	v.uses[u] = struct{}{}
}

func (v *SSAValue) removeUse(u Use) {
	delete(v.uses, u)
}

// SetHint monotonically records an analysis hint: if the hint is a lattice
// element implementing Joinable, writing it joins with any existing value
// at that key, rather than overwriting (spec.md §3: "writing a hint is
// monotone").
func (v *SSAValue) SetHint(key string, value any) {
	if v.Hints == nil {
		v.Hints = make(map[string]any)
	}
	if existing, ok := v.Hints[key]; ok {
		if j, ok := existing.(Joinable); ok {
			if other, ok := value.(Joinable); ok {
				v.Hints[key] = j.JoinAny(other)
				return
			}
		}
	}
	v.Hints[key] = value
}

// Joinable is implemented by lattice-element hint payloads so SetHint can
// join rather than clobber.
type Joinable interface {
	JoinAny(other Joinable) Joinable
}

// ReplaceAllUsesWith rewrites every recorded use of v to point at
// replacement instead, then empties v's use-set (spec.md §4.1 "Replace a
// value").
func ReplaceAllUsesWith(v, replacement *SSAValue) {
	if v == replacement {
		return
	}
	for u := range v.uses {
		u.User.Args[u.Operand] = replacement
		replacement.addUse(u)
	}
	v.uses = nil
}
