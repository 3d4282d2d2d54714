package ir

import (
	"fmt"

	"github.com/kirin-lang/kirin/kerr"
	"github.com/kirin-lang/kirin/types"
)

// StatementKind is the dispatch tag every Statement carries (the
// declarative replacement for a class hierarchy, per design note §9).
// Concrete dialects implement it with stateless singleton values, e.g.
// dialects/py.AddKind{}.
type StatementKind interface {
	// Name is the statement's printable name, also used as half of a
	// dispatch Signature.
	Name() string
	// Dialect is the name of the dialect that introduced this kind.
	Dialect() string
	// Traits lists the declarative markers attached to this kind.
	Traits() []Trait
	// NumRegions is the number of regions a well-formed instance owns.
	NumRegions() int
}

// Statement is the IR's single instruction shape: a fixed schema of
// operands, results, attributes, successors, and regions, tagged by Kind.
type Statement struct {
	Kind StatementKind

	Args      []*SSAValue
	ArgsSlice map[string][]*SSAValue // named slices for structured access

	Results []*SSAValue

	Attributes map[string]Attribute
	Successors []*Block
	Regions    []*Region

	Parent *Block
	prev   *Statement
	next   *Statement

	Source *SourceInfo
}

// SourceInfo is the minimal source-location payload carried by a
// statement, used in diagnostics when a lowering front-end supplies it.
type SourceInfo struct {
	File   string
	Lineno int
	Col    int
}

// NewStatement constructs a statement: it registers uses for every operand
// in args, allocates and wires Results for each entry in resultTypes, and
// sets each region's Owner back-pointer. The returned statement is
// detached (Parent is nil) until inserted into a block.
func NewStatement(kind StatementKind, args []*SSAValue, attrs map[string]Attribute, successors []*Block, regions []*Region, resultTypes []types.Type) *Statement {
	s := &Statement{
		Kind:       kind,
		Args:       args,
		Attributes: attrs,
		Successors: successors,
		Regions:    regions,
	}
	for i, a := range args {
		if a != nil {
			a.addUse(Use{User: s, Operand: i})
		}
	}
	s.Results = make([]*SSAValue, len(resultTypes))
	for i, t := range resultTypes {
		s.Results[i] = &SSAValue{Type: t, OwnerStmt: s, Index: i}
	}
	for _, r := range regions {
		r.Owner = s
	}
	return s
}

// SetArgs replaces s's entire operand list with args, updating use-tracking
// for both the removed and the newly installed operands. Used by cfg's
// branch-collapsing compactification rule to rewrite a forwarded branch's
// operands once an intermediate empty block is folded out.
func SetArgs(s *Statement, args []*SSAValue) {
	for i, a := range s.Args {
		if a != nil {
			a.removeUse(Use{User: s, Operand: i})
		}
	}
	s.Args = args
	for i, a := range s.Args {
		if a != nil {
			a.addUse(Use{User: s, Operand: i})
		}
	}
}

// Result returns the i-th result value, or nil if out of range.
func (s *Statement) Result(i int) *SSAValue {
	if i < 0 || i >= len(s.Results) {
		return nil
	}
	return s.Results[i]
}

// Next returns the statement following s in its block, or nil.
func (s *Statement) Next() *Statement { return s.next }

// Prev returns the statement preceding s in its block, or nil.
func (s *Statement) Prev() *Statement { return s.prev }

// HasStmtTrait reports whether s's kind declares a trait assignable to T.
func HasStmtTrait[T Trait](s *Statement) (T, bool) {
	return HasTrait[T](s.Kind)
}

// AllResultsUnused reports whether every result of s currently has an
// empty use-set — the precondition DCE and Delete check.
func (s *Statement) AllResultsUnused() bool {
	for _, r := range s.Results {
		if !r.HasNoUses() {
			return false
		}
	}
	return true
}

// Append adds s to the end of block's statement list.
func Append(block *Block, s *Statement) error {
	if s.Parent != nil {
		return kerr.NewVerificationError(s.Kind.Name(), "statement already belongs to a block")
	}
	s.Parent = block
	if block.last == nil {
		block.first = s
		block.last = s
		return nil
	}
	s.prev = block.last
	block.last.next = s
	block.last = s
	return nil
}

// InsertBefore inserts s immediately before anchor, which must already be
// in a block.
func InsertBefore(anchor, s *Statement) error {
	if s.Parent != nil {
		return kerr.NewVerificationError(s.Kind.Name(), "statement already belongs to a block")
	}
	if anchor.Parent == nil {
		return kerr.NewVerificationError(anchor.Kind.Name(), "anchor statement is not in a block")
	}
	block := anchor.Parent
	s.Parent = block
	s.prev = anchor.prev
	s.next = anchor
	if anchor.prev != nil {
		anchor.prev.next = s
	} else {
		block.first = s
	}
	anchor.prev = s
	return nil
}

// InsertAfter inserts s immediately after anchor, which must already be in
// a block.
func InsertAfter(anchor, s *Statement) error {
	if s.Parent != nil {
		return kerr.NewVerificationError(s.Kind.Name(), "statement already belongs to a block")
	}
	if anchor.Parent == nil {
		return kerr.NewVerificationError(anchor.Kind.Name(), "anchor statement is not in a block")
	}
	block := anchor.Parent
	s.Parent = block
	s.next = anchor.next
	s.prev = anchor
	if anchor.next != nil {
		anchor.next.prev = s
	} else {
		block.last = s
	}
	anchor.next = s
	return nil
}

// Unlink detaches s from its block's statement list without touching any
// use edges. Callers that want a full teardown should call Delete instead.
func unlink(s *Statement) {
	block := s.Parent
	if block == nil {
		return
	}
	if s.prev != nil {
		s.prev.next = s.next
	} else {
		block.first = s.next
	}
	if s.next != nil {
		s.next.prev = s.prev
	} else {
		block.last = s.prev
	}
	s.prev = nil
	s.next = nil
	s.Parent = nil
}

// Delete removes s from its block, requiring every result to have an empty
// use-set, and un-registers uses of its own operands (spec.md §4.1
// "Delete").
func Delete(s *Statement) error {
	if !s.AllResultsUnused() {
		return kerr.NewVerificationError(s.Kind.Name(), "cannot delete statement with live result uses")
	}
	for i, a := range s.Args {
		if a != nil {
			a.removeUse(Use{User: s, Operand: i})
		}
	}
	unlink(s)
	return nil
}

// Replace substitutes s with replacement: each of s's results transfers its
// uses to the corresponding result of replacement (by index; counts must
// match), replacement is inserted in s's place, then s is deleted
// (spec.md §4.1 "Replace a statement").
func Replace(s, replacement *Statement) error {
	if len(s.Results) != len(replacement.Results) {
		return kerr.NewVerificationError(s.Kind.Name(), fmt.Sprintf("result count mismatch replacing with %s", replacement.Kind.Name()))
	}
	if err := InsertBefore(s, replacement); err != nil {
		return err
	}
	for i := range s.Results {
		ReplaceAllUsesWith(s.Results[i], replacement.Results[i])
	}
	return Delete(s)
}
