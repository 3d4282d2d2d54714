package ir

import "github.com/kirin-lang/kirin/types"

// Block is an ordered sequence of statements (a doubly-linked list anchored
// by first/last) with a typed argument list and a back-reference to its
// parent region.
type Block struct {
	Args   []*SSAValue
	Parent *Region
	Name   string

	first *Statement
	last  *Statement
}

// NewBlock constructs a block with arguments of the given types. Each
// argument's OwnerBlock/Index are wired immediately; the block itself has
// no parent region until it is appended to one.
func NewBlock(argTypes []types.Type) *Block {
	b := &Block{}
	b.Args = make([]*SSAValue, len(argTypes))
	for i, t := range argTypes {
		b.Args[i] = &SSAValue{Type: t, OwnerBlock: b, Index: i}
	}
	return b
}

// FirstStmt returns the block's first statement, or nil if empty.
func (b *Block) FirstStmt() *Statement { return b.first }

// LastStmt returns the block's last statement, or nil if empty.
func (b *Block) LastStmt() *Statement { return b.last }

// IsEmpty reports whether the block has no statements.
func (b *Block) IsEmpty() bool { return b.first == nil }

// Statements returns the block's statements in order. The returned slice is
// a snapshot.
func (b *Block) Statements() []*Statement {
	var out []*Statement
	for s := b.first; s != nil; s = s.next {
		out = append(out, s)
	}
	return out
}

// Terminator returns the block's terminator statement, if its last
// statement bears IsTerminator.
func (b *Block) Terminator() *Statement {
	if b.last == nil {
		return nil
	}
	if _, ok := HasStmtTrait[IsTerminatorTrait](b.last); ok {
		return b.last
	}
	return nil
}

// Splice moves every statement out of src onto the end of dst, in order,
// leaving src empty. Used by cfg.Compactify when folding a block into its
// sole predecessor (spec.md §4.7 rule 2).
func Splice(dst, src *Block) {
	s := src.first
	src.first = nil
	src.last = nil
	for s != nil {
		next := s.next
		s.prev = nil
		s.next = nil
		s.Parent = nil
		Append(dst, s)
		s = next
	}
}
