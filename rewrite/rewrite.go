// Package rewrite implements the rewrite engine (spec.md §4.8): a rule
// contract with three optional hooks, Walk/Fixpoint/Chain combinators, and
// the canonical passes (DeadCodeElimination, CommonSubexpressionElimination,
// ConstantFold, Inline, Call2Invoke, GlobalValueElimination, WrapConst).
// Grounded on original_source/src/kirin/rewrite/{abc.py,walk.py} for the
// rule contract and combinators, and original_source/src/kirin/dialects/
// {py,func}'s own rewrite submodules for the canonical passes' shapes.
package rewrite

import "github.com/kirin-lang/kirin/ir"

// RewriteResult is the outcome of applying a rule once: whether it changed
// anything, whether it asked the driving combinator to stop early, and
// whether a Fixpoint driver exhausted its iteration budget. The zero value
// is "no change" (spec.md §4.8 "RewriteResult{has_done_something,
// terminated, exceeded_max_iter}").
type RewriteResult struct {
	HasDoneSomething bool
	Terminated       bool
	ExceededMaxIter  bool
}

// NoChange is the result of a rule that did nothing.
var NoChange = RewriteResult{}

// Changed is the result of a rule that mutated the IR and wants the
// traversal to continue.
var Changed = RewriteResult{HasDoneSomething: true}

// Join combines two results monotonically: any field true in either side
// stays true (spec.md §4.8 "combines monotonically via a join operator").
func (r RewriteResult) Join(other RewriteResult) RewriteResult {
	return RewriteResult{
		HasDoneSomething: r.HasDoneSomething || other.HasDoneSomething,
		Terminated:        r.Terminated || other.Terminated,
		ExceededMaxIter:    r.ExceededMaxIter || other.ExceededMaxIter,
	}
}

// StatementRewriter is RewriteRule's rewrite_Statement hook.
type StatementRewriter interface {
	RewriteStatement(s *ir.Statement) (RewriteResult, error)
}

// BlockRewriter is RewriteRule's rewrite_Block hook.
type BlockRewriter interface {
	RewriteBlock(b *ir.Block) (RewriteResult, error)
}

// RegionRewriter is RewriteRule's rewrite_Region hook.
type RegionRewriter interface {
	RewriteRegion(r *ir.Region) (RewriteResult, error)
}

// Walk applies rule in pre-order over stmt and everything nested in its
// regions: rule's RewriteStatement fires on stmt itself first, then each
// region it owns is walked (RewriteRegion, then each block's
// RewriteBlock, then that block's statements recursively). Traversal
// captures each statement's successor before recursing into it, so a rule
// may safely delete or replace the statement it is currently visiting
// (spec.md §4.8 "Walk(rule) — pre-order traversal over the IR applying the
// rule").
func Walk(rule any, stmt *ir.Statement) (RewriteResult, error) {
	var total RewriteResult
	if sr, ok := rule.(StatementRewriter); ok {
		res, err := sr.RewriteStatement(stmt)
		if err != nil {
			return total, err
		}
		total = total.Join(res)
		if total.Terminated {
			return total, nil
		}
	}
	for _, r := range stmt.Regions {
		res, err := WalkRegion(rule, r)
		if err != nil {
			return total, err
		}
		total = total.Join(res)
		if total.Terminated {
			return total, nil
		}
	}
	return total, nil
}

// WalkRegion applies rule to region (RewriteRegion), then to each of its
// blocks in order.
func WalkRegion(rule any, region *ir.Region) (RewriteResult, error) {
	var total RewriteResult
	if rr, ok := rule.(RegionRewriter); ok {
		res, err := rr.RewriteRegion(region)
		if err != nil {
			return total, err
		}
		total = total.Join(res)
		if total.Terminated {
			return total, nil
		}
	}
	for _, b := range region.Blocks {
		res, err := WalkBlock(rule, b)
		if err != nil {
			return total, err
		}
		total = total.Join(res)
		if total.Terminated {
			return total, nil
		}
	}
	return total, nil
}

// WalkBlock applies rule to block (RewriteBlock), then to each of its
// statements in order.
func WalkBlock(rule any, block *ir.Block) (RewriteResult, error) {
	var total RewriteResult
	if br, ok := rule.(BlockRewriter); ok {
		res, err := br.RewriteBlock(block)
		if err != nil {
			return total, err
		}
		total = total.Join(res)
		if total.Terminated {
			return total, nil
		}
	}
	s := block.FirstStmt()
	for s != nil {
		next := s.Next()
		res, err := Walk(rule, s)
		if err != nil {
			return total, err
		}
		total = total.Join(res)
		if total.Terminated {
			return total, nil
		}
		s = next
	}
	return total, nil
}

// Fixpoint repeatedly Walks rule over root until a pass makes no change or
// maxIter passes have run, in which case the result's ExceededMaxIter is
// set (a non-fatal signal, not an error — spec.md §4.8/§9 "exceeded_max_iter
// is a non-fatal signal").
func Fixpoint(rule any, maxIter int, root *ir.Statement) (RewriteResult, error) {
	var total RewriteResult
	for i := 0; i < maxIter; i++ {
		res, err := Walk(rule, root)
		if err != nil {
			return total, err
		}
		total = total.Join(res)
		if !res.HasDoneSomething || res.Terminated {
			return total, nil
		}
	}
	total.ExceededMaxIter = true
	return total, nil
}

// chain runs each of its rules, in order, at every hook it implements,
// joining their results — the implementation behind Chain.
type chain []any

// Chain composes rules into a single rule applying each, in order, at
// every level of the traversal (spec.md §4.8 combinators).
func Chain(rules ...any) any { return chain(rules) }

func (c chain) RewriteStatement(s *ir.Statement) (RewriteResult, error) {
	var total RewriteResult
	for _, r := range c {
		sr, ok := r.(StatementRewriter)
		if !ok {
			continue
		}
		res, err := sr.RewriteStatement(s)
		if err != nil {
			return total, err
		}
		total = total.Join(res)
		if total.Terminated {
			return total, nil
		}
	}
	return total, nil
}

func (c chain) RewriteBlock(b *ir.Block) (RewriteResult, error) {
	var total RewriteResult
	for _, r := range c {
		br, ok := r.(BlockRewriter)
		if !ok {
			continue
		}
		res, err := br.RewriteBlock(b)
		if err != nil {
			return total, err
		}
		total = total.Join(res)
		if total.Terminated {
			return total, nil
		}
	}
	return total, nil
}

func (c chain) RewriteRegion(r *ir.Region) (RewriteResult, error) {
	var total RewriteResult
	for _, rule := range c {
		rr, ok := rule.(RegionRewriter)
		if !ok {
			continue
		}
		res, err := rr.RewriteRegion(r)
		if err != nil {
			return total, err
		}
		total = total.Join(res)
		if total.Terminated {
			return total, nil
		}
	}
	return total, nil
}
