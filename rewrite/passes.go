package rewrite

import (
	"fmt"
	"strings"

	"github.com/kirin-lang/kirin/cfg"
	"github.com/kirin-lang/kirin/constprop"
	funcd "github.com/kirin-lang/kirin/dialects/func"
	"github.com/kirin-lang/kirin/dialects/py"
	"github.com/kirin-lang/kirin/ir"
	"github.com/kirin-lang/kirin/types"
)

// constHint is the "const" SSA-value hint ConstantFold reads, an
// ir.Joinable wrapper around constprop.Result so SetHint can monotonically
// join hints written across several WrapConst calls instead of clobbering
// an earlier one (ir/value.go "writing a hint is monotone").
type constHint struct{ R constprop.Result }

func (c constHint) JoinAny(other ir.Joinable) ir.Joinable {
	o, ok := other.(constHint)
	if !ok {
		return c
	}
	return constHint{R: c.R.Join(o.R)}
}

// WrapConst runs the constant-propagation engine over method and records
// each analyzed SSA value's result as a "const" hint, the precondition
// ConstantFold reads (spec.md §4.8 "wraps SSA values with the constprop
// result as an advisory hint").
func WrapConst(dialects *ir.DialectGroup, method *ir.Method) error {
	engine := constprop.New(dialects)
	values, _, err := engine.Run(method)
	if err != nil {
		return err
	}
	for v, r := range values {
		v.SetHint("const", constHint{R: r})
	}
	return nil
}

// dceRule is DeadCodeElimination's implementation.
type dceRule struct{}

// DeadCodeElimination deletes a statement once every one of its results
// has gone unused, provided it is Pure (so deleting it cannot change
// program behavior) and not a terminator (a dead terminator is a shape
// error, not a rewrite target).
func DeadCodeElimination() any { return dceRule{} }

func (dceRule) RewriteStatement(s *ir.Statement) (RewriteResult, error) {
	if len(s.Results) == 0 || !s.AllResultsUnused() {
		return NoChange, nil
	}
	if _, ok := ir.HasStmtTrait[ir.IsTerminatorTrait](s); ok {
		return NoChange, nil
	}
	if _, ok := ir.HasStmtTrait[ir.PureTrait](s); !ok {
		return NoChange, nil
	}
	if err := ir.Delete(s); err != nil {
		return NoChange, err
	}
	return Changed, nil
}

// cseKey identifies a candidate for common-subexpression elimination: a
// statement's (dialect, name) plus either its literal value (constants) or
// the identity of its operands (every other Pure statement) — spec.md
// §4.8 "(class, literal) for constants, (class, arg identity) otherwise",
// matching the hashing rule py.go's ConstantKind doc anticipates.
type cseKey struct {
	dialect, name, args string
}

func cseKeyOf(s *ir.Statement) cseKey {
	if s.Kind == py.ConstantKind {
		return cseKey{"py", "constant", fmt.Sprintf("%v:%v", s.Result(0).Type, py.ConstantValue(s))}
	}
	var sb strings.Builder
	for _, a := range s.Args {
		fmt.Fprintf(&sb, "%p,", a)
	}
	return cseKey{s.Kind.Dialect(), s.Kind.Name(), sb.String()}
}

func cseEligible(s *ir.Statement) bool {
	if len(s.Results) == 0 {
		return false
	}
	_, ok := ir.HasStmtTrait[ir.PureTrait](s)
	return ok
}

type cseRule struct{}

// CommonSubexpressionElimination replaces a Pure statement with an earlier
// statement in the same block sharing its cseKey, provided it has not
// already been eliminated. Scoped per-block, unlike GlobalValueElimination,
// because two blocks executing a conditional branch apart may not compute
// the same value at all (spec.md §4.8).
func CommonSubexpressionElimination() any { return cseRule{} }

func (cseRule) RewriteBlock(block *ir.Block) (RewriteResult, error) {
	seen := make(map[cseKey]*ir.Statement)
	var total RewriteResult
	s := block.FirstStmt()
	for s != nil {
		next := s.Next()
		if cseEligible(s) {
			key := cseKeyOf(s)
			if match, ok := seen[key]; ok && len(s.Results) == len(match.Results) {
				for i := range s.Results {
					ir.ReplaceAllUsesWith(s.Results[i], match.Results[i])
				}
				if err := ir.Delete(s); err != nil {
					return total, err
				}
				total = total.Join(Changed)
				s = next
				continue
			}
			seen[key] = s
		}
		s = next
	}
	return total, nil
}

// constantFoldRule is ConstantFold's implementation.
type constantFoldRule struct{}

// ConstantFold replaces a single-result statement with a fresh py.Constant
// once WrapConst has recorded a fully-known "const" hint on its result
// (spec.md §4.8). It never touches a statement that is already a
// py.Constant, so repeated Fixpoint passes converge.
func ConstantFold() any { return constantFoldRule{} }

func (constantFoldRule) RewriteStatement(s *ir.Statement) (RewriteResult, error) {
	if s.Kind == py.ConstantKind || len(s.Results) != 1 {
		return NoChange, nil
	}
	hint, ok := s.Result(0).Hints["const"]
	if !ok {
		return NoChange, nil
	}
	ch, ok := hint.(constHint)
	if !ok || ch.R.Kind != constprop.KindValue {
		return NoChange, nil
	}
	folded := py.NewConstant(ch.R.Data, s.Result(0).Type)
	if err := ir.Replace(s, folded); err != nil {
		return NoChange, err
	}
	return Changed, nil
}

// call2InvokeRule is Call2Invoke's implementation.
type call2InvokeRule struct{}

// Call2Invoke rewrites a func.Call whose callee operand traces back to a
// func.ConstMethod (a statically-known method reference) into a
// func.Invoke, the precondition Inline and InferPurity both need to see a
// call site's callee statically (spec.md §4.8 "resolves a statically-known
// callee").
func Call2Invoke() any { return call2InvokeRule{} }

func (call2InvokeRule) RewriteStatement(s *ir.Statement) (RewriteResult, error) {
	if s.Kind != funcd.CallKind {
		return NoChange, nil
	}
	callee := s.Args[0]
	if callee.OwnerStmt == nil || callee.OwnerStmt.Kind != funcd.ConstMethodKind {
		return NoChange, nil
	}
	method := funcd.ConstMethodOf(callee.OwnerStmt)
	var resultType types.Type = types.Bottom()
	if len(s.Results) == 1 {
		resultType = s.Result(0).Type
	}
	invoke := funcd.NewInvoke(method, s.Args[1:], resultType)
	if err := ir.Replace(s, invoke); err != nil {
		return NoChange, err
	}
	return Changed, nil
}

// inlineRule is Inline's implementation.
type inlineRule struct {
	admit func(*ir.Method) bool
}

// AlwaysInline admits every candidate, regardless of size.
func AlwaysInline(*ir.Method) bool { return true }

// SizeLimit admits a candidate only if its callable region is a single
// block of at most max statements.
func SizeLimit(max int) func(*ir.Method) bool {
	return func(callee *ir.Method) bool {
		region, err := callee.CallableRegion()
		if err != nil || len(region.Blocks) != 1 {
			return false
		}
		return len(region.Blocks[0].Statements()) <= max
	}
}

// Inline splices a statically-known callee's body in place of a func.Invoke,
// admitting it per the admit heuristic. Only single-block callees are
// supported: this kernel's dialects define no generic jump/branch kind a
// multi-block callee's several exits could be redirected through to a join
// point in the caller, so a multi-block callee is declined rather than
// mis-compiled (spec.md §4.8).
func Inline(admit func(*ir.Method) bool) any { return inlineRule{admit: admit} }

func (r inlineRule) RewriteStatement(s *ir.Statement) (RewriteResult, error) {
	if s.Kind != funcd.InvokeKind {
		return NoChange, nil
	}
	callee := funcd.InvokeCallee(s)
	region, err := callee.CallableRegion()
	if err != nil {
		return NoChange, err
	}
	if len(region.Blocks) != 1 {
		return NoChange, nil
	}
	if r.admit != nil && !r.admit(callee) {
		return NoChange, nil
	}
	block := region.Blocks[0]
	if len(block.Args) != len(s.Args) {
		return NoChange, nil
	}

	subst := make(map[*ir.SSAValue]*ir.SSAValue, len(block.Args))
	for i, a := range block.Args {
		subst[a] = s.Args[i]
	}
	cloned, err := cloneStatementsDetached(block, subst)
	if err != nil {
		return NoChange, err
	}
	if len(cloned) == 0 {
		return NoChange, nil
	}
	term := cloned[len(cloned)-1]
	if term.Kind != funcd.ReturnKind {
		return NoChange, fmt.Errorf("rewrite: inline candidate %q does not end in func.Return", callee.SymName)
	}

	for _, ns := range cloned[:len(cloned)-1] {
		if err := ir.InsertBefore(s, ns); err != nil {
			return NoChange, err
		}
	}
	if len(s.Results) == 1 {
		ir.ReplaceAllUsesWith(s.Result(0), term.Args[0])
	}
	if err := ir.Delete(s); err != nil {
		return NoChange, err
	}
	return Changed, nil
}

// cloneStatementsDetached clones every statement in block, in order, none
// of them yet attached to any block, substituting operands via subst
// (updated in place as each clone's results are produced) — the building
// block Inline uses to splice a callee's body into its caller.
func cloneStatementsDetached(block *ir.Block, subst map[*ir.SSAValue]*ir.SSAValue) ([]*ir.Statement, error) {
	var cloned []*ir.Statement
	for s := block.FirstStmt(); s != nil; s = s.Next() {
		ns, err := cloneStatement(s, subst)
		if err != nil {
			return nil, err
		}
		cloned = append(cloned, ns)
	}
	return cloned, nil
}

// cloneStatement builds a detached copy of s with every operand and nested
// region substituted via subst, recording s's results as mapped to the
// clone's own results so later statements in the same block referencing
// them pick up the substitution.
func cloneStatement(s *ir.Statement, subst map[*ir.SSAValue]*ir.SSAValue) (*ir.Statement, error) {
	args := make([]*ir.SSAValue, len(s.Args))
	for i, a := range s.Args {
		args[i] = substVal(a, subst)
	}
	regions := make([]*ir.Region, len(s.Regions))
	for i, r := range s.Regions {
		nr, err := cloneRegion(r, subst)
		if err != nil {
			return nil, err
		}
		regions[i] = nr
	}
	resultTypes := make([]types.Type, len(s.Results))
	for i, r := range s.Results {
		resultTypes[i] = r.Type
	}
	ns := ir.NewStatement(s.Kind, args, s.Attributes, s.Successors, regions, resultTypes)
	for i, r := range s.Results {
		subst[r] = ns.Results[i]
	}
	return ns, nil
}

// CloneRegion deep-clones r (every block, every statement, every nested
// region) into a fresh, detached copy with its own SSA value identities,
// for callers that need an independent copy of a whole region rather than
// Inline's in-place substitution — e.g. package callgraph's CallGraphPass,
// which clones a reachable method's body before rewriting the copy.
func CloneRegion(r *ir.Region) (*ir.Region, error) {
	return cloneRegion(r, make(map[*ir.SSAValue]*ir.SSAValue))
}

// cloneRegion clones every block of r, in order; cross-block successors
// within a single cloned region are not remapped, since no dialect in this
// kernel's set produces them (structured control flow nests regions
// instead of branching across blocks).
func cloneRegion(r *ir.Region, subst map[*ir.SSAValue]*ir.SSAValue) (*ir.Region, error) {
	blocks := make([]*ir.Block, len(r.Blocks))
	for i, b := range r.Blocks {
		nb, err := cloneBlock(b, subst)
		if err != nil {
			return nil, err
		}
		blocks[i] = nb
	}
	return ir.NewRegion(blocks...), nil
}

func cloneBlock(b *ir.Block, subst map[*ir.SSAValue]*ir.SSAValue) (*ir.Block, error) {
	argTypes := make([]types.Type, len(b.Args))
	for i, a := range b.Args {
		argTypes[i] = a.Type
	}
	nb := ir.NewBlock(argTypes)
	for i, a := range b.Args {
		subst[a] = nb.Args[i]
	}
	for s := b.FirstStmt(); s != nil; s = s.Next() {
		ns, err := cloneStatement(s, subst)
		if err != nil {
			return nil, err
		}
		if err := ir.Append(nb, ns); err != nil {
			return nil, err
		}
	}
	return nb, nil
}

func substVal(v *ir.SSAValue, subst map[*ir.SSAValue]*ir.SSAValue) *ir.SSAValue {
	if mapped, ok := subst[v]; ok {
		return mapped
	}
	return v
}

// constKey identifies a py.Constant for GlobalValueElimination: its result
// type and literal value.
type constKey struct{ typ, val string }

type gveRule struct{}

// GlobalValueElimination deduplicates py.Constant statements sharing a
// (type, value) key within a region, independently per region (a nested
// region, e.g. an scf.IfElse branch, gets its own fresh dedup scope rather
// than one shared across the whole method — spec.md §4.8's "global" is
// relative to CommonSubexpressionElimination's per-block scope, not a
// whole-method singleton table). Driven through rewrite.Walk, not ir.Walk,
// because it deletes the statement it is currently visiting.
func GlobalValueElimination() any { return gveRule{} }

func (gveRule) RewriteRegion(region *ir.Region) (RewriteResult, error) {
	seen := make(map[constKey]*ir.SSAValue)
	var total RewriteResult
	for _, b := range region.Blocks {
		s := b.FirstStmt()
		for s != nil {
			next := s.Next()
			if s.Kind == py.ConstantKind {
				key := constKey{typ: fmt.Sprintf("%v", s.Result(0).Type), val: fmt.Sprintf("%v", py.ConstantValue(s))}
				if existing, ok := seen[key]; ok {
					ir.ReplaceAllUsesWith(s.Result(0), existing)
					if err := ir.Delete(s); err != nil {
						return total, err
					}
					total = total.Join(Changed)
				} else {
					seen[key] = s.Result(0)
				}
			}
			s = next
		}
	}
	return total, nil
}

type cfgCompactifyRule struct{}

// CFGCompactify is a RegionRewriter wrapping cfg.Compactify (spec.md §4.7),
// letting Chain/Fixpoint drive CFG compaction alongside the other canonical
// passes instead of calling it out-of-band.
func CFGCompactify() any { return cfgCompactifyRule{} }

func (cfgCompactifyRule) RewriteRegion(region *ir.Region) (RewriteResult, error) {
	changed, err := cfg.Compactify(region)
	if err != nil {
		return NoChange, err
	}
	if changed {
		return Changed, nil
	}
	return NoChange, nil
}
