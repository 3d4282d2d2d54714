package ir

import "github.com/kirin-lang/kirin/types"

// Walk visits stmt and every statement nested in its regions in
// deterministic pre-order: the statement itself first, then each region's
// blocks in order, each block's statements in order, recursing into any
// regions owned by those statements (spec.md §4.1 "Walk").
func Walk(stmt *Statement, visit func(*Statement)) {
	visit(stmt)
	for _, r := range stmt.Regions {
		WalkRegion(r, visit)
	}
}

// WalkRegion visits every statement in every block of r, in pre-order.
func WalkRegion(r *Region, visit func(*Statement)) {
	for _, b := range r.Blocks {
		for s := b.FirstStmt(); s != nil; s = s.Next() {
			Walk(s, visit)
		}
	}
}

// WalkBlocks visits every block in r, including nested regions'
// blocks, in pre-order — used by callers that need block-level structure
// (e.g. the call graph and CFG construction operate per-region and do not
// need this, but a cross-region block walk is useful for debuggers).
func WalkBlocks(r *Region, visit func(*Block)) {
	for _, b := range r.Blocks {
		visit(b)
		for s := b.FirstStmt(); s != nil; s = s.Next() {
			for _, nested := range s.Regions {
				WalkBlocks(nested, visit)
			}
		}
	}
}

// eqContext maps one side's blocks/values to the other side's, established
// during a structural-equality traversal so that SSA naming never matters.
type eqContext struct {
	blocks map[*Block]*Block
	values map[*SSAValue]*SSAValue
}

func newEqContext() *eqContext {
	return &eqContext{blocks: make(map[*Block]*Block), values: make(map[*SSAValue]*SSAValue)}
}

// StructurallyEqual compares a and b modulo SSA naming: block and value
// identities are matched by position as the two trees are walked together,
// and attributes compare by kind and payload (spec.md §4.1 "Structural
// equality").
func StructurallyEqual(a, b *Statement) bool {
	return stmtEqual(a, b, newEqContext())
}

func stmtEqual(a, b *Statement, ctx *eqContext) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind.Name() != b.Kind.Name() || a.Kind.Dialect() != b.Kind.Dialect() {
		return false
	}
	if len(a.Args) != len(b.Args) || len(a.Results) != len(b.Results) ||
		len(a.Successors) != len(b.Successors) || len(a.Regions) != len(b.Regions) {
		return false
	}
	for i := range a.Args {
		if !valueEqual(a.Args[i], b.Args[i], ctx) {
			return false
		}
	}
	for i := range a.Results {
		ctx.values[a.Results[i]] = b.Results[i]
	}
	if !attrsEqual(a.Attributes, b.Attributes) {
		return false
	}
	for i := range a.Successors {
		if !blockEqual(a.Successors[i], b.Successors[i], ctx) {
			return false
		}
	}
	for i := range a.Regions {
		if !regionEqual(a.Regions[i], b.Regions[i], ctx) {
			return false
		}
	}
	return true
}

func valueEqual(a, b *SSAValue, ctx *eqContext) bool {
	if a == nil || b == nil {
		return a == b
	}
	if mapped, ok := ctx.values[a]; ok {
		return mapped == b
	}
	// First encounter of a on this traversal: accept the pairing and
	// require the types to agree; block arguments are paired via
	// blockEqual before their owning block's statements are compared.
	ctx.values[a] = b
	return typesEqual(a.Type, b.Type)
}

func typesEqual(a, b types.Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return types.IsEqual(a, b)
}

func blockEqual(a, b *Block, ctx *eqContext) bool {
	if a == nil || b == nil {
		return a == b
	}
	if mapped, ok := ctx.blocks[a]; ok {
		return mapped == b
	}
	if len(a.Args) != len(b.Args) {
		return false
	}
	ctx.blocks[a] = b
	for i := range a.Args {
		ctx.values[a.Args[i]] = b.Args[i]
		if !typesEqual(a.Args[i].Type, b.Args[i].Type) {
			return false
		}
	}
	sa, sb := a.FirstStmt(), b.FirstStmt()
	for sa != nil && sb != nil {
		if !stmtEqual(sa, sb, ctx) {
			return false
		}
		sa, sb = sa.Next(), sb.Next()
	}
	return sa == nil && sb == nil
}

func regionEqual(a, b *Region, ctx *eqContext) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Blocks) != len(b.Blocks) {
		return false
	}
	for i := range a.Blocks {
		if !blockEqual(a.Blocks[i], b.Blocks[i], ctx) {
			return false
		}
	}
	return true
}

func attrsEqual(a, b map[string]Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		ov, ok := b[k]
		if !ok || !v.AttrEqual(ov) {
			return false
		}
	}
	return true
}
