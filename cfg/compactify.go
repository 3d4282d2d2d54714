package cfg

import "github.com/kirin-lang/kirin/ir"

// Compactify repeatedly applies CFGCompactify's three local rules (spec.md
// §4.7) to region's block list until none of them changes anything,
// reporting whether any change was made at all. Each rule is expressed
// generically against any terminator with a Successors/Args shape (an
// unconditional branch forwarding operands to its target's block
// arguments) rather than against a specific dialect's branch statement, so
// it applies to any region built from blocks with terminator successors —
// this kernel's own dialects (py/func/scf) are structured around nested
// regions rather than block-level branches, so Compactify's practical
// reach today is whatever a lowering front-end or test builds directly
// with Successor-bearing statements, the same shape dataflow's own tests
// use.
func Compactify(region *ir.Region) (bool, error) {
	anyChange := false
	for {
		c := Build(region)
		if removeUnreachable(region, c) {
			anyChange = true
			continue
		}

		c = Build(region)
		changed, err := spliceSoleSuccessor(region, c)
		if err != nil {
			return anyChange, err
		}
		if changed {
			anyChange = true
			continue
		}

		c = Build(region)
		if collapseEmptyBranch(c) {
			anyChange = true
			continue
		}

		return anyChange, nil
	}
}

// removeUnreachable drops every block not reachable from the entry (rule
// 1), keeping the entry itself even if region had no blocks to reach it
// with.
func removeUnreachable(region *ir.Region, c *CFG) bool {
	if c.Entry == nil {
		return false
	}
	reachable := make(map[*ir.Block]bool, len(c.blocks))
	for _, b := range c.blocks {
		reachable[b] = true
	}
	kept := region.Blocks[:0]
	changed := false
	for _, b := range region.Blocks {
		if b == c.Entry || reachable[b] {
			kept = append(kept, b)
		} else {
			changed = true
		}
	}
	region.Blocks = kept
	return changed
}

// spliceSoleSuccessor implements rule 2: if block b has exactly one
// predecessor pred, and pred's terminator branches only to b, pred's
// terminator is folded away and b's statements (including its own
// terminator) are appended directly onto pred, with b's block arguments
// forwarded from the branch's operands.
func spliceSoleSuccessor(region *ir.Region, c *CFG) (bool, error) {
	for _, b := range c.Nodes() {
		if b == c.Entry {
			continue
		}
		preds := c.Predecessors(b)
		if len(preds) != 1 {
			continue
		}
		pred := preds[0]
		if len(c.Successors(pred)) != 1 {
			continue
		}
		term := pred.Terminator()
		if term == nil || len(term.Successors) != 1 || term.Successors[0] != b {
			continue
		}

		for i, arg := range b.Args {
			if i < len(term.Args) {
				ir.ReplaceAllUsesWith(arg, term.Args[i])
			}
		}
		if err := ir.Delete(term); err != nil {
			return false, err
		}
		ir.Splice(pred, b)
		removeBlockFromRegion(region, b)
		return true, nil
	}
	return false, nil
}

// collapseEmptyBranch implements rule 3: a branches to b, b holds nothing
// but its own unconditional branch to target; a is rewritten to branch
// straight to target, with b's forwarded operands substituted for a's
// actual branch operands.
func collapseEmptyBranch(c *CFG) bool {
	for _, a := range c.Nodes() {
		term := a.Terminator()
		if term == nil || len(term.Successors) != 1 {
			continue
		}
		b := term.Successors[0]
		if b == a || b.IsEmpty() || b.FirstStmt() != b.LastStmt() {
			continue
		}
		bterm := b.Terminator()
		if bterm == nil || len(bterm.Successors) != 1 {
			continue
		}
		target := bterm.Successors[0]
		if target == b {
			continue
		}

		subst := make(map[*ir.SSAValue]*ir.SSAValue, len(b.Args))
		for i, barg := range b.Args {
			if i < len(term.Args) {
				subst[barg] = term.Args[i]
			}
		}
		newArgs := make([]*ir.SSAValue, len(bterm.Args))
		for i, v := range bterm.Args {
			if mapped, ok := subst[v]; ok {
				newArgs[i] = mapped
			} else {
				newArgs[i] = v
			}
		}
		term.Successors[0] = target
		ir.SetArgs(term, newArgs)
		return true
	}
	return false
}

func removeBlockFromRegion(region *ir.Region, b *ir.Block) {
	kept := region.Blocks[:0]
	for _, x := range region.Blocks {
		if x != b {
			kept = append(kept, x)
		}
	}
	region.Blocks = kept
}
