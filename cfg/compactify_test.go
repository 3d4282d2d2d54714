package cfg

import (
	"testing"

	"github.com/kirin-lang/kirin/ir"
)

func TestCompactifyRemovesUnreachable(t *testing.T) {
	entry := ir.NewBlock(nil)
	dead := ir.NewBlock(nil)
	ir.Append(entry, terminator(ret))
	ir.Append(dead, terminator(ret))
	region := ir.NewRegion(entry, dead)

	changed, err := Compactify(region)
	if err != nil {
		t.Fatalf("Compactify: %v", err)
	}
	if !changed {
		t.Fatalf("expected a change removing the unreachable block")
	}
	if len(region.Blocks) != 1 || region.Blocks[0] != entry {
		t.Fatalf("expected only entry to remain, got %v", region.Blocks)
	}
}

func TestCompactifySplicesSoleSuccessor(t *testing.T) {
	entry := ir.NewBlock(nil)
	sole := ir.NewBlock(nil)
	ir.Append(entry, terminator(jump, sole))
	ir.Append(sole, terminator(ret))
	region := ir.NewRegion(entry, sole)

	changed, err := Compactify(region)
	if err != nil {
		t.Fatalf("Compactify: %v", err)
	}
	if !changed {
		t.Fatalf("expected a change splicing sole into entry")
	}
	if len(region.Blocks) != 1 {
		t.Fatalf("expected a single block after splicing, got %d", len(region.Blocks))
	}
	if region.Blocks[0].Terminator().Kind != ret {
		t.Fatalf("expected entry's terminator to now be the spliced return")
	}
}

func TestCompactifyCollapsesEmptyBranch(t *testing.T) {
	entry := ir.NewBlock(nil)
	empty := ir.NewBlock(nil)
	target := ir.NewBlock(nil)
	otherPred := ir.NewBlock(nil)
	exit := ir.NewBlock(nil)

	ir.Append(entry, terminator(jump, empty))
	ir.Append(empty, terminator(jump, target))
	// otherPred (reachable through target) also branches to empty, so empty
	// has 2 preds, and every other block's sole predecessor has two
	// successors: rule 2 (sole-successor splice) cannot fire — only rule 3
	// (collapse) can.
	ir.Append(target, terminator(condBranch, otherPred, exit))
	ir.Append(otherPred, terminator(condBranch, empty, target))
	ir.Append(exit, terminator(ret))
	region := ir.NewRegion(entry, empty, target, otherPred, exit)

	changed, err := Compactify(region)
	if err != nil {
		t.Fatalf("Compactify: %v", err)
	}
	if !changed {
		t.Fatalf("expected a change collapsing the empty branch")
	}
	entryTerm := entry.Terminator()
	if len(entryTerm.Successors) != 1 || entryTerm.Successors[0] != target {
		t.Fatalf("expected entry to branch straight to target, got %v", entryTerm.Successors)
	}
}

func TestCompactifyNoChangeOnAlreadyCompact(t *testing.T) {
	region, _, _, _, _ := diamond()
	changed, err := Compactify(region)
	if err != nil {
		t.Fatalf("Compactify: %v", err)
	}
	if changed {
		t.Fatalf("expected a diamond CFG (every block has >1 reason to stay) to already be compact")
	}
}
