// Package cfg builds the control-flow graph of an IR region and computes
// dominator information over it (spec.md §4.7), grounded on
// original_source/src/kirin/analysis/cfg.py.
package cfg

import (
	"golang.org/x/tools/container/intsets"

	"github.com/kirin-lang/kirin/ir"
)

// CFG is the control-flow graph of a single region: block successors and
// predecessors, plus memoized dominator sets and the dominator tree.
type CFG struct {
	Parent *ir.Region
	Entry  *ir.Block

	blocks     []*ir.Block
	index      map[*ir.Block]int
	successors map[*ir.Block][]*ir.Block
	predecessors map[*ir.Block][]*ir.Block

	doms     map[*ir.Block]*intsets.Sparse
	idoms    map[*ir.Block]*ir.Block
	domsDone bool
	idomDone bool
}

// Build walks region's blocks from its entry block, following terminator
// successors (spec.md §4.7 "successors"/"predecessors"), and returns the
// resulting CFG. A region with no blocks yields an empty, entry-less CFG.
func Build(region *ir.Region) *CFG {
	c := &CFG{
		Parent:       region,
		index:        make(map[*ir.Block]int),
		successors:   make(map[*ir.Block][]*ir.Block),
		predecessors: make(map[*ir.Block][]*ir.Block),
	}
	if len(region.Blocks) == 0 {
		return c
	}
	c.Entry = region.Entry()

	visited := make(map[*ir.Block]bool)
	var worklist []*ir.Block
	block := c.Entry
	for block != nil {
		if _, ok := c.successors[block]; !ok {
			c.successors[block] = nil
		}
		if term := block.Terminator(); term != nil {
			for _, succ := range term.Successors {
				c.addEdge(block, succ)
				worklist = append(worklist, succ)
			}
		}
		visited[block] = true

		block = nil
		for len(worklist) > 0 {
			next := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]
			if !visited[next] {
				block = next
				break
			}
		}
	}
	c.blocks = make([]*ir.Block, 0, len(c.successors))
	for b := range c.successors {
		c.index[b] = len(c.blocks)
		c.blocks = append(c.blocks, b)
	}
	return c
}

func (c *CFG) addEdge(from, to *ir.Block) {
	c.successors[from] = append(c.successors[from], to)
	c.predecessors[to] = append(c.predecessors[to], from)
}

// Successors returns block's direct CFG successors.
func (c *CFG) Successors(block *ir.Block) []*ir.Block { return c.successors[block] }

// Predecessors returns block's direct CFG predecessors.
func (c *CFG) Predecessors(block *ir.Block) []*ir.Block { return c.predecessors[block] }

// Nodes returns every block reachable from the entry block.
func (c *CFG) Nodes() []*ir.Block { return c.blocks }

// Edges returns every (from, to) successor edge.
func (c *CFG) Edges() [][2]*ir.Block {
	var out [][2]*ir.Block
	for _, b := range c.blocks {
		for _, s := range c.successors[b] {
			out = append(out, [2]*ir.Block{b, s})
		}
	}
	return out
}

// Dominators computes, for every reachable block, the set of blocks
// (represented by CFG-local index) that dominate it, via the standard
// iterative fixpoint: each non-entry block's dominator set starts as "all
// blocks" and is narrowed to the intersection of its predecessors'
// dominator sets plus itself, until no set changes.
func (c *CFG) Dominators() map[*ir.Block]*intsets.Sparse {
	if c.domsDone {
		return c.doms
	}
	c.doms = make(map[*ir.Block]*intsets.Sparse, len(c.blocks))
	if c.Entry == nil {
		c.domsDone = true
		return c.doms
	}

	all := &intsets.Sparse{}
	for i := range c.blocks {
		all.Insert(i)
	}
	for _, b := range c.blocks {
		s := &intsets.Sparse{}
		s.Copy(all)
		c.doms[b] = s
	}
	entrySet := &intsets.Sparse{}
	entrySet.Insert(c.index[c.Entry])
	c.doms[c.Entry] = entrySet

	changed := true
	for changed {
		changed = false
		for _, b := range c.blocks {
			if b == c.Entry {
				continue
			}
			newDoms := &intsets.Sparse{}
			newDoms.Copy(all)
			for _, pred := range c.predecessors[b] {
				newDoms.IntersectionWith(c.doms[pred])
			}
			newDoms.Insert(c.index[b])
			if !newDoms.Equals(c.doms[b]) {
				c.doms[b] = newDoms
				changed = true
			}
		}
	}
	c.domsDone = true
	return c.doms
}

// Dominates reports whether a dominates b (a is in b's dominator set).
func (c *CFG) Dominates(a, b *ir.Block) bool {
	doms := c.Dominators()
	set, ok := doms[b]
	if !ok {
		return false
	}
	return set.Has(c.index[a])
}

// DominatorTree computes each non-entry block's immediate dominator: the
// unique member of its dominator set (other than itself) that dominates no
// other member of that set, i.e. the one closest to the block.
func (c *CFG) DominatorTree() map[*ir.Block]*ir.Block {
	if c.idomDone {
		return c.idoms
	}
	doms := c.Dominators()
	c.idoms = make(map[*ir.Block]*ir.Block)
	for _, b := range c.blocks {
		if b == c.Entry {
			continue
		}
		candidates := &intsets.Sparse{}
		candidates.Copy(doms[b])
		candidates.Remove(c.index[b])

		var idom *ir.Block
		var cands []int
		cands = candidates.AppendTo(cands)
		for _, ci := range cands {
			candidate := c.blocks[ci]
			// candidate is the immediate dominator if it dominates none
			// of the other proper dominators of b (it is the closest
			// one to b in the dominance chain).
			unique := true
			for _, oi := range cands {
				if oi == ci {
					continue
				}
				if doms[c.blocks[oi]].Has(ci) {
					unique = false
					break
				}
			}
			if unique {
				idom = candidate
				break
			}
		}
		if idom != nil {
			c.idoms[b] = idom
		}
	}
	c.idomDone = true
	return c.idoms
}

// NearestCommonDominator returns the nearest common dominator of a and b,
// or nil if they share none (e.g. unreachable blocks).
func (c *CFG) NearestCommonDominator(a, b *ir.Block) *ir.Block {
	doms := c.Dominators()
	da, ok := doms[a]
	if !ok {
		return nil
	}
	db, ok := doms[b]
	if !ok {
		return nil
	}
	common := &intsets.Sparse{}
	common.Copy(da)
	common.IntersectionWith(db)
	if common.IsEmpty() {
		return nil
	}

	var cands []int
	cands = common.AppendTo(cands)
	for _, ci := range cands {
		unique := true
		for _, oi := range cands {
			if oi == ci {
				continue
			}
			if doms[c.blocks[oi]].Has(ci) {
				unique = false
				break
			}
		}
		if unique {
			return c.blocks[ci]
		}
	}
	return nil
}
