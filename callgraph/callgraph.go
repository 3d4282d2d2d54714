// Package callgraph builds the call graph of a Method by walking its
// callable region and recording func.Invoke edges to their (statically
// known) callees (spec.md §4.9), grounded on
// original_source/src/kirin/analysis/callgraph.py.
package callgraph

import (
	"fmt"

	"github.com/google/uuid"

	funcd "github.com/kirin-lang/kirin/dialects/func"
	"github.com/kirin-lang/kirin/ir"
)

// Graph is a call graph: every method reachable from a set of roots, plus
// the caller -> callee Invoke edges between them.
type Graph struct {
	nodes []*ir.Method
	edges map[*ir.Method][]*ir.Method

	// names disambiguates two distinct *ir.Method values that share a
	// SymName (spec.md §4.9 "disambiguated by suffix"): the first method
	// seen under a name keeps it bare, every subsequent one gets a short
	// uuid suffix, exactly the "never collide, never bump a shared
	// counter" guarantee a uuid buys over a monotonic counter here.
	names map[*ir.Method]string
}

// Build walks every root's callable region (and transitively, every
// Invoke callee it finds), recording one node per distinct *ir.Method and
// one edge per caller -> callee Invoke site. A func.Call (dynamic,
// non-statically-known callee) contributes no edge: the call graph only
// ever reasons about statically resolvable dispatch, matching
// Call2Invoke's own precondition.
func Build(roots ...*ir.Method) (*Graph, error) {
	g := &Graph{
		edges: make(map[*ir.Method][]*ir.Method),
		names: make(map[*ir.Method]string),
	}
	seen := make(map[*ir.Method]bool)
	var worklist []*ir.Method
	worklist = append(worklist, roots...)

	for len(worklist) > 0 {
		m := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if seen[m] {
			continue
		}
		seen[m] = true
		g.nodes = append(g.nodes, m)
		g.nameOf(m)

		callees, err := invokeCallees(m)
		if err != nil {
			return nil, err
		}
		for _, c := range callees {
			g.edges[m] = append(g.edges[m], c)
			if !seen[c] {
				worklist = append(worklist, c)
			}
		}
	}
	return g, nil
}

// nameOf assigns (memoizing) m's disambiguated display name.
func (g *Graph) nameOf(m *ir.Method) string {
	if n, ok := g.names[m]; ok {
		return n
	}
	name := m.SymName
	for _, other := range g.nodes {
		if other != m && g.names[other] == name {
			name = fmt.Sprintf("%s#%s", m.SymName, uuid.NewString()[:8])
			break
		}
	}
	g.names[m] = name
	return name
}

// Name returns m's disambiguated display name, or "" if m is not a node of
// this graph.
func (g *Graph) Name(m *ir.Method) string { return g.names[m] }

// Nodes returns every method reachable from the graph's roots.
func (g *Graph) Nodes() []*ir.Method { return g.nodes }

// Edges returns every (caller, callee) Invoke edge.
func (g *Graph) Edges() [][2]*ir.Method {
	var out [][2]*ir.Method
	for caller, callees := range g.edges {
		for _, callee := range callees {
			out = append(out, [2]*ir.Method{caller, callee})
		}
	}
	return out
}

// Neighbors returns the callees m directly Invokes.
func (g *Graph) Neighbors(m *ir.Method) []*ir.Method { return g.edges[m] }

// invokeCallees walks method's callable region collecting every
// func.Invoke's statically-known callee, recursing into nested regions
// (scf.IfElse/For bodies) the same way ir.Walk would.
func invokeCallees(method *ir.Method) ([]*ir.Method, error) {
	region, err := method.CallableRegion()
	if err != nil {
		return nil, err
	}
	var out []*ir.Method
	for _, b := range region.Blocks {
		for s := b.FirstStmt(); s != nil; s = s.Next() {
			walkInvokes(s, &out)
		}
	}
	return out, nil
}

func walkInvokes(s *ir.Statement, out *[]*ir.Method) {
	if s.Kind == funcd.InvokeKind {
		*out = append(*out, funcd.InvokeCallee(s))
	}
	for _, r := range s.Regions {
		for _, b := range r.Blocks {
			for inner := b.FirstStmt(); inner != nil; inner = inner.Next() {
				walkInvokes(inner, out)
			}
		}
	}
}
