package callgraph

import (
	funcd "github.com/kirin-lang/kirin/dialects/func"
	"github.com/kirin-lang/kirin/ir"
	"github.com/kirin-lang/kirin/rewrite"
	"github.com/kirin-lang/kirin/types"
)

// CallGraphPass copies every method reachable in graph, applies rule to
// each copy's body via rewrite.Fixpoint(rule, maxIter, ...), and rewires
// every copy's Invoke sites that targeted an original (pre-copy) method to
// target its copy instead — spec.md §4.9 "copies the reachable methods,
// applies a rule to each copy, and then rewires Invoke sites to the new
// symbols". Returns the original -> copy mapping.
func CallGraphPass(graph *Graph, rule any, maxIter int) (map[*ir.Method]*ir.Method, error) {
	copies := make(map[*ir.Method]*ir.Method, len(graph.Nodes()))
	for _, m := range graph.Nodes() {
		region, err := m.CallableRegion()
		if err != nil {
			return nil, err
		}
		clonedRegion, err := rewrite.CloneRegion(region)
		if err != nil {
			return nil, err
		}
		code := funcd.NewFunc(m.SymName, clonedRegion)
		mc := ir.NewMethod(m.SymName, append([]string(nil), m.ArgNames...), m.Dialects, code)
		mc.Fields = append([]any(nil), m.Fields...)
		copies[m] = mc
	}

	for _, m := range graph.Nodes() {
		mc := copies[m]
		if _, err := rewrite.Fixpoint(rule, maxIter, mc.Code); err != nil {
			return nil, err
		}
		region, err := mc.CallableRegion()
		if err != nil {
			return nil, err
		}
		if err := rewireInvokes(region, copies); err != nil {
			return nil, err
		}
	}
	return copies, nil
}

// rewireInvokes walks region replacing every Invoke whose callee has an
// entry in copies with a fresh Invoke targeting the copy instead.
func rewireInvokes(region *ir.Region, copies map[*ir.Method]*ir.Method) error {
	for _, b := range region.Blocks {
		s := b.FirstStmt()
		for s != nil {
			next := s.Next()
			if err := rewireStatement(s, copies); err != nil {
				return err
			}
			s = next
		}
	}
	return nil
}

func rewireStatement(s *ir.Statement, copies map[*ir.Method]*ir.Method) error {
	if s.Kind == funcd.InvokeKind {
		callee := funcd.InvokeCallee(s)
		if mc, ok := copies[callee]; ok {
			resultType := types.Bottom()
			if len(s.Results) == 1 {
				resultType = s.Result(0).Type
			}
			fresh := funcd.NewInvoke(mc, append([]*ir.SSAValue(nil), s.Args...), resultType)
			return ir.Replace(s, fresh)
		}
	}
	for _, r := range s.Regions {
		if err := rewireInvokes(r, copies); err != nil {
			return err
		}
	}
	return nil
}
