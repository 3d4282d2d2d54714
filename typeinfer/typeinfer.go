// Package typeinfer instantiates the forward dataflow engine (package
// dataflow) over the type lattice (types.Elem), grounded on
// original_source/src/kirin/analysis/typeinfer.py. Unlike constprop, it
// needs no concrete-interpreter oracle: every dialect registers its
// "typeinfer" table directly (see dialects/py, dialects/func, dialects/scf),
// so this package is mostly a thin entry point plus the top-level
// memoization InferMethod (package funcd) already performs for cross-method
// recursion.
package typeinfer

import (
	"github.com/kirin-lang/kirin/dataflow"
	"github.com/kirin-lang/kirin/ir"
	"github.com/kirin-lang/kirin/types"
)

// Keys is the interpretation-table key-preference list typeinfer's engine
// resolves dialects against.
var Keys = []string{"typeinfer", "empty"}

// New builds a type-inference engine over dialects.
func New(dialects *ir.DialectGroup) *dataflow.Engine[types.Elem] {
	return dataflow.New[types.Elem](dialects, "typeinfer")
}

// Infer runs (or recalls) method's inferred return type and per-SSA-value
// type map, starting every argument at Any (spec.md §4.5: "unannotated
// arguments start at the top of the lattice"). method.Inferred/ReturnType
// are consulted first so a method already analyzed — directly or as part of
// an enclosing recursive Infer call — is not re-descended into, matching
// the original's method-level memoization.
func Infer(engine *dataflow.Engine[types.Elem], method *ir.Method) (map[*ir.SSAValue]types.Elem, types.Type, error) {
	if method.Inferred {
		if method.ReturnType == nil {
			return nil, types.Bottom(), nil
		}
		return nil, method.ReturnType, nil
	}
	method.Inferred = true
	method.ReturnType = types.Bottom()

	values, ret, err := engine.Run(method)
	if err != nil {
		return nil, nil, err
	}
	method.ReturnType = ret.T
	return values, method.ReturnType, nil
}

// InferWithArgTypes is Infer's narrowing counterpart, used when the caller
// already knows concrete argument types (e.g. a top-level entry point
// analyzing a method called with literal constants) rather than starting
// every argument at Any.
func InferWithArgTypes(engine *dataflow.Engine[types.Elem], method *ir.Method, argTypes []types.Type) (map[*ir.SSAValue]types.Elem, types.Type, error) {
	if method.Inferred {
		if method.ReturnType == nil {
			return nil, types.Bottom(), nil
		}
		return nil, method.ReturnType, nil
	}
	method.Inferred = true
	method.ReturnType = types.Bottom()

	args := make([]types.Elem, len(argTypes))
	for i, t := range argTypes {
		args[i] = types.Of(t)
	}
	values, ret, err := engine.RunWithArgs(method, args)
	if err != nil {
		return nil, nil, err
	}
	method.ReturnType = ret.T
	return values, method.ReturnType, nil
}
