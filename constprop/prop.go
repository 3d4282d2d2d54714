package constprop

import (
	"github.com/kirin-lang/kirin/dataflow"
	"github.com/kirin-lang/kirin/interp"
	"github.com/kirin-lang/kirin/ir"
)

// Keys is the interpretation-table key-preference list constprop's engine
// resolves dialects against, matching Propagate.keys in the original.
var Keys = []string{"constprop", "empty"}

// New builds a constant-propagation engine over dialects: a
// dataflow.Engine[Result] whose Oracle runs a private concrete Interpreter
// over ConstantLike statements, and over Pure statements whose operands
// are all already known Values, short-circuiting the registered
// "constprop" dispatch table exactly as Propagate.eval_stmt does before
// falling back to it.
func New(dialects *ir.DialectGroup) *dataflow.Engine[Result] {
	engine := dataflow.New[Result](dialects, "constprop")

	oracle := interp.New(dialects)

	engine.Oracle = func(frame *dataflow.Frame[Result], stmt *ir.Statement) (dataflow.Result[Result], bool, error) {
		_, isConstantLike := ir.HasStmtTrait[ir.ConstantLikeTrait](stmt)
		_, isPure := ir.HasStmtTrait[ir.PureTrait](stmt)
		if !isConstantLike && !isPure {
			return dataflow.Result[Result]{}, false, nil
		}

		args := make([]Result, len(stmt.Args))
		for i, a := range stmt.Args {
			args[i] = frame.Get(a)
		}
		if isPure && !isConstantLike {
			for _, a := range args {
				if a.Kind != KindValue {
					// Not every operand is known yet: this Pure statement
					// cannot be evaluated concretely, but it is still
					// handled here rather than falling through to the
					// dialect's own "constprop"/"empty" table, which may
					// not exist (py registers neither). Conservatively
					// widen every declared result to Unknown instead of
					// declining.
					unknowns := make([]Result, len(stmt.Results))
					for j := range unknowns {
						unknowns[j] = Unknown()
					}
					return dataflow.AsValues(unknowns...), true, nil
				}
			}
		}

		return tryEvalConst(oracle, frame, stmt, args), true, nil
	}

	return engine
}

// tryEvalConst runs stmt through the concrete interpreter with each
// argument's unwrapped host value, re-wrapping a successful result as
// known Values; any interpreter failure (unregistered dispatch, a runtime
// error inside the oracle's own evaluation) degrades to Bottom rather than
// propagating, matching try_eval_const's bare except on InterpreterError.
// ConstantLike/Pure statements are never terminators, so the ToSuccessor
// case is unreachable in practice; it is handled for completeness since
// the oracle's own dispatch table is shared with ordinary interpretation.
func tryEvalConst(oracle *interp.Interpreter, frame *dataflow.Frame[Result], stmt *ir.Statement, args []Result) dataflow.Result[Result] {
	concreteArgs := make([]any, len(args))
	for i, a := range args {
		if a.Kind == KindValue {
			concreteArgs[i] = a.Data
		}
	}

	res, err := oracle.EvalStmt(stmt, concreteArgs)
	if err != nil {
		return dataflow.AsValues(BottomResult())
	}

	switch res.Kind {
	case interp.Values:
		out := make([]Result, len(res.ResultValues))
		for i, v := range res.ResultValues {
			out[i] = NewValue(v)
		}
		return dataflow.AsValues(out...)
	case interp.Return:
		return dataflow.Result[Result]{Kind: dataflow.Return, Return: NewValue(res.ReturnValue)}
	case interp.ToSuccessor:
		blockArgs := make([]Result, len(res.BlockArgs))
		for i, v := range res.BlockArgs {
			blockArgs[i] = NewValue(v)
		}
		frame.PushSuccessor(res.Block, blockArgs...)
		return dataflow.Result[Result]{Kind: dataflow.NoOp}
	}
	return dataflow.AsValues(BottomResult())
}
