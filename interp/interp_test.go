package interp

import (
	"testing"

	"github.com/kirin-lang/kirin/ir"
	"github.com/kirin-lang/kirin/types"
)

type constKind struct{}

func (constKind) Name() string      { return "const" }
func (constKind) Dialect() string   { return "test" }
func (constKind) Traits() []ir.Trait { return []ir.Trait{ir.ConstantLike, ir.Pure} }
func (constKind) NumRegions() int   { return 0 }

type addKind struct{}

func (addKind) Name() string      { return "add" }
func (addKind) Dialect() string   { return "test" }
func (addKind) Traits() []ir.Trait { return nil }
func (addKind) NumRegions() int   { return 0 }

type retKind struct{}

func (retKind) Name() string      { return "return" }
func (retKind) Dialect() string   { return "test" }
func (retKind) Traits() []ir.Trait { return []ir.Trait{ir.IsTerminator} }
func (retKind) NumRegions() int   { return 0 }

type funcKind struct{}

func (funcKind) Name() string    { return "func" }
func (funcKind) Dialect() string { return "test" }
func (funcKind) Traits() []ir.Trait {
	return []ir.Trait{ir.CallableStmtInterface{RegionIndex: 0}}
}
func (funcKind) NumRegions() int { return 1 }

func intT() types.Type { return types.PyClass{Name: "Int"} }

func addImpl(_ *Interpreter, frame *Frame, stmt *ir.Statement) (Result, error) {
	a := frame.Get(stmt.Args[0]).(int64)
	b := frame.Get(stmt.Args[1]).(int64)
	return AsValues(a + b), nil
}

func retImpl(_ *Interpreter, frame *Frame, stmt *ir.Statement) (Result, error) {
	return AsReturn(frame.Get(stmt.Args[0])), nil
}

func buildAddOneProgram() *ir.Statement {
	block := ir.NewBlock(nil)
	c := ir.NewStatement(constKind{}, nil, nil, nil, nil, []types.Type{intT()})
	ir.Append(block, c)
	c2 := ir.NewStatement(constKind{}, nil, nil, nil, nil, []types.Type{intT()})
	ir.Append(block, c2)
	add := ir.NewStatement(addKind{}, []*ir.SSAValue{c.Result(0), c2.Result(0)}, nil, nil, nil, []types.Type{intT()})
	ir.Append(block, add)
	ret := ir.NewStatement(retKind{}, []*ir.SSAValue{add.Result(0)}, nil, nil, nil, nil)
	ir.Append(block, ret)

	region := ir.NewRegion(block)
	return ir.NewStatement(funcKind{}, nil, nil, nil, []*ir.Region{region}, nil)
}

func newTestInterpreter(constVals map[*ir.Statement]int64) *Interpreter {
	d := ir.NewDialect("test")
	d.Interp("main").Register(ir.ClassSignature(constKind{}), Impl(func(in *Interpreter, f *Frame, s *ir.Statement) (Result, error) {
		return AsValues(constVals[s]), nil
	}))
	d.Interp("main").Register(ir.ClassSignature(addKind{}), Impl(addImpl))
	d.Interp("main").Register(ir.ClassSignature(retKind{}), Impl(retImpl))
	group := ir.NewDialectGroup(d)
	return New(group)
}

func TestInterpreterEvaluatesProgram(t *testing.T) {
	code := buildAddOneProgram()
	region := code.Regions[0]
	block := region.Entry()
	c1, c2 := block.FirstStmt(), block.FirstStmt().Next()

	in := newTestInterpreter(map[*ir.Statement]int64{c1: 1, c2: 2})
	method := ir.NewMethod("add_one", nil, in.Dialects, code)

	result, err := in.Call(CallMethod(method))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(int64) != 3 {
		t.Fatalf("expected 3, got %v", result)
	}
}

func TestFuelExhaustion(t *testing.T) {
	code := buildAddOneProgram()
	region := code.Regions[0]
	block := region.Entry()
	c1, c2 := block.FirstStmt(), block.FirstStmt().Next()

	in := newTestInterpreter(map[*ir.Statement]int64{c1: 1, c2: 2})
	in.SetFuel(2) // enough for the two constants, not the add+return
	method := ir.NewMethod("add_one", nil, in.Dialects, code)

	_, err := in.Call(CallMethod(method))
	if err == nil {
		t.Fatalf("expected fuel exhaustion error")
	}
}

func TestReentrancyRejected(t *testing.T) {
	code := buildAddOneProgram()
	region := code.Regions[0]
	block := region.Entry()
	c1, c2 := block.FirstStmt(), block.FirstStmt().Next()

	in := newTestInterpreter(map[*ir.Statement]int64{c1: 1, c2: 2})
	in.evaluating = true
	method := ir.NewMethod("add_one", nil, in.Dialects, code)

	_, err := in.Call(CallMethod(method))
	if err == nil {
		t.Fatalf("expected reentrancy error")
	}
}

func TestDepthExceeded(t *testing.T) {
	code := buildAddOneProgram()
	region := code.Regions[0]
	block := region.Entry()
	c1, c2 := block.FirstStmt(), block.FirstStmt().Next()

	in := newTestInterpreter(map[*ir.Statement]int64{c1: 1, c2: 2})
	in.MaxDepth = 0
	method := ir.NewMethod("add_one", nil, in.Dialects, code)

	_, err := in.Call(CallMethod(method))
	if err == nil {
		t.Fatalf("expected depth exceeded error")
	}
}

func TestMissingDispatchIsDispatchError(t *testing.T) {
	d := ir.NewDialect("test") // no registrations at all
	group := ir.NewDialectGroup(d)
	in := New(group)
	code := buildAddOneProgram()
	method := ir.NewMethod("add_one", nil, group, code)

	_, err := in.Call(CallMethod(method))
	if err == nil {
		t.Fatalf("expected a dispatch error wrapped by the interpreter")
	}
}
