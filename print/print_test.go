package print

import (
	"strings"
	"testing"

	funcd "github.com/kirin-lang/kirin/dialects/func"
	"github.com/kirin-lang/kirin/dialects/py"
	"github.com/kirin-lang/kirin/ir"
	"github.com/kirin-lang/kirin/types"
)

func TestPrintMethodProducesNestedSExpression(t *testing.T) {
	entry := ir.NewBlock([]types.Type{py.IntType()})
	one := py.NewConstant(int64(1), py.IntType())
	add := py.NewAdd(entry.Args[0], one.Result(0), py.IntType())
	ir.Append(entry, one)
	ir.Append(entry, add)
	ir.Append(entry, funcd.NewReturn(add.Result(0)))
	code := funcd.NewFunc("f", ir.NewRegion(entry))
	method := ir.NewMethod("f", []string{"self", "x"}, nil, code)

	p := NewPrinter()
	p.PrintMethod(method)
	out := p.String()

	for _, want := range []string{"(method f", "py.constant", "py.add", "func.return", "func.func"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestNameOfIsStableAndSequential(t *testing.T) {
	entry := ir.NewBlock([]types.Type{py.IntType()})
	p := NewPrinter()
	first := p.NameOf(entry.Args[0])
	second := p.NameOf(entry.Args[0])
	if first != second {
		t.Fatalf("expected NameOf to be stable across calls, got %q then %q", first, second)
	}
	if first != "%0" {
		t.Fatalf("expected the first unnamed value to be %%0, got %q", first)
	}
}
