package codegen

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	funcd "github.com/kirin-lang/kirin/dialects/func"
	"github.com/kirin-lang/kirin/dialects/py"
	"github.com/kirin-lang/kirin/ir"
	"github.com/kirin-lang/kirin/types"
)

// addOneMethod builds `def f(self, x): return x + 1`.
func addOneMethod() *ir.Method {
	entry := ir.NewBlock([]types.Type{py.IntType(), py.IntType()})
	one := py.NewConstant(int64(1), py.IntType())
	add := py.NewAdd(entry.Args[1], one.Result(0), py.IntType())
	ir.Append(entry, one)
	ir.Append(entry, add)
	ir.Append(entry, funcd.NewReturn(add.Result(0)))
	code := funcd.NewFunc("f", ir.NewRegion(entry))
	return ir.NewMethod("f", []string{"self", "x"}, nil, code)
}

func TestDictCodegenEmitsMethodShape(t *testing.T) {
	m := addOneMethod()
	g := NewDictCodegen()

	tree, err := g.Emit(m)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if tree["name"] != "f" {
		t.Fatalf("expected name %q, got %v", "f", tree["name"])
	}
	args, ok := tree["args"].(map[string]any)
	if !ok {
		t.Fatalf("expected args to be a map, got %T", tree["args"])
	}
	names, ok := args["names"].([]string)
	if !ok || len(names) != 1 || names[0] != "x" {
		t.Fatalf("expected args.names to be [\"x\"] (self excluded), got %v", args["names"])
	}

	body, ok := tree["body"].(map[string]any)
	if !ok {
		t.Fatalf("expected body to be a map, got %T", tree["body"])
	}
	if body["dialect"] != "func" || body["kind"] != "func" {
		t.Fatalf("expected body to be the func.func statement, got dialect=%v kind=%v", body["dialect"], body["kind"])
	}
}

func TestDictCodegenAssignsStableSSAIds(t *testing.T) {
	m := addOneMethod()
	g := NewDictCodegen()

	tree, err := g.Emit(m)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	region, ok := tree["body"].(map[string]any)["regions"].([]map[string]any)
	if !ok || len(region) != 1 {
		t.Fatalf("expected one nested region in the func.func body, got %v", tree["body"])
	}
	blocks, ok := region[0]["blocks"].([]map[string]any)
	if !ok || len(blocks) != 1 {
		t.Fatalf("expected one block, got %v", region[0])
	}
	stmts, ok := blocks[0]["stmts"].([]map[string]any)
	if !ok || len(stmts) != 3 {
		t.Fatalf("expected 3 statements (constant, add, return), got %v", blocks[0]["stmts"])
	}
	constResult := stmts[0]["results"].([]map[string]any)[0]
	addArg1 := stmts[1]["args"].([]map[string]any)[1]
	if constResult["id"] != addArg1["id"] {
		t.Fatalf("expected the constant's result id to match add's second operand id (same SSA value), got %v and %v", constResult["id"], addArg1["id"])
	}
}

// TestDictCodegenDeterministicAcrossIsomorphicBuilds asserts the round-trip
// law from spec.md §8 ("structural equality is reflexive, symmetric,
// transitive") one level up the stack: two independently-built but
// isomorphic methods must emit byte-for-byte identical dict trees, since
// DictCodegen keys SSA values and blocks by a sequential idTable index
// rather than pointer identity (cmp.Diff catches any field this id
// scheme forgot to normalize that a manual field-by-field check might
// miss).
func TestDictCodegenDeterministicAcrossIsomorphicBuilds(t *testing.T) {
	treeA, err := NewDictCodegen().Emit(addOneMethod())
	if err != nil {
		t.Fatalf("Emit (a): %v", err)
	}
	treeB, err := NewDictCodegen().Emit(addOneMethod())
	if err != nil {
		t.Fatalf("Emit (b): %v", err)
	}
	if diff := cmp.Diff(treeA, treeB); diff != "" {
		t.Fatalf("isomorphic methods produced different dict trees (-a +b):\n%s", diff)
	}
}

func TestMarshalYAMLRoundTrips(t *testing.T) {
	m := addOneMethod()
	data, err := MarshalYAML(m)
	if err != nil {
		t.Fatalf("MarshalYAML: %v", err)
	}
	tree, err := UnmarshalDict(data)
	if err != nil {
		t.Fatalf("UnmarshalDict: %v", err)
	}
	if tree["name"] != "f" {
		t.Fatalf("expected round-tripped name %q, got %v", "f", tree["name"])
	}
}
