// Package codegen implements a generic Transformer[T] interface and one
// concrete instantiation, DictCodegen, which walks a Method's IR into a
// map[string]any tree (spec.md §4 "a Transformer[T] interface with one
// concrete instantiation that walks IR into a map[string]any tree"),
// grounded on original_source/src/kirin/codegen/{abc.py,dict.py}'s
// Frame/CodegenABC split and DictGen's emit_* walk, reusing gopkg.in/
// yaml.v3 for the actual encode/decode step the way the teacher's own
// internal/cli commands serialize config.
package codegen

import (
	"gopkg.in/yaml.v3"

	"github.com/kirin-lang/kirin/ir"
)

// Transformer lowers a Method's IR into some target representation T.
type Transformer[T any] interface {
	Emit(m *ir.Method) (T, error)
}

// idTable assigns small sequential integer ids to pointers of K the first
// time each is seen, mirroring original_source's IdTable used by DictGen
// to key ssa values and blocks by a stable, print-friendly index rather
// than their address.
type idTable[K comparable] struct {
	ids  map[K]int
	next int
}

func newIDTable[K comparable]() *idTable[K] {
	return &idTable[K]{ids: make(map[K]int)}
}

func (t *idTable[K]) of(k K) int {
	if id, ok := t.ids[k]; ok {
		return id
	}
	id := t.next
	t.next++
	t.ids[k] = id
	return id
}

// DictCodegen walks a Method into a map[string]any tree: every region,
// block, and statement becomes a nested map, and every SSAValue reference
// is rendered as its stable ssa-table id rather than a pointer, so the
// resulting tree is both deterministic and marshalable.
type DictCodegen struct {
	ssaIDs   *idTable[*ir.SSAValue]
	blockIDs *idTable[*ir.Block]
}

// NewDictCodegen returns a DictCodegen with fresh id tables.
func NewDictCodegen() *DictCodegen {
	return &DictCodegen{ssaIDs: newIDTable[*ir.SSAValue](), blockIDs: newIDTable[*ir.Block]()}
}

// Emit implements Transformer[map[string]any].
func (g *DictCodegen) Emit(m *ir.Method) (map[string]any, error) {
	argTypes, err := m.ArgTypes()
	if err != nil {
		return nil, err
	}
	types := make([]string, len(argTypes))
	for i, t := range argTypes {
		types[i] = t.String()
	}
	body, err := g.emitStatement(m.Code)
	if err != nil {
		return nil, err
	}
	names := m.ArgNames
	if len(names) > 0 {
		names = names[1:]
	}
	return map[string]any{
		"name": m.SymName,
		"args": map[string]any{
			"names": append([]string(nil), names...),
			"types": types,
		},
		"body": body,
	}, nil
}

func (g *DictCodegen) emitRegion(r *ir.Region) (map[string]any, error) {
	blocks := make([]map[string]any, len(r.Blocks))
	for i, b := range r.Blocks {
		eb, err := g.emitBlock(b)
		if err != nil {
			return nil, err
		}
		blocks[i] = eb
	}
	return map[string]any{
		"type":   "ir.region",
		"blocks": blocks,
	}, nil
}

func (g *DictCodegen) emitBlock(b *ir.Block) (map[string]any, error) {
	var stmts []map[string]any
	for s := b.FirstStmt(); s != nil; s = s.Next() {
		es, err := g.emitStatement(s)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, es)
	}
	args := make([]map[string]any, len(b.Args))
	for i, a := range b.Args {
		args[i] = g.emitSSAValue(a)
	}
	return map[string]any{
		"type":  "ir.block",
		"id":    g.blockIDs.of(b),
		"args":  args,
		"stmts": stmts,
	}, nil
}

func (g *DictCodegen) emitStatement(s *ir.Statement) (map[string]any, error) {
	args := make([]map[string]any, len(s.Args))
	for i, a := range s.Args {
		args[i] = g.emitSSAValue(a)
	}
	results := make([]map[string]any, len(s.Results))
	for i, r := range s.Results {
		results[i] = g.emitSSAValue(r)
	}
	successors := make([]int, len(s.Successors))
	for i, b := range s.Successors {
		successors[i] = g.blockIDs.of(b)
	}
	regions := make([]map[string]any, len(s.Regions))
	for i, r := range s.Regions {
		er, err := g.emitRegion(r)
		if err != nil {
			return nil, err
		}
		regions[i] = er
	}
	attrs := make(map[string]any, len(s.Attributes))
	for name, a := range s.Attributes {
		attrs[name] = a.String()
	}
	return map[string]any{
		"dialect":    s.Kind.Dialect(),
		"kind":       s.Kind.Name(),
		"args":       args,
		"results":    results,
		"successors": successors,
		"regions":    regions,
		"attributes": attrs,
	}, nil
}

func (g *DictCodegen) emitSSAValue(v *ir.SSAValue) map[string]any {
	return map[string]any{
		"id":   g.ssaIDs.of(v),
		"type": v.Type.String(),
	}
}

// MarshalYAML runs Emit over m and encodes the resulting tree as YAML,
// the concrete serialization format the original's codegen/print.py
// reaches for when handing a dict tree to a human-readable sink.
func MarshalYAML(m *ir.Method) ([]byte, error) {
	g := NewDictCodegen()
	tree, err := g.Emit(m)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(tree)
}

// UnmarshalDict decodes a YAML document produced by MarshalYAML back into
// the generic map[string]any tree, for golden-test comparisons that would
// rather diff structured data than raw bytes.
func UnmarshalDict(data []byte) (map[string]any, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
