package ir

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-set/v2"
	"golang.org/x/sync/singleflight"

	"github.com/kirin-lang/kirin/kerr"
	"github.com/kirin-lang/kirin/types"
)

// Signature is an interpretation-dispatch key: either a bare statement kind
// name, or a kind name plus a rendered tuple of argument types. It is a
// plain string so it can be used directly as a map key (spec.md glossary:
// "Signature").
type Signature string

// ClassSignature builds a class-only Signature (the dispatch fallback).
func ClassSignature(kind StatementKind) Signature {
	return Signature(kind.Name())
}

// StmtSignature builds a (class, argument-type tuple) Signature.
func StmtSignature(kind StatementKind, argTypes []types.Type) Signature {
	if len(argTypes) == 0 {
		return ClassSignature(kind)
	}
	parts := make([]string, len(argTypes))
	for i, t := range argTypes {
		parts[i] = t.String()
	}
	return Signature(kind.Name() + "(" + strings.Join(parts, ",") + ")")
}

// MethodTable is one per-key interpretation table within a dialect: a flat
// map from Signature to an opaque implementation function. The concrete
// function type is interpreter-specific (concrete vs. abstract vs. type
// inference all have different frame/value types), so it is stored as any
// and cast back by the consuming interpreter package — mirroring how
// kirin's own StatementImpl is generic over InterpreterType/FrameType.
type MethodTable struct {
	Entries map[Signature]any
}

// NewMethodTable returns an empty table.
func NewMethodTable() *MethodTable {
	return &MethodTable{Entries: make(map[Signature]any)}
}

// Register adds (or overwrites) the implementation for sig.
func (t *MethodTable) Register(sig Signature, impl any) {
	t.Entries[sig] = impl
}

// LoweringTable is the per-key AST-name -> lowering-handler table (the
// external lowering front-end's concern; stored here only so the registry
// has something concrete to select and Dialect has somewhere to register
// it).
type LoweringTable struct {
	Entries map[string]any
}

func NewLoweringTable() *LoweringTable {
	return &LoweringTable{Entries: make(map[string]any)}
}

// Dialect is a named collection of statement/attribute kinds plus
// per-key interpretation and lowering tables (spec.md §4.3).
type Dialect struct {
	Name     string
	Stmts    []StatementKind
	AttrKind []string
	Interps  map[string]*MethodTable
	Lowering map[string]*LoweringTable
}

// NewDialect constructs an empty, named dialect.
func NewDialect(name string) *Dialect {
	return &Dialect{
		Name:     name,
		Interps:  make(map[string]*MethodTable),
		Lowering: make(map[string]*LoweringTable),
	}
}

// RegisterStmt adds a statement kind to the dialect's inventory (for
// documentation/introspection; dispatch itself goes through Interps).
func (d *Dialect) RegisterStmt(kind StatementKind) {
	d.Stmts = append(d.Stmts, kind)
}

// Interp returns (creating if absent) the table for key.
func (d *Dialect) Interp(key string) *MethodTable {
	t, ok := d.Interps[key]
	if !ok {
		t = NewMethodTable()
		d.Interps[key] = t
	}
	return t
}

// Lower returns (creating if absent) the lowering table for key.
func (d *Dialect) Lower(key string) *LoweringTable {
	t, ok := d.Lowering[key]
	if !ok {
		t = NewLoweringTable()
		d.Lowering[key] = t
	}
	return t
}

// DialectGroup is an ordered set of dialects. Two groups with the same
// dialect set compare equal regardless of order.
type DialectGroup struct {
	order []*Dialect
}

// NewDialectGroup builds a group from the given dialects, in the given
// order (order matters for dispatch priority — see Registry).
func NewDialectGroup(dialects ...*Dialect) *DialectGroup {
	return &DialectGroup{order: dialects}
}

// Dialects returns the group's dialects in priority order.
func (g *DialectGroup) Dialects() []*Dialect { return g.order }

func (g *DialectGroup) names() *set.Set[string] {
	s := set.New[string](len(g.order))
	for _, d := range g.order {
		s.Insert(d.Name)
	}
	return s
}

// Equal reports whether two groups contain the same dialects, independent
// of order.
func (g *DialectGroup) Equal(other *DialectGroup) bool {
	if other == nil {
		return false
	}
	return g.names().Equal(other.names())
}

// Union returns a new group containing the dialects of both groups
// (duplicates by name removed, g's order preferred).
func (g *DialectGroup) Union(other *DialectGroup) *DialectGroup {
	seen := set.New[string](len(g.order) + len(other.order))
	out := make([]*Dialect, 0, len(g.order)+len(other.order))
	for _, d := range append(append([]*Dialect{}, g.order...), other.order...) {
		if seen.Insert(d.Name) {
			out = append(out, d)
		}
	}
	return NewDialectGroup(out...)
}

// Discard returns a new group with any dialect named in names removed.
func (g *DialectGroup) Discard(names ...string) *DialectGroup {
	drop := set.From(names)
	out := make([]*Dialect, 0, len(g.order))
	for _, d := range g.order {
		if !drop.Contains(d.Name) {
			out = append(out, d)
		}
	}
	return NewDialectGroup(out...)
}

// cacheKey must reflect the group's actual dialect order, not a sorted
// form of it: Registry resolves "first dialect in group order wins"
// (spec.md §4.3), so two groups with the same dialect set but different
// order can disagree on which dialect's entry wins for a shared
// signature and must not share a cached InterpRegistry.
func (g *DialectGroup) cacheKey(keys []string) string {
	names := make([]string, len(g.order))
	for i, d := range g.order {
		names[i] = d.Name
	}
	return strings.Join(names, ",") + "!" + strings.Join(keys, ",")
}

var (
	registryGroup   singleflight.Group
	registryCacheMu sync.Mutex
	registryCache   = make(map[string]*InterpRegistry)
)

// InterpRegistry is the materialized interpretation map for one dialect
// group and key-preference list: Signature -> the implementation plus the
// dialect that provided it.
type InterpRegistry struct {
	Table map[Signature]RegisteredImpl
}

// RegisteredImpl pairs an opaque implementation with the dialect that
// registered it (for diagnostics).
type RegisteredImpl struct {
	Dialect *Dialect
	Impl    any
}

// Registry materializes the interpretation registry for keys, walking
// dialects in group order and, for each, selecting the first table whose
// key appears in keys (spec.md §4.3 resolution algorithm). Results are
// memoized per (dialect order, keys) so repeated calls — including
// concurrent ones — do not rebuild the map (the rest of the kernel is
// single-threaded per spec.md §5, but registry construction is the one
// place concurrent callers, e.g. two goroutines each starting an
// Interpreter against the same group, are anticipated).
func (g *DialectGroup) Registry(keys []string) *InterpRegistry {
	ck := g.cacheKey(keys)

	registryCacheMu.Lock()
	if r, ok := registryCache[ck]; ok {
		registryCacheMu.Unlock()
		return r
	}
	registryCacheMu.Unlock()

	v, _, _ := registryGroup.Do(ck, func() (any, error) {
		registryCacheMu.Lock()
		if r, ok := registryCache[ck]; ok {
			registryCacheMu.Unlock()
			return r, nil
		}
		registryCacheMu.Unlock()

		reg := &InterpRegistry{Table: make(map[Signature]RegisteredImpl)}
		for _, d := range g.order {
			var table *MethodTable
			for _, k := range keys {
				if t, ok := d.Interps[k]; ok {
					table = t
					break
				}
			}
			if table == nil {
				continue
			}
			for sig, impl := range table.Entries {
				if _, exists := reg.Table[sig]; !exists {
					reg.Table[sig] = RegisteredImpl{Dialect: d, Impl: impl}
				}
			}
		}
		registryCacheMu.Lock()
		registryCache[ck] = reg
		registryCacheMu.Unlock()
		return reg, nil
	})
	return v.(*InterpRegistry)
}

// Lowering materializes the AST-name -> handler map for keys. A handler for
// a given AST node name must appear exactly once across the selected
// tables; duplicates are an error (spec.md §4.3).
func (g *DialectGroup) Lowering(keys []string) (map[string]any, error) {
	ret := make(map[string]any)
	for _, d := range g.order {
		var table *LoweringTable
		for _, k := range keys {
			if t, ok := d.Lowering[k]; ok {
				table = t
				break
			}
		}
		if table == nil {
			continue
		}
		for name, handler := range table.Entries {
			if _, exists := ret[name]; exists {
				return nil, kerr.NewLoweringError(name, fmt.Sprintf("lowering for %q already registered", name))
			}
			ret[name] = handler
		}
	}
	return ret, nil
}
