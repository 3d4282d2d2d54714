package ir

import (
	"fmt"

	"github.com/kirin-lang/kirin/kerr"
	"github.com/kirin-lang/kirin/types"
)

// Method is a named, dialect-scoped callable: a symbol name, its argument
// names/types, the owning DialectGroup, the callable statement, closure
// fields, and verification/inference bookkeeping (spec.md §3 "Method").
//
// Backedges is carried over from original_source/src/kirin/ir/method.py
// (dropped by the distilled spec.md, supplemented here per SPEC_FULL.md
// §5): a slot for methods that call back into this one. Nothing in this
// kernel populates or reads it; Verify and type inference do not consult
// it.
type Method struct {
	SymName  string
	ArgNames []string
	Dialects *DialectGroup
	Code     *Statement // a CallableStmtInterface-bearing statement, e.g. func.Func

	Fields     []any // captured closure values
	Backedges  []*Method
	ReturnType types.Type
	Inferred   bool
	Verified   bool
}

// NewMethod constructs a method from its callable code. argNames[0] is
// conventionally "self"/the method's own binding slot, matching the
// original's `len(args)+len(kwargs) != len(arg_names)-1` arity check.
func NewMethod(symName string, argNames []string, dialects *DialectGroup, code *Statement) *Method {
	return &Method{SymName: symName, ArgNames: argNames, Dialects: dialects, Code: code}
}

// CallableRegion returns the region that constitutes the method's body, via
// its code's CallableStmtInterface trait.
func (m *Method) CallableRegion() (*Region, error) {
	trait, ok := HasStmtTrait[CallableStmtInterface](m.Code)
	if !ok {
		return nil, kerr.NewVerificationError(m.Code.Kind.Name(), "method body must implement CallableStmtInterface")
	}
	return trait.GetCallableRegion(m.Code), nil
}

// Args returns the method's block arguments, excluding the implicit first
// slot (self/closure binding), matching the original's `args` property.
func (m *Method) Args() ([]*SSAValue, error) {
	region, err := m.CallableRegion()
	if err != nil {
		return nil, err
	}
	entry := region.Entry()
	if entry == nil || len(entry.Args) == 0 {
		return nil, nil
	}
	return entry.Args[1:], nil
}

// ArgTypes returns the types of Args().
func (m *Method) ArgTypes() ([]types.Type, error) {
	args, err := m.Args()
	if err != nil {
		return nil, err
	}
	out := make([]types.Type, len(args))
	for i, a := range args {
		out[i] = a.Type
	}
	return out, nil
}

func (m *Method) String() string {
	return fmt.Sprintf("Method(%q)", m.SymName)
}

// Verify runs the IR's structural verification over the method body. On
// success it records Verified = true; it does not consult that flag
// itself, so every call verifies the body again.
func (m *Method) Verify() error {
	if err := Verify(m.Code); err != nil {
		return err
	}
	m.Verified = true
	return nil
}
