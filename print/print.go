// Package print implements a minimal s-expression-shaped textual printer
// for the kernel's IR, sufficient for debug output and golden tests
// (spec.md §4 "a Printer interface and a minimal textual printer"), grounded
// on original_source/src/kirin/print/printable.py's Printable/Printer split
// and, for the printer's own buffer/indent bookkeeping, the teacher's
// internal/prettyprinter/code_printer.go.
package print

import (
	"bytes"
	"fmt"

	"github.com/kirin-lang/kirin/ir"
)

// Printable is implemented by any kernel value that knows how to render
// itself with a Printer, mirroring Printable.print_impl.
type Printable interface {
	PrintTo(p *Printer)
}

// Printer accumulates indented, s-expression-shaped text. Unlike the
// teacher's CodePrinter, it never tracks line width or operator
// precedence: the kernel's IR has no infix surface syntax to reconstruct,
// just nodes to list out.
type Printer struct {
	buf    bytes.Buffer
	indent int

	names   map[*ir.SSAValue]string
	counter int
}

// NewPrinter returns an empty Printer ready to print one method or region.
func NewPrinter() *Printer {
	return &Printer{names: make(map[*ir.SSAValue]string)}
}

// String returns everything written so far.
func (p *Printer) String() string { return p.buf.String() }

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("  ")
	}
}

func (p *Printer) write(s string) { p.buf.WriteString(s) }

func (p *Printer) writeln(s string) {
	p.writeIndent()
	p.buf.WriteString(s)
	p.buf.WriteByte('\n')
}

// NameOf returns v's display name, assigning %0, %1, ... the first time a
// fresh value is seen (in print order), or v.Name prefixed with % when the
// value carries a symbolic name from a lowering front-end.
func (p *Printer) NameOf(v *ir.SSAValue) string {
	if n, ok := p.names[v]; ok {
		return n
	}
	var n string
	if v.Name != "" {
		n = "%" + v.Name
	} else {
		n = fmt.Sprintf("%%%d", p.counter)
		p.counter++
	}
	p.names[v] = n
	return n
}

// PrintMethod prints a method's signature and callable body.
func (p *Printer) PrintMethod(m *ir.Method) {
	p.writeIndent()
	fmt.Fprintf(&p.buf, "(method %s (", m.SymName)
	for i, a := range m.ArgNames {
		if i > 0 {
			p.write(" ")
		}
		p.write(a)
	}
	p.write(")\n")
	p.indent++
	p.PrintStatement(m.Code)
	p.indent--
	p.writeln(")")
}

// PrintRegion prints every block of r in turn.
func (p *Printer) PrintRegion(r *ir.Region) {
	for _, b := range r.Blocks {
		p.PrintBlock(b)
	}
}

// PrintBlock prints a block's argument list and its statements, one per
// line.
func (p *Printer) PrintBlock(b *ir.Block) {
	p.writeIndent()
	p.write("(block (")
	for i, a := range b.Args {
		if i > 0 {
			p.write(" ")
		}
		fmt.Fprintf(&p.buf, "%s:%s", p.NameOf(a), a.Type)
	}
	p.write(")\n")
	p.indent++
	for s := b.FirstStmt(); s != nil; s = s.Next() {
		p.PrintStatement(s)
	}
	p.indent--
	p.writeln(")")
}

// PrintStatement prints one statement as an s-expression: its dialect.name,
// operands, any nested regions indented beneath it, and its results (if
// any) as a trailing "-> %r:T, ..." clause.
func (p *Printer) PrintStatement(s *ir.Statement) {
	p.writeIndent()
	fmt.Fprintf(&p.buf, "(%s.%s", s.Kind.Dialect(), s.Kind.Name())
	for _, a := range s.Args {
		fmt.Fprintf(&p.buf, " %s", p.NameOf(a))
	}
	if pr, ok := printableAttrs(s); ok {
		p.write(pr)
	}
	if len(s.Regions) == 0 {
		p.write(")")
		p.printResults(s)
		p.write("\n")
		return
	}
	p.write("\n")
	p.indent++
	for _, r := range s.Regions {
		p.PrintRegion(r)
	}
	p.indent--
	p.writeIndent()
	p.write(")")
	p.printResults(s)
	p.write("\n")
}

func (p *Printer) printResults(s *ir.Statement) {
	if len(s.Results) == 0 {
		return
	}
	p.write(" ->")
	for i, r := range s.Results {
		if i > 0 {
			p.write(",")
		}
		fmt.Fprintf(&p.buf, " %s:%s", p.NameOf(r), r.Type)
	}
}

// printableAttrs renders every entry of a statement's Attributes map as a
// " :k=v" pair formatted with %v, in map iteration order — attributes here
// are advisory annotations (e.g. a func.ConstMethod's wrapped *ir.Method),
// not surface syntax, so these pairs are good enough for debug output.
func printableAttrs(s *ir.Statement) (string, bool) {
	if len(s.Attributes) == 0 {
		return "", false
	}
	var buf bytes.Buffer
	for k, v := range s.Attributes {
		fmt.Fprintf(&buf, " :%s=%v", k, v)
	}
	return buf.String(), true
}
